// Package notify implements the realtime client notification channel.
// Ticket status transitions are published as JSON events to a Redis
// pub/sub channel scoped to the affected participant; the WebSocket
// handler bridges that subscription to the browser so clients observe
// pairing, timeout and error outcomes without polling.
package notify

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/reelduel/matchmaking/internal/model"
)

// TicketEvent is the payload pushed to a participant when their ticket
// changes state.  SessionID is only present on found events; Reason
// carries a short diagnostic on error events.
type TicketEvent struct {
	ParticipantID string             `json:"participant_id"`
	IsGuest       bool               `json:"is_guest"`
	Status        model.TicketStatus `json:"status"`
	QueueType     model.QueueType    `json:"queue_type"`
	SessionID     *uint64            `json:"session_id,omitempty"`
	Reason        string             `json:"reason,omitempty"`
}

// ChannelFor returns the pub/sub channel name for a participant.
func ChannelFor(participantID string) string {
	return "matchmaking:events:" + participantID
}

// Notifier publishes ticket events over Redis.  A nil Redis client
// disables publishing: the service keeps working and clients fall back
// to the status endpoint.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier returns a Notifier bound to the given Redis client, which
// may be nil.
func NewNotifier(rdb *redis.Client) *Notifier { return &Notifier{rdb: rdb} }

// PublishTicketEvent serialises the event and publishes it on the
// participant's channel.  Errors are logged and returned so callers may
// ignore them without interrupting the request flow; a lost
// notification is recoverable through the status endpoint.
func (n *Notifier) PublishTicketEvent(ctx context.Context, ev TicketEvent) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("notify: marshal event failed: %v", err)
		return err
	}
	if err := n.rdb.Publish(ctx, ChannelFor(ev.ParticipantID), body).Err(); err != nil {
		log.Printf("notify: publish to %s failed: %v", ChannelFor(ev.ParticipantID), err)
		return err
	}
	return nil
}

// Subscribe opens a pub/sub subscription for the participant's channel.
// The caller owns the returned subscription and must Close it.  Returns
// nil when Redis is not configured.
func (n *Notifier) Subscribe(ctx context.Context, participantID string) *redis.PubSub {
	if n == nil || n.rdb == nil {
		return nil
	}
	return n.rdb.Subscribe(ctx, ChannelFor(participantID))
}
