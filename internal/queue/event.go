// Package queue defines message payloads exchanged over the message broker.
package queue

// SessionSlot describes one side of a created session.  Exactly one of
// PlayerID and GuestID is set, matching the tagged participant model.
type SessionSlot struct {
	PlayerID    *uint64 `json:"player_id,omitempty"`
	GuestID     *string `json:"guest_id,omitempty"`
	DisplayName string  `json:"display_name"`
}

// SessionCreatedEvent is published when the pairing engine creates a new
// game session. It contains enough information for the downstream
// gameplay service to pick up the match without querying the primary
// database.
type SessionCreatedEvent struct {
	SessionID uint64      `json:"session_id"`
	Mode      string      `json:"mode"`
	QueueType string      `json:"queue_type"`
	Slot1     SessionSlot `json:"slot1"`
	Slot2     SessionSlot `json:"slot2"`
	CreatedAt string      `json:"created_at"`
}
