package notify

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelduel/matchmaking/internal/model"
)

func TestChannelForScopesPerParticipant(t *testing.T) {
	assert.Equal(t, "matchmaking:events:42", ChannelFor("42"))
	assert.Equal(t,
		"matchmaking:events:1b4e28ba-2fa1-11d2-883f-0016d3cca427",
		ChannelFor("1b4e28ba-2fa1-11d2-883f-0016d3cca427"))
	assert.NotEqual(t, ChannelFor("1"), ChannelFor("2"),
		"participants must never share a channel")
}

func TestNotifierNilSafety(t *testing.T) {
	// Redis is optional; a nil notifier or nil client must degrade to
	// no-ops so the pairing engine keeps working without it.
	var n *Notifier
	assert.NoError(t, n.PublishTicketEvent(context.Background(), TicketEvent{ParticipantID: "42"}))
	assert.Nil(t, n.Subscribe(context.Background(), "42"))

	n = NewNotifier(nil)
	assert.NoError(t, n.PublishTicketEvent(context.Background(), TicketEvent{ParticipantID: "42"}))
	assert.Nil(t, n.Subscribe(context.Background(), "42"))
}

func TestTicketEventWireFormat(t *testing.T) {
	sessionID := uint64(11)
	found, err := json.Marshal(TicketEvent{
		ParticipantID: "42",
		Status:        model.StatusFound,
		QueueType:     model.QueueRanked,
		SessionID:     &sessionID,
	})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"participant_id":"42","is_guest":false,"status":"found","queue_type":"ranked","session_id":11}`,
		string(found))

	// Optional fields stay off the wire when unset.
	timeout, err := json.Marshal(TicketEvent{
		ParticipantID: "42",
		Status:        model.StatusTimeout,
		QueueType:     model.QueueCasual,
	})
	require.NoError(t, err)
	assert.NotContains(t, string(timeout), "session_id")
	assert.NotContains(t, string(timeout), "reason")

	failed, err := json.Marshal(TicketEvent{
		ParticipantID: "42",
		Status:        model.StatusError,
		QueueType:     model.QueueCasual,
		Reason:        "pairing failed",
	})
	require.NoError(t, err)
	assert.Contains(t, string(failed), `"reason":"pairing failed"`)
}
