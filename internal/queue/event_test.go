package queue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionCreatedEventWireFormat(t *testing.T) {
	playerID := uint64(42)
	guestID := "1b4e28ba-2fa1-11d2-883f-0016d3cca427"
	ev := SessionCreatedEvent{
		SessionID: 11,
		Mode:      "online",
		QueueType: "casual",
		Slot1:     SessionSlot{PlayerID: &playerID, DisplayName: "CinephileSue"},
		Slot2:     SessionSlot{GuestID: &guestID, DisplayName: "PopcornPete"},
		CreatedAt: "2026-08-23T12:00:00Z",
	}

	body, err := json.Marshal(ev)
	require.NoError(t, err)

	var back SessionCreatedEvent
	require.NoError(t, json.Unmarshal(body, &back))
	assert.Equal(t, ev, back)

	// Each slot carries exactly one identity field; the unset one is
	// omitted, not null.
	assert.NotContains(t, string(body), "null")
	assert.Contains(t, string(body), `"player_id":42`)
	assert.Contains(t, string(body), `"guest_id":"`+guestID+`"`)
}

func TestSlotLabel(t *testing.T) {
	playerID := uint64(42)
	guestID := "1b4e28ba"

	assert.Equal(t, "CinephileSue(player:42)",
		slotLabel(SessionSlot{PlayerID: &playerID, DisplayName: "CinephileSue"}))
	assert.Equal(t, "PopcornPete(guest:1b4e28ba)",
		slotLabel(SessionSlot{GuestID: &guestID, DisplayName: "PopcornPete"}))
	assert.Equal(t, "Mystery", slotLabel(SessionSlot{DisplayName: "Mystery"}))
}
