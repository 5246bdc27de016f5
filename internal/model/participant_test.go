package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParticipantRefTaggedInvariant(t *testing.T) {
	reg := RegisteredRef(42)
	_, isPlayer := reg.PlayerID()
	_, isGuest := reg.GuestID()
	assert.True(t, isPlayer)
	assert.False(t, isGuest, "a registered ref must never expose a guest id")
	assert.False(t, reg.IsGuest())
	assert.False(t, reg.IsZero())

	guest := GuestRef("3f1c9a2e-8f4b-4e2a-9c7d-2b6f1a0e5d43")
	_, isPlayer = guest.PlayerID()
	_, isGuest = guest.GuestID()
	assert.False(t, isPlayer, "a guest ref must never expose a player id")
	assert.True(t, isGuest)
	assert.True(t, guest.IsGuest())

	assert.True(t, ParticipantRef{}.IsZero())
}

func TestParticipantRefQueueIDRoundTrip(t *testing.T) {
	reg := RegisteredRef(42)
	assert.Equal(t, "42", reg.QueueID())
	back, err := ParseParticipant(reg.QueueID(), reg.IsGuest())
	require.NoError(t, err)
	assert.Equal(t, reg, back)

	guest := GuestRef("3f1c9a2e-8f4b-4e2a-9c7d-2b6f1a0e5d43")
	assert.Equal(t, "3f1c9a2e-8f4b-4e2a-9c7d-2b6f1a0e5d43", guest.QueueID())
	back, err = ParseParticipant(guest.QueueID(), guest.IsGuest())
	require.NoError(t, err)
	assert.Equal(t, guest, back)
}

func TestParseParticipantRejectsMalformedIDs(t *testing.T) {
	_, err := ParseParticipant("", true)
	assert.Error(t, err, "empty guest id")

	_, err = ParseParticipant("not-a-number", false)
	assert.Error(t, err, "registered ids are numeric")

	_, err = ParseParticipant("0", false)
	assert.Error(t, err, "zero is not a valid player id")
}

func TestQueueTypeModeTag(t *testing.T) {
	assert.Equal(t, "online", QueueCasual.Mode())
	assert.Equal(t, "ranked", QueueRanked.Mode())

	assert.True(t, QueueCasual.Valid())
	assert.True(t, QueueRanked.Valid())
	assert.False(t, QueueType("speedrun").Valid())
	assert.False(t, QueueType("").Valid())
}

func TestTicketStatusTerminal(t *testing.T) {
	assert.False(t, StatusSearching.Terminal())
	assert.True(t, StatusFound.Terminal())
	assert.True(t, StatusTimeout.Terminal())
	assert.True(t, StatusError.Terminal())
}
