package model

import (
	"fmt"
	"strconv"
	"time"
)

// ParticipantKind distinguishes the two identifier spaces a participant
// may belong to.  Registered players live in the `players` table and are
// keyed by a numeric id; guests live in `guest_players` and are keyed by
// a UUID issued at first contact.  The two spaces never overlap.
type ParticipantKind uint8

const (
	// ParticipantRegistered marks an identifier from the players table.
	ParticipantRegistered ParticipantKind = iota + 1
	// ParticipantGuest marks an ephemeral guest identifier.
	ParticipantGuest
)

// ParticipantRef is a tagged reference to either a registered player or a
// guest.  Exactly one of the underlying identifiers is set, which removes
// the both-or-neither failure mode of carrying two nullable columns
// through the business logic.  The nullable pair only exists at the
// repository boundary when rows are read or written.
type ParticipantRef struct {
	kind     ParticipantKind
	playerID uint64
	guestID  string
}

// RegisteredRef builds a reference to a registered player.
func RegisteredRef(playerID uint64) ParticipantRef {
	return ParticipantRef{kind: ParticipantRegistered, playerID: playerID}
}

// GuestRef builds a reference to a guest identity.
func GuestRef(guestID string) ParticipantRef {
	return ParticipantRef{kind: ParticipantGuest, guestID: guestID}
}

// ParseParticipant reconstructs a ParticipantRef from the flattened form
// stored in the matchmaking_queue table (participant_id + is_guest).  It
// returns an error when the stored id does not fit the tagged space.
func ParseParticipant(id string, isGuest bool) (ParticipantRef, error) {
	if isGuest {
		if id == "" {
			return ParticipantRef{}, fmt.Errorf("empty guest id")
		}
		return GuestRef(id), nil
	}
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil || n == 0 {
		return ParticipantRef{}, fmt.Errorf("invalid player id %q", id)
	}
	return RegisteredRef(n), nil
}

// IsZero reports whether the reference has not been initialised.
func (r ParticipantRef) IsZero() bool { return r.kind == 0 }

// IsGuest reports whether the reference points into the guest space.
func (r ParticipantRef) IsGuest() bool { return r.kind == ParticipantGuest }

// PlayerID returns the registered player id and whether the reference is
// a registered one.
func (r ParticipantRef) PlayerID() (uint64, bool) {
	return r.playerID, r.kind == ParticipantRegistered
}

// GuestID returns the guest id and whether the reference is a guest one.
func (r ParticipantRef) GuestID() (string, bool) {
	return r.guestID, r.kind == ParticipantGuest
}

// QueueID is the canonical string form stored in
// matchmaking_queue.participant_id: the decimal player id for registered
// participants and the UUID for guests.  Paired with the is_guest flag it
// round-trips through ParseParticipant.
func (r ParticipantRef) QueueID() string {
	if r.kind == ParticipantGuest {
		return r.guestID
	}
	return strconv.FormatUint(r.playerID, 10)
}

// Player represents a registered account as stored in the `players`
// table.  The matchmaking service only reads this table; account
// management belongs to a different service.
//
// Fields:
//  ID          – primary key identifier.
//  DisplayName – public name shown to opponents.
//  SkillRating – Elo-style rating used for ranked pairing.
//  CreatedAt   – timestamp of creation.
//  UpdatedAt   – timestamp of last update.
type Player struct {
	ID          uint64    // players.id
	DisplayName string    // players.display_name
	SkillRating int       // players.skill_rating
	CreatedAt   time.Time // players.created_at
	UpdatedAt   time.Time // players.updated_at
}

// GuestPlayer is a minimal directory record for an anonymous participant.
// It exists so that sessions can reference guests by foreign key without
// requiring registration.  Guests carry no rating.
type GuestPlayer struct {
	GuestID     string    // guest_players.guest_id (UUID)
	DisplayName string    // guest_players.display_name
	CreatedAt   time.Time // guest_players.created_at
}
