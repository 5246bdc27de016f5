package model

import "time"

// QueueType selects the compatibility rule used when pairing tickets.
type QueueType string

const (
	// QueueCasual pairs any two waiting participants, oldest first.
	QueueCasual QueueType = "casual"
	// QueueRanked additionally constrains candidates to a rating window
	// that widens with how long the candidate has been waiting.
	QueueRanked QueueType = "ranked"
)

// Valid reports whether the queue type is one of the known values.
func (q QueueType) Valid() bool { return q == QueueCasual || q == QueueRanked }

// Mode returns the session mode tag derived from the queue type.  The
// vocabulary is a contract with the gameplay consumer.
func (q QueueType) Mode() string {
	if q == QueueRanked {
		return "ranked"
	}
	return "online"
}

// TicketStatus is the lifecycle state of a matchmaking ticket.  A ticket
// starts at searching; found, timeout and error are all terminal.
type TicketStatus string

const (
	StatusSearching TicketStatus = "searching" // waiting for a compatible opponent
	StatusFound     TicketStatus = "found"     // paired; session_id and paired_with are set
	StatusTimeout   TicketStatus = "timeout"   // expired before a match was found
	StatusError     TicketStatus = "error"     // pairing failed exceptionally
)

// Terminal reports whether the status admits no further transitions.
func (s TicketStatus) Terminal() bool { return s != StatusSearching }

// Ticket is one matchmaking attempt as stored in the matchmaking_queue
// table.  At most one searching ticket may exist per participant; prior
// searching rows are superseded on enqueue.
//
// Fields:
//  ID          – primary key identifier, allocated at insert.
//  Participant – tagged reference to the requester (registered or guest).
//  QueueType   – casual or ranked; selects the pairing rule.
//  SkillRating – rating captured at enqueue; nil for casual tickets.
//  DisplayName – denormalised label captured at enqueue so that pairing
//                and session creation never re-join the directory.
//  Status      – lifecycle state, see TicketStatus.
//  PairedWith  – counterpart participant id, set only when found.
//  SessionID   – created session, set only when found.
//  JoinedAt    – insertion timestamp; FIFO tie-break and timeout base.
//  UpdatedAt   – last mutation timestamp.
//  ExpiresAt   – JoinedAt plus the configured search timeout.
type Ticket struct {
	ID          uint64         // matchmaking_queue.id
	Participant ParticipantRef // matchmaking_queue.participant_id + is_guest
	QueueType   QueueType      // matchmaking_queue.queue_type
	SkillRating *int           // matchmaking_queue.skill_rating (nullable)
	DisplayName string         // matchmaking_queue.display_name
	Status      TicketStatus   // matchmaking_queue.status
	PairedWith  *string        // matchmaking_queue.paired_with (nullable)
	SessionID   *uint64        // matchmaking_queue.session_id (nullable)
	JoinedAt    time.Time      // matchmaking_queue.joined_at
	UpdatedAt   time.Time      // matchmaking_queue.updated_at
	ExpiresAt   time.Time      // matchmaking_queue.expires_at
}

// TicketSnapshot is the read-only projection returned by the status
// endpoint: enough for a client to decide between "keep waiting",
// "navigate to session" and "offer retry".
type TicketSnapshot struct {
	TicketID     uint64       `json:"ticket_id"`
	Status       TicketStatus `json:"status"`
	QueueType    QueueType    `json:"queue_type"`
	SessionID    *uint64      `json:"session_id,omitempty"`
	JoinedAt     time.Time    `json:"joined_at"`
	ExpiresAt    time.Time    `json:"expires_at"`
	RatingWindow *int         `json:"rating_window,omitempty"` // current ranked tolerance in rating points
}
