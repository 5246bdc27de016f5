package model

import "time"

// SessionStatusWaiting is the initial lifecycle state of a freshly
// created session: both players are paired but gameplay has not started.
// Later transitions are owned by the gameplay service, not by
// matchmaking.
const SessionStatusWaiting = "waiting"

// GameSession is the handoff record created when two tickets pair.  Each
// slot independently references either a registered player or a guest;
// slot 1 is by convention the older ticket (the candidate that waited)
// and slot 2 the ticket whose insertion completed the pair.  Callers
// must not read any further significance into slot order.
//
// Fields:
//  ID        – primary key identifier.
//  Slot1     – participant in slot 1.
//  Slot2     – participant in slot 2.
//  Slot1Name – denormalised display name for slot 1.
//  Slot2Name – denormalised display name for slot 2.
//  Mode      – mode tag derived from the queue type (QueueType.Mode).
//  Status    – lifecycle status, starts at SessionStatusWaiting.
//  CreatedAt – creation timestamp.
type GameSession struct {
	ID        uint64         // game_sessions.id
	Slot1     ParticipantRef // game_sessions.player1_id / guest1_id
	Slot2     ParticipantRef // game_sessions.player2_id / guest2_id
	Slot1Name string         // game_sessions.player1_name
	Slot2Name string         // game_sessions.player2_name
	Mode      string         // game_sessions.mode
	Status    string         // game_sessions.status
	CreatedAt time.Time      // game_sessions.created_at
}
