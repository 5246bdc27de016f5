package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/reelduel/matchmaking/internal/model"
)

// TicketRepo provides data access to the matchmaking_queue table.  The
// pairing-critical methods are Tx-scoped: the caller supplies an existing
// transaction and is responsible for committing or rolling back, so that
// supersession, candidate claim, session creation and the two status
// updates commit together or not at all.  All timestamps are UTC – the
// connection DSN pins the session time zone, and UTC_TIMESTAMP() is used
// for in-database comparisons.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the provided database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// DB exposes the underlying handle so that the matchmaking service can
// begin transactions spanning multiple repositories.
func (r *TicketRepo) DB() *sql.DB { return r.db }

// ExpiredTicket identifies a searching ticket that passed its expiry and
// is about to be (or has been) transitioned to timeout.  It carries just
// enough for the caller to notify the affected participant.
type ExpiredTicket struct {
	ParticipantID string
	IsGuest       bool
	QueueType     model.QueueType
}

// SupersedeSearchingTx removes any prior searching tickets for the given
// participant.  A participant can only search once at a time; enqueue
// calls this before inserting the replacement ticket so the single
// active ticket invariant holds even when a client re-joins without
// leaving first.
func (r *TicketRepo) SupersedeSearchingTx(ctx context.Context, tx *sql.Tx, participantID string) error {
	_, err := tx.ExecContext(ctx,
		`DELETE FROM matchmaking_queue WHERE participant_id = ? AND status = 'searching'`,
		participantID,
	)
	return err
}

// InsertTx inserts a new searching ticket within the provided
// transaction and populates the generated ID, JoinedAt, UpdatedAt and
// ExpiresAt on the passed ticket.  ExpiresAt is JoinedAt plus the given
// timeout window.  SkillRating may be nil for casual tickets.
func (r *TicketRepo) InsertTx(ctx context.Context, tx *sql.Tx, t *model.Ticket, timeout time.Duration) error {
	now := time.Now().UTC()
	t.Status = model.StatusSearching
	t.JoinedAt = now
	t.UpdatedAt = now
	t.ExpiresAt = now.Add(timeout)
	res, err := tx.ExecContext(ctx,
		`INSERT INTO matchmaking_queue
		   (participant_id, is_guest, queue_type, skill_rating, display_name, status, joined_at, updated_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, 'searching', ?, ?, ?)`,
		t.Participant.QueueID(), t.Participant.IsGuest(), string(t.QueueType),
		t.SkillRating, t.DisplayName, t.JoinedAt, t.UpdatedAt, t.ExpiresAt,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// InsertErrorRow records a terminal error ticket outside any transaction.
// It is used after a pairing transaction rolled back: the searching row
// is gone with the rollback, and this row makes the failure observable
// to the client through the status endpoint and the notification
// channel instead of leaving it ambiguous.
func (r *TicketRepo) InsertErrorRow(ctx context.Context, t *model.Ticket) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO matchmaking_queue
		   (participant_id, is_guest, queue_type, skill_rating, display_name, status, joined_at, updated_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, 'error', ?, ?, ?)`,
		t.Participant.QueueID(), t.Participant.IsGuest(), string(t.QueueType),
		t.SkillRating, t.DisplayName, now, now, now,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	t.Status = model.StatusError
	return nil
}

// LockCandidateTx scans for the oldest compatible searching ticket and
// locks it with FOR UPDATE so that concurrent enqueue transactions
// serialize on the claim instead of pairing the same candidate twice.
// The base filter excludes the inserting participant and anything
// already paired; for ranked queues the candidate must additionally lie
// within a rating window that widens with how long the candidate has
// been waiting: |candidate - rating| <= min(cap, waited_seconds * slope).
// Ordering is strict FIFO (joined_at, then row id) so the longest
// waiting compatible ticket always wins.
//
// It returns nil without error when no candidate matches.
func (r *TicketRepo) LockCandidateTx(ctx context.Context, tx *sql.Tx, queueType model.QueueType, excludeParticipant string, rating *int, tolSlope, tolCap int) (*model.Ticket, error) {
	const baseQuery = `SELECT id, participant_id, is_guest, skill_rating, display_name, joined_at
		 FROM matchmaking_queue
		 WHERE queue_type = ? AND status = 'searching' AND paired_with IS NULL AND participant_id <> ?`
	const tail = ` ORDER BY joined_at ASC, id ASC LIMIT 1 FOR UPDATE`

	var row *sql.Row
	if queueType == model.QueueRanked {
		selfRating := 1000
		if rating != nil {
			selfRating = *rating
		}
		row = tx.QueryRowContext(ctx,
			baseQuery+` AND ABS(COALESCE(skill_rating, 1000) - ?) <= LEAST(?, TIMESTAMPDIFF(SECOND, joined_at, UTC_TIMESTAMP()) * ?)`+tail,
			string(queueType), excludeParticipant, selfRating, tolCap, tolSlope,
		)
	} else {
		row = tx.QueryRowContext(ctx, baseQuery+tail, string(queueType), excludeParticipant)
	}

	var (
		t             model.Ticket
		participantID string
		isGuest       bool
		skill         sql.NullInt64
	)
	err := row.Scan(&t.ID, &participantID, &isGuest, &skill, &t.DisplayName, &t.JoinedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ref, err := model.ParseParticipant(participantID, isGuest)
	if err != nil {
		return nil, err
	}
	t.Participant = ref
	t.QueueType = queueType
	t.Status = model.StatusSearching
	if skill.Valid {
		v := int(skill.Int64)
		t.SkillRating = &v
	}
	return &t, nil
}

// MarkFoundTx transitions a single ticket to found, recording the
// counterpart participant and the created session.  The pairing engine
// calls it twice inside the same transaction, once per side.
func (r *TicketRepo) MarkFoundTx(ctx context.Context, tx *sql.Tx, ticketID uint64, pairedWith string, sessionID uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE matchmaking_queue
		 SET status = 'found', paired_with = ?, session_id = ?, updated_at = UTC_TIMESTAMP()
		 WHERE id = ?`,
		pairedWith, sessionID, ticketID,
	)
	return err
}

// ExpireOverdueTx transitions searching tickets whose expires_at has
// passed to timeout and returns identifying details of the affected
// tickets so the caller can notify their owners after commit.  When
// nothing is overdue it returns an empty slice and nil error.
func (r *TicketRepo) ExpireOverdueTx(ctx context.Context, tx *sql.Tx) ([]ExpiredTicket, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT participant_id, is_guest, queue_type
		 FROM matchmaking_queue
		 WHERE status = 'searching' AND expires_at <= UTC_TIMESTAMP()
		 FOR UPDATE`,
	)
	if err != nil {
		return nil, err
	}
	var expired []ExpiredTicket
	for rows.Next() {
		var e ExpiredTicket
		var queueType string
		if scanErr := rows.Scan(&e.ParticipantID, &e.IsGuest, &queueType); scanErr != nil {
			rows.Close()
			return nil, scanErr
		}
		e.QueueType = model.QueueType(queueType)
		expired = append(expired, e)
	}
	if err = rows.Close(); err != nil {
		return nil, err
	}
	if len(expired) == 0 {
		return []ExpiredTicket{}, nil
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE matchmaking_queue
		 SET status = 'timeout', updated_at = UTC_TIMESTAMP()
		 WHERE status = 'searching' AND expires_at <= UTC_TIMESTAMP()`,
	)
	if err != nil {
		return nil, err
	}
	return expired, nil
}

// PurgeTerminalTx hard-deletes terminal tickets (found, timeout, error)
// whose last update is older than the retention bound, keeping the
// queue table from growing without bound.  It returns the number of
// rows removed.
func (r *TicketRepo) PurgeTerminalTx(ctx context.Context, tx *sql.Tx, retention time.Duration) (int64, error) {
	res, err := tx.ExecContext(ctx,
		`DELETE FROM matchmaking_queue
		 WHERE status IN ('found', 'timeout', 'error')
		   AND updated_at <= UTC_TIMESTAMP() - INTERVAL ? SECOND`,
		int64(retention/time.Second),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountSearching returns the number of currently searching tickets for
// the given queue type.  Callers should run the expiry sweep first so
// the count excludes stale entries.
func (r *TicketRepo) CountSearching(ctx context.Context, queueType model.QueueType) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM matchmaking_queue WHERE queue_type = ? AND status = 'searching'`,
		string(queueType),
	).Scan(&n)
	return n, err
}

// DeleteSearching removes the participant's own searching ticket
// (voluntary leave).  It reports whether a row was actually removed; a
// false result is not an error – the ticket may have just been paired
// or timed out by a concurrent transaction.
func (r *TicketRepo) DeleteSearching(ctx context.Context, participantID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM matchmaking_queue WHERE participant_id = ? AND status = 'searching'`,
		participantID,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// LatestByParticipant returns the most recent ticket for the given
// participant regardless of status.  It returns ErrNoTicket when the
// participant has never queued.
func (r *TicketRepo) LatestByParticipant(ctx context.Context, participantID string) (*model.Ticket, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, participant_id, is_guest, queue_type, skill_rating, display_name, status,
		        paired_with, session_id, joined_at, updated_at, expires_at
		 FROM matchmaking_queue
		 WHERE participant_id = ?
		 ORDER BY id DESC LIMIT 1`,
		participantID,
	)
	var (
		t          model.Ticket
		pid        string
		isGuest    bool
		queueType  string
		status     string
		skill      sql.NullInt64
		pairedWith sql.NullString
		sessionID  sql.NullInt64
	)
	err := row.Scan(&t.ID, &pid, &isGuest, &queueType, &skill, &t.DisplayName, &status,
		&pairedWith, &sessionID, &t.JoinedAt, &t.UpdatedAt, &t.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, ErrNoTicket
	}
	if err != nil {
		return nil, err
	}
	ref, err := model.ParseParticipant(pid, isGuest)
	if err != nil {
		return nil, err
	}
	t.Participant = ref
	t.QueueType = model.QueueType(queueType)
	t.Status = model.TicketStatus(status)
	if skill.Valid {
		v := int(skill.Int64)
		t.SkillRating = &v
	}
	if pairedWith.Valid {
		p := pairedWith.String
		t.PairedWith = &p
	}
	if sessionID.Valid {
		s := uint64(sessionID.Int64)
		t.SessionID = &s
	}
	return &t, nil
}
