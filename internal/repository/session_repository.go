package repository

import (
	"context"
	"database/sql"

	"github.com/reelduel/matchmaking/internal/model"
)

// SessionRepo provides data access to the game_sessions table.  A
// session row carries two player slots; each slot references exactly one
// of the registered (player{N}_id) or guest (guest{N}_id) identifier
// columns.  The tagged model.ParticipantRef guarantees that invariant in
// code, and this repository is the only place where the tagged form is
// flattened into the nullable column pair.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo returns a new SessionRepo bound to the given database.
func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

// slotColumns splits a ParticipantRef into the nullable column pair for
// one session slot.
func slotColumns(ref model.ParticipantRef) (playerID *uint64, guestID *string) {
	if id, ok := ref.PlayerID(); ok {
		playerID = &id
	}
	if id, ok := ref.GuestID(); ok {
		guestID = &id
	}
	return playerID, guestID
}

// CreateTx inserts a new session within the scope of an existing
// transaction and populates the generated ID on the provided record.
// Status defaults to waiting when unset.  The caller must commit or
// roll back the transaction.
func (r *SessionRepo) CreateTx(ctx context.Context, tx *sql.Tx, s *model.GameSession) error {
	if s.Status == "" {
		s.Status = model.SessionStatusWaiting
	}
	p1, g1 := slotColumns(s.Slot1)
	p2, g2 := slotColumns(s.Slot2)
	res, err := tx.ExecContext(ctx,
		`INSERT INTO game_sessions
		   (player1_id, guest1_id, player1_name, player2_id, guest2_id, player2_name, mode, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p1, g1, s.Slot1Name, p2, g2, s.Slot2Name, s.Mode, s.Status,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// GetByID returns a single session.  It returns ErrSessionNotFound when
// no row exists for the id.
func (r *SessionRepo) GetByID(ctx context.Context, id uint64) (*model.GameSession, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, player1_id, guest1_id, player1_name, player2_id, guest2_id, player2_name, mode, status, created_at
		 FROM game_sessions WHERE id = ?`,
		id,
	)
	var (
		s      model.GameSession
		p1, p2 sql.NullInt64
		g1, g2 sql.NullString
	)
	err := row.Scan(&s.ID, &p1, &g1, &s.Slot1Name, &p2, &g2, &s.Slot2Name, &s.Mode, &s.Status, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	s.Slot1 = refFromColumns(p1, g1)
	s.Slot2 = refFromColumns(p2, g2)
	return &s, nil
}

// refFromColumns rebuilds the tagged participant reference from the
// nullable column pair read off a session row.
func refFromColumns(playerID sql.NullInt64, guestID sql.NullString) model.ParticipantRef {
	if playerID.Valid {
		return model.RegisteredRef(uint64(playerID.Int64))
	}
	if guestID.Valid {
		return model.GuestRef(guestID.String)
	}
	return model.ParticipantRef{}
}
