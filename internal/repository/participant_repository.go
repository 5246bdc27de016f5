package repository

import (
	"context"
	"database/sql"

	"github.com/reelduel/matchmaking/internal/model"
)

// ParticipantRepo resolves participant identities against the directory
// tables.  Registered players are read-only from the matchmaking
// service's point of view; guest records are created lazily so that
// session foreign keys always resolve without requiring registration.
type ParticipantRepo struct {
	db *sql.DB
}

// NewParticipantRepo returns a new ParticipantRepo bound to the given database.
func NewParticipantRepo(db *sql.DB) *ParticipantRepo { return &ParticipantRepo{db: db} }

// GetPlayer looks up a registered player by id, returning display name
// and skill rating for enqueue-time denormalisation.  It returns
// ErrPlayerNotFound when no such player exists.
func (r *ParticipantRepo) GetPlayer(ctx context.Context, id uint64) (*model.Player, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, display_name, skill_rating, created_at, updated_at FROM players WHERE id = ?`,
		id,
	)
	var p model.Player
	err := row.Scan(&p.ID, &p.DisplayName, &p.SkillRating, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// EnsureGuest idempotently upserts a minimal guest directory record.
// Repeating the call for the same guest id refreshes the display name
// and never errors on the duplicate key.
func (r *ParticipantRepo) EnsureGuest(ctx context.Context, guestID, displayName string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO guest_players (guest_id, display_name) VALUES (?, ?)
		 ON DUPLICATE KEY UPDATE display_name = VALUES(display_name)`,
		guestID, displayName,
	)
	return err
}

// EnsureGuestTx is EnsureGuest within an existing transaction; the
// enqueue path uses it so the guest row and the ticket commit together.
func (r *ParticipantRepo) EnsureGuestTx(ctx context.Context, tx *sql.Tx, guestID, displayName string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO guest_players (guest_id, display_name) VALUES (?, ?)
		 ON DUPLICATE KEY UPDATE display_name = VALUES(display_name)`,
		guestID, displayName,
	)
	return err
}

// GetGuest returns the guest directory record for the given id, or
// ErrPlayerNotFound when the guest has never been seen.
func (r *ParticipantRepo) GetGuest(ctx context.Context, guestID string) (*model.GuestPlayer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT guest_id, display_name, created_at FROM guest_players WHERE guest_id = ?`,
		guestID,
	)
	var g model.GuestPlayer
	err := row.Scan(&g.GuestID, &g.DisplayName, &g.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}
