package matchmaking

import (
	"context"
	"log"
	"time"

	"github.com/reelduel/matchmaking/internal/model"
	"github.com/reelduel/matchmaking/internal/notify"
)

// Sweep transitions searching tickets past their expiry to timeout and
// hard-deletes terminal tickets older than the retention bound. It is
// stateless, idempotent and safe to invoke concurrently: enqueue and
// pool size call it opportunistically and RunSweeper calls it on a
// timer. Affected participants are notified after commit.
func (s *Service) Sweep(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	expired, err := s.tickets.ExpireOverdueTx(ctx, tx)
	if err != nil {
		return err
	}
	purged, err := s.tickets.PurgeTerminalTx(ctx, tx, s.cfg.Retention)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	if purged > 0 {
		log.Printf("matchmaking: purged %d terminal tickets older than %s", purged, s.cfg.Retention)
	}
	for _, e := range expired {
		_ = s.notifier.PublishTicketEvent(ctx, notify.TicketEvent{
			ParticipantID: e.ParticipantID,
			IsGuest:       e.IsGuest,
			Status:        model.StatusTimeout,
			QueueType:     e.QueueType,
		})
	}
	return nil
}

// RunSweeper runs Sweep on the given interval until the context is
// cancelled. The enqueue path already sweeps opportunistically; the
// timer guarantees that tickets still expire when the queue goes quiet.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				log.Printf("matchmaking: sweep failed: %v", err)
			}
		}
	}
}
