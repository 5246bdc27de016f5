// Package matchmaking implements the pairing engine: the queue store
// operations (enqueue, leave, status, pool size), the candidate
// scan-and-claim algorithm, the expiry sweeper and the session handoff.
//
// Pairing is an explicit transactional method rather than a database
// trigger, so it stays testable and observable. Enqueue is therefore not a
// purely local insert – it eagerly attempts a match inside the same
// transaction, so a pairing failure surfaces to the enqueue caller even
// though their own ticket was valid.
package matchmaking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/reelduel/matchmaking/internal/model"
	"github.com/reelduel/matchmaking/internal/notify"
	"github.com/reelduel/matchmaking/internal/queue"
	"github.com/reelduel/matchmaking/internal/repository"
)

// ErrUnknownQueueType is returned when enqueue or pool size is called
// with a queue type outside the known enumeration. The ticket is never
// inserted in that case.
var ErrUnknownQueueType = errors.New("unknown queue type")

// ErrInvalidParticipant is returned when the participant reference is
// empty or malformed.
var ErrInvalidParticipant = errors.New("invalid participant")

// HandoffFunc publishes a session handoff event to the downstream
// gameplay consumer. It runs after the pairing transaction has
// committed; failures are logged but do not fail the enqueue.
type HandoffFunc func(ctx context.Context, event queue.SessionCreatedEvent) error

// Service is the matchmaking core. All pairing-critical work happens in
// single transactions against the queue store; the Redis notifier and
// the RabbitMQ handoff run strictly after commit so observers never see
// a partial pairing.
type Service struct {
	db           *sql.DB
	tickets      *repository.TicketRepo
	sessions     *repository.SessionRepo
	participants *repository.ParticipantRepo
	notifier     *notify.Notifier
	handoff      HandoffFunc
	cfg          Config
}

// NewService wires a Service over the given database handle. notifier
// and handoff may be nil; the service then degrades to polling-only
// observation.
func NewService(db *sql.DB, notifier *notify.Notifier, handoff HandoffFunc, cfg Config) *Service {
	return &Service{
		db:           db,
		tickets:      repository.NewTicketRepo(db),
		sessions:     repository.NewSessionRepo(db),
		participants: repository.NewParticipantRepo(db),
		notifier:     notifier,
		handoff:      handoff,
		cfg:          cfg.withDefaults(),
	}
}

// Sessions exposes the session repository for the read-only sessions
// endpoint.
func (s *Service) Sessions() *repository.SessionRepo { return s.sessions }

// pairResult carries everything the post-commit phase needs: the expiry
// notifications collected by the opportunistic sweep, the found events
// for both paired parties, and the session handoff event.
type pairResult struct {
	expired   []repository.ExpiredTicket
	found     []notify.TicketEvent
	sessionEv *queue.SessionCreatedEvent
}

// Enqueue inserts a searching ticket for the participant and eagerly
// attempts to pair it, all within one transaction:
//
//  1. expire overdue tickets so stale rows never participate as candidates,
//  2. supersede any prior searching ticket of the same participant,
//  3. insert the new ticket,
//  4. lock the oldest compatible candidate (FOR UPDATE) and, when one
//     exists, create the session and mark both tickets found.
//
// The returned ticket reflects the post-commit state: either still
// searching or already found with PairedWith and SessionID set. The
// pairing result is also pushed asynchronously over the notification
// channel, so callers normally just keep the ticket id and wait.
//
// On a pairing failure the transaction rolls back, a terminal error
// ticket is recorded in its place so the failure is observable, and the
// underlying cause is returned.
func (s *Service) Enqueue(ctx context.Context, ref model.ParticipantRef, queueType model.QueueType) (*model.Ticket, error) {
	if ref.IsZero() {
		return nil, ErrInvalidParticipant
	}
	if !queueType.Valid() {
		return nil, ErrUnknownQueueType
	}

	displayName, rating, err := s.resolveIdentity(ctx, ref, queueType)
	if err != nil {
		return nil, err
	}
	ticket := &model.Ticket{
		Participant: ref,
		QueueType:   queueType,
		SkillRating: rating,
		DisplayName: displayName,
	}

	result, err := s.pairInTx(ctx, ticket)
	if err != nil {
		s.recordEnqueueFailure(ctx, ticket, err)
		return nil, fmt.Errorf("pairing failed: %w", err)
	}
	s.publishResults(ctx, result)
	return ticket, nil
}

// resolveIdentity captures the denormalised display name and, for
// ranked play, the skill rating at enqueue time. Registered players are
// looked up in the directory; an unknown player id is a synchronous
// validation failure. Guests fall back to a generated name when their
// directory record has not been created yet, and queue ranked at the
// neutral default rating.
func (s *Service) resolveIdentity(ctx context.Context, ref model.ParticipantRef, queueType model.QueueType) (string, *int, error) {
	if playerID, ok := ref.PlayerID(); ok {
		p, err := s.participants.GetPlayer(ctx, playerID)
		if err != nil {
			return "", nil, err
		}
		var rating *int
		if queueType == model.QueueRanked {
			r := p.SkillRating
			rating = &r
		}
		return p.DisplayName, rating, nil
	}

	guestID, _ := ref.GuestID()
	name := defaultGuestName(guestID)
	g, err := s.participants.GetGuest(ctx, guestID)
	switch {
	case err == nil:
		name = g.DisplayName
	case errors.Is(err, repository.ErrPlayerNotFound):
		// first contact; the guest row is upserted inside the pairing tx
	default:
		return "", nil, err
	}
	var rating *int
	if queueType == model.QueueRanked {
		r := DefaultGuestRating
		rating = &r
	}
	return name, rating, nil
}

// defaultGuestName mirrors the label the guest endpoint assigns, for
// guests that enqueue before their directory row exists.
func defaultGuestName(guestID string) string {
	if len(guestID) > 8 {
		return "Guest-" + guestID[:8]
	}
	return "Guest-" + guestID
}

// pairInTx is the transactional heart of the engine. Everything from
// the sweep to the two found updates commits atomically; a candidate
// locked here cannot be claimed by a concurrent enqueue until commit.
func (s *Service) pairInTx(ctx context.Context, ticket *model.Ticket) (pairResult, error) {
	var result pairResult

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return result, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Stale rows must not participate as candidates below.
	expired, err := s.tickets.ExpireOverdueTx(ctx, tx)
	if err != nil {
		return result, err
	}
	result.expired = expired

	if guestID, ok := ticket.Participant.GuestID(); ok {
		if err := s.participants.EnsureGuestTx(ctx, tx, guestID, ticket.DisplayName); err != nil {
			return result, err
		}
	}

	// Single active ticket invariant: drop any prior searching row.
	if err := s.tickets.SupersedeSearchingTx(ctx, tx, ticket.Participant.QueueID()); err != nil {
		return result, err
	}
	if err := s.tickets.InsertTx(ctx, tx, ticket, s.cfg.SearchTimeout); err != nil {
		return result, err
	}

	candidate, err := s.tickets.LockCandidateTx(ctx, tx, ticket.QueueType,
		ticket.Participant.QueueID(), ticket.SkillRating, s.cfg.TolerancePerSecond, s.cfg.ToleranceCap)
	if err != nil {
		return result, err
	}
	if candidate != nil {
		if err := s.claimTx(ctx, tx, candidate, ticket, &result); err != nil {
			return result, err
		}
	}

	if err := tx.Commit(); err != nil {
		return pairResult{}, err
	}
	committed = true
	return result, nil
}

// claimTx creates the session and flips both tickets to found. Slot 1
// goes to the candidate (the older ticket), slot 2 to the inserter; the
// order carries no meaning beyond that convention.
func (s *Service) claimTx(ctx context.Context, tx *sql.Tx, candidate, ticket *model.Ticket, result *pairResult) error {
	session := &model.GameSession{
		Slot1:     candidate.Participant,
		Slot2:     ticket.Participant,
		Slot1Name: candidate.DisplayName,
		Slot2Name: ticket.DisplayName,
		Mode:      ticket.QueueType.Mode(),
		Status:    model.SessionStatusWaiting,
	}
	if err := s.sessions.CreateTx(ctx, tx, session); err != nil {
		return err
	}
	if err := s.tickets.MarkFoundTx(ctx, tx, candidate.ID, ticket.Participant.QueueID(), session.ID); err != nil {
		return err
	}
	if err := s.tickets.MarkFoundTx(ctx, tx, ticket.ID, candidate.Participant.QueueID(), session.ID); err != nil {
		return err
	}

	candidateID := candidate.Participant.QueueID()
	ticket.Status = model.StatusFound
	ticket.PairedWith = &candidateID
	ticket.SessionID = &session.ID

	for _, side := range []*model.Ticket{candidate, ticket} {
		result.found = append(result.found, notify.TicketEvent{
			ParticipantID: side.Participant.QueueID(),
			IsGuest:       side.Participant.IsGuest(),
			Status:        model.StatusFound,
			QueueType:     ticket.QueueType,
			SessionID:     &session.ID,
		})
	}
	result.sessionEv = &queue.SessionCreatedEvent{
		SessionID: session.ID,
		Mode:      session.Mode,
		QueueType: string(ticket.QueueType),
		Slot1:     slotFor(candidate.Participant, candidate.DisplayName),
		Slot2:     slotFor(ticket.Participant, ticket.DisplayName),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	return nil
}

// slotFor flattens a participant reference into the handoff payload slot.
func slotFor(ref model.ParticipantRef, name string) queue.SessionSlot {
	slot := queue.SessionSlot{DisplayName: name}
	if id, ok := ref.PlayerID(); ok {
		slot.PlayerID = &id
	}
	if id, ok := ref.GuestID(); ok {
		slot.GuestID = &id
	}
	return slot
}

// publishResults pushes all post-commit notifications: timeouts from
// the opportunistic sweep, found events for both paired parties, and
// the session handoff. All of them are best effort.
func (s *Service) publishResults(ctx context.Context, result pairResult) {
	for _, e := range result.expired {
		_ = s.notifier.PublishTicketEvent(ctx, notify.TicketEvent{
			ParticipantID: e.ParticipantID,
			IsGuest:       e.IsGuest,
			Status:        model.StatusTimeout,
			QueueType:     e.QueueType,
		})
	}
	for _, ev := range result.found {
		_ = s.notifier.PublishTicketEvent(ctx, ev)
	}
	if result.sessionEv != nil && s.handoff != nil {
		if err := s.handoff(ctx, *result.sessionEv); err != nil {
			log.Printf("matchmaking: session handoff publish failed for session %d: %v", result.sessionEv.SessionID, err)
		}
	}
}

// recordEnqueueFailure replaces the rolled-back searching ticket with a
// terminal error row and notifies the participant. Both steps are best
// effort; the original cause is what the caller receives.
func (s *Service) recordEnqueueFailure(ctx context.Context, ticket *model.Ticket, cause error) {
	log.Printf("matchmaking: pairing failed for %s: %v", ticket.Participant.QueueID(), cause)
	if err := s.tickets.InsertErrorRow(ctx, ticket); err != nil {
		log.Printf("matchmaking: recording error ticket failed: %v", err)
		return
	}
	_ = s.notifier.PublishTicketEvent(ctx, notify.TicketEvent{
		ParticipantID: ticket.Participant.QueueID(),
		IsGuest:       ticket.Participant.IsGuest(),
		Status:        model.StatusError,
		QueueType:     ticket.QueueType,
		Reason:        cause.Error(),
	})
}

// Leave deletes the participant's own searching ticket. It reports
// whether a ticket was removed; calling it when nothing is queued, or
// after a concurrent transaction already paired the ticket, is a no-op
// rather than an error — the cancellation/pairing race resolves in
// favour of whichever committed first, and clients should re-check
// status after a false result.
func (s *Service) Leave(ctx context.Context, ref model.ParticipantRef) (bool, error) {
	if ref.IsZero() {
		return false, ErrInvalidParticipant
	}
	return s.tickets.DeleteSearching(ctx, ref.QueueID())
}

// Status returns the read-only projection of the participant's most
// recent ticket. For a searching ranked ticket it includes the current
// rating window so the UI can show how wide the search has grown.
// Returns repository.ErrNoTicket when the participant never queued.
func (s *Service) Status(ctx context.Context, ref model.ParticipantRef) (*model.TicketSnapshot, error) {
	if ref.IsZero() {
		return nil, ErrInvalidParticipant
	}
	t, err := s.tickets.LatestByParticipant(ctx, ref.QueueID())
	if err != nil {
		return nil, err
	}
	snap := &model.TicketSnapshot{
		TicketID:  t.ID,
		Status:    t.Status,
		QueueType: t.QueueType,
		SessionID: t.SessionID,
		JoinedAt:  t.JoinedAt,
		ExpiresAt: t.ExpiresAt,
	}
	if t.QueueType == model.QueueRanked && t.Status == model.StatusSearching {
		window := RatingTolerance(time.Now().UTC().Sub(t.JoinedAt), s.cfg)
		snap.RatingWindow = &window
	}
	return snap, nil
}

// PoolSize returns the number of currently searching tickets of the
// given queue type. The sweep runs first so the count excludes entries
// that are past their expiry but have not been reclassified yet.
func (s *Service) PoolSize(ctx context.Context, queueType model.QueueType) (int, error) {
	if !queueType.Valid() {
		return 0, ErrUnknownQueueType
	}
	if err := s.Sweep(ctx); err != nil {
		return 0, err
	}
	return s.tickets.CountSearching(ctx, queueType)
}
