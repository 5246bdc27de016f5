package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/reelduel/matchmaking/internal/matchmaking"
	"github.com/reelduel/matchmaking/internal/middleware"
	"github.com/reelduel/matchmaking/internal/model"
	"github.com/reelduel/matchmaking/internal/repository"
)

// MatchmakingHandler exposes the queue operations over HTTP.  All
// methods except pool size assume JWTAuth resolved a participant on the
// context.  Join is not a purely local insert: pairing runs inside the
// same transaction, so its response may already carry a session id, and
// a pairing failure surfaces here even though the caller's own request
// was valid.
type MatchmakingHandler struct {
	Service *matchmaking.Service
}

// NewMatchmakingHandler constructs a MatchmakingHandler.  The service
// must be non-nil.
func NewMatchmakingHandler(svc *matchmaking.Service) *MatchmakingHandler {
	if svc == nil {
		panic("nil service passed to NewMatchmakingHandler")
	}
	return &MatchmakingHandler{Service: svc}
}

// Join handles POST /v1/matchmaking/join.  The body selects the queue
// type; identity comes from the token.  Returns 201 Created with the
// ticket state after the eager pairing attempt: status is either
// searching (wait for the notification channel) or already found with
// the session id.
func (h *MatchmakingHandler) Join(c echo.Context) error {
	ref, ok := middleware.Participant(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		QueueType string `json:"queue_type"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ticket, err := h.Service.Enqueue(c.Request().Context(), ref, model.QueueType(body.QueueType))
	switch {
	case err == nil:
	case errors.Is(err, matchmaking.ErrUnknownQueueType):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "queue_type must be casual or ranked"})
	case errors.Is(err, repository.ErrPlayerNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "player not found"})
	default:
		// The ticket was recorded as errored; the client may retry.
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "pairing failed"})
	}

	resp := echo.Map{
		"ticket_id":      ticket.ID,
		"participant_id": ticket.Participant.QueueID(),
		"queue_type":     ticket.QueueType,
		"status":         ticket.Status,
		"expires_at":     ticket.ExpiresAt.Format(time.RFC3339),
	}
	if ticket.SessionID != nil {
		resp["session_id"] = *ticket.SessionID
	}
	return c.JSON(http.StatusCreated, resp)
}

// Leave handles DELETE /v1/matchmaking.  Removing nothing is not an
// error: the ticket may have been paired or timed out concurrently, so
// the client should re-check status when left is false.
func (h *MatchmakingHandler) Leave(c echo.Context) error {
	ref, ok := middleware.Participant(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	left, err := h.Service.Leave(c.Request().Context(), ref)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to leave queue"})
	}
	return c.JSON(http.StatusOK, echo.Map{"left": left})
}

// Status handles GET /v1/matchmaking/status.  Returns the most recent
// ticket snapshot, or 404 when the participant never queued.
func (h *MatchmakingHandler) Status(c echo.Context) error {
	ref, ok := middleware.Participant(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	snap, err := h.Service.Status(c.Request().Context(), ref)
	if err != nil {
		if errors.Is(err, repository.ErrNoTicket) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no matchmaking ticket"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, snap)
}

// PoolSize handles GET /v1/queues/:type/size.  The expiry sweep runs
// first so the count excludes stale entries.  Public: the lobby screen
// shows pool sizes before the visitor has any identity.
func (h *MatchmakingHandler) PoolSize(c echo.Context) error {
	queueType := model.QueueType(c.Param("type"))
	n, err := h.Service.PoolSize(c.Request().Context(), queueType)
	if err != nil {
		if errors.Is(err, matchmaking.ErrUnknownQueueType) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown queue type"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"queue_type": queueType,
		"searching":  n,
	})
}

// GetSession handles GET /v1/sessions/:id.  Paired clients fetch the
// session they were notified about and hand off to gameplay.
func (h *MatchmakingHandler) GetSession(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	s, err := h.Service.Sessions().GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"session_id": s.ID,
		"mode":       s.Mode,
		"status":     s.Status,
		"slot1":      sessionSlotJSON(s.Slot1, s.Slot1Name),
		"slot2":      sessionSlotJSON(s.Slot2, s.Slot2Name),
		"created_at": s.CreatedAt.Format(time.RFC3339),
	})
}

// sessionSlotJSON renders one session slot with exactly one identity
// field set.
func sessionSlotJSON(ref model.ParticipantRef, name string) echo.Map {
	m := echo.Map{"display_name": name}
	if id, ok := ref.PlayerID(); ok {
		m["player_id"] = id
	}
	if id, ok := ref.GuestID(); ok {
		m["guest_id"] = id
	}
	return m
}
