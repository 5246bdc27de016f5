package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/reelduel/matchmaking/internal/repository"
	"github.com/reelduel/matchmaking/internal/utils"
)

// GuestHandler fabricates guest identities so anonymous visitors can
// queue without registering.  A guest is a UUID plus a display name; the
// directory record is created immediately so later session foreign keys
// always resolve, and the returned JWT carries the guest_id claim the
// matchmaking endpoints authenticate with.
type GuestHandler struct {
	Participants *repository.ParticipantRepo // guest directory upserts
	Secret       string                      // JWT signing secret
	TTLHours     int                         // guest token lifetime
}

// NewGuestHandler constructs a GuestHandler.  The repository must be
// non-nil.
func NewGuestHandler(participants *repository.ParticipantRepo, secret string, ttlHours int) *GuestHandler {
	if participants == nil {
		panic("nil repository passed to NewGuestHandler")
	}
	return &GuestHandler{Participants: participants, Secret: secret, TTLHours: ttlHours}
}

// CreateGuest handles POST /v1/guests.  The optional JSON body may
// carry a display_name; when absent a name is derived from the new id.
// It returns 201 Created with the guest id, display name, token and its
// expiry.
func (h *GuestHandler) CreateGuest(c echo.Context) error {
	var body struct {
		DisplayName string `json:"display_name"`
	}
	// The body is optional; ignore bind errors from an empty payload.
	_ = c.Bind(&body)

	guestID := uuid.NewString()
	name := strings.TrimSpace(body.DisplayName)
	if name == "" {
		name = "Guest-" + guestID[:8]
	}
	if len(name) > 64 {
		name = name[:64]
	}

	ctx := c.Request().Context()
	if err := h.Participants.EnsureGuest(ctx, guestID, name); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create guest"})
	}
	tok, err := utils.NewGuestToken(h.Secret, guestID, h.TTLHours)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to sign token"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"guest_id":     guestID,
		"display_name": name,
		"token":        tok.Token,
		"expires_at":   tok.Exp.Format(time.RFC3339),
	})
}
