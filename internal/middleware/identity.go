package middleware

// identity.go defines helper functions shared across middleware files and
// handlers. Participant() pulls the ParticipantRef that JWTAuth stored on
// the context; currentParticipantID feeds the rate limiter key. When no
// participant is resolved, "anon" is returned so unauthenticated traffic
// still buckets per IP.

import (
	"github.com/labstack/echo/v4"

	"github.com/reelduel/matchmaking/internal/model"
)

// Participant returns the ParticipantRef resolved by JWTAuth and whether
// one is present on the context.
func Participant(c echo.Context) (model.ParticipantRef, bool) {
	v := c.Get(participantKey)
	if v == nil {
		return model.ParticipantRef{}, false
	}
	ref, ok := v.(model.ParticipantRef)
	if !ok || ref.IsZero() {
		return model.ParticipantRef{}, false
	}
	return ref, true
}

// currentParticipantID returns the queue-id form of the authenticated
// participant, or "anon" when the request is unauthenticated.
func currentParticipantID(c echo.Context) string {
	if ref, ok := Participant(c); ok {
		return ref.QueueID()
	}
	return "anon"
}
