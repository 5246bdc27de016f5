package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
	"github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers

	"github.com/reelduel/matchmaking/internal/model"
)

// participantKey is the context key under which the resolved
// ParticipantRef is stored for handlers.
const participantKey = "participant"

// JWTAuth returns an Echo middleware that validates a Bearer token and
// resolves the caller into a model.ParticipantRef stored on the request
// context.  Registered players carry a numeric "sub" claim issued by
// the account service; guests carry a "guest_id" UUID claim issued by
// the guest endpoint of this service.  Both token kinds are signed with
// the same secret.
//
// The token is read from the Authorization header, or from a "token"
// query parameter as a fallback for WebSocket upgrades where browsers
// cannot set headers.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c)
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}

			// Parse with the HS256 family enforced; reject any token
			// signed with a different algorithm.
			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			ref, ok := participantFromClaims(claims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token carries no participant identity"})
			}
			c.Set(participantKey, ref)
			return next(c)
		}
	}
}

// bearerToken extracts the raw JWT from the Authorization header or the
// token query parameter.
func bearerToken(c echo.Context) string {
	auth := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return c.QueryParam("token")
}

// participantFromClaims maps token claims onto the tagged participant
// reference.  guest_id wins when both are somehow present, since guest
// tokens are issued by this service and never carry a subject.
func participantFromClaims(claims jwt.MapClaims) (model.ParticipantRef, bool) {
	if v, ok := claims["guest_id"].(string); ok && v != "" {
		return model.GuestRef(v), true
	}
	// Numeric claims arrive as float64 from encoding/json.
	if v, ok := claims["sub"].(float64); ok && v > 0 {
		return model.RegisteredRef(uint64(v)), true
	}
	return model.ParticipantRef{}, false
}
