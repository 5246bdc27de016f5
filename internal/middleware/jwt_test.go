package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelduel/matchmaking/internal/model"
	"github.com/reelduel/matchmaking/internal/utils"
)

const testSecret = "unit-test-secret"

// invokeJWT runs a request through the JWTAuth middleware and a probe
// handler that reports the resolved participant.
func invokeJWT(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, model.ParticipantRef, bool) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got model.ParticipantRef
	var seen bool
	h := JWTAuth(testSecret)(func(c echo.Context) error {
		got, seen = Participant(c)
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec, got, seen
}

func TestJWTAuthGuestToken(t *testing.T) {
	tok, err := utils.NewGuestToken(testSecret, "3f1c9a2e-8f4b-4e2a-9c7d-2b6f1a0e5d43", 72)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/matchmaking/status", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)

	rec, ref, seen := invokeJWT(t, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, seen)
	assert.True(t, ref.IsGuest())
	id, _ := ref.GuestID()
	assert.Equal(t, "3f1c9a2e-8f4b-4e2a-9c7d-2b6f1a0e5d43", id)
}

func TestJWTAuthPlayerToken(t *testing.T) {
	tok, err := utils.NewPlayerToken(testSecret, 42, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/matchmaking/status", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)

	rec, ref, seen := invokeJWT(t, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, seen)
	assert.False(t, ref.IsGuest())
	id, _ := ref.PlayerID()
	assert.Equal(t, uint64(42), id)
}

func TestJWTAuthQueryParamFallback(t *testing.T) {
	// WebSocket upgrades cannot set headers from the browser, so the
	// token may arrive as a query parameter instead.
	tok, err := utils.NewGuestToken(testSecret, "3f1c9a2e-8f4b-4e2a-9c7d-2b6f1a0e5d43", 72)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/matchmaking/ws?token="+tok.Token, nil)

	rec, ref, seen := invokeJWT(t, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, seen)
	assert.True(t, ref.IsGuest())
}

func TestJWTAuthMissingToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/matchmaking/status", nil)

	rec, _, seen := invokeJWT(t, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, seen)
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	tok, err := utils.NewGuestToken("some-other-secret", "3f1c9a2e-8f4b-4e2a-9c7d-2b6f1a0e5d43", 72)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/matchmaking/status", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)

	rec, _, seen := invokeJWT(t, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, seen)
}

func TestJWTAuthRejectsExpiredToken(t *testing.T) {
	claims := jwt.MapClaims{
		"guest_id": "3f1c9a2e-8f4b-4e2a-9c7d-2b6f1a0e5d43",
		"exp":      time.Now().UTC().Add(-time.Minute).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/matchmaking/status", nil)
	req.Header.Set("Authorization", "Bearer "+signed)

	rec, _, seen := invokeJWT(t, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, seen)
}

func TestJWTAuthRejectsTokenWithoutIdentity(t *testing.T) {
	// Valid signature but neither guest_id nor sub.
	claims := jwt.MapClaims{"exp": time.Now().UTC().Add(time.Hour).Unix()}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/matchmaking/status", nil)
	req.Header.Set("Authorization", "Bearer "+signed)

	rec, _, seen := invokeJWT(t, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, seen)
}
