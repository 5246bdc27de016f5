package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelduel/matchmaking/internal/matchmaking"
	"github.com/reelduel/matchmaking/internal/middleware"
	"github.com/reelduel/matchmaking/internal/utils"
)

const mmTestSecret = "unit-test-secret"
const mmTestGuest = "1b4e28ba-2fa1-11d2-883f-0016d3cca427"

// newMatchmakingServer builds an echo instance with the matchmaking
// routes mounted behind real JWT auth, backed by a sqlmock database.
func newMatchmakingServer(t *testing.T) (*echo.Echo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := matchmaking.NewService(db, nil, nil, matchmaking.Config{})
	h := NewMatchmakingHandler(svc)

	e := echo.New()
	e.GET("/v1/queues/:type/size", h.PoolSize)
	g := e.Group("/v1", middleware.JWTAuth(mmTestSecret))
	g.POST("/matchmaking/join", h.Join)
	g.DELETE("/matchmaking", h.Leave)
	g.GET("/matchmaking/status", h.Status)
	g.GET("/sessions/:id", h.GetSession)
	return e, mock
}

func guestAuth(t *testing.T, req *http.Request) {
	t.Helper()
	tok, err := utils.NewGuestToken(mmTestSecret, mmTestGuest, 72)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
}

func TestJoinRequiresAuth(t *testing.T) {
	e, mock := newMatchmakingServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/matchmaking/join",
		strings.NewReader(`{"queue_type":"casual"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinRejectsUnknownQueueType(t *testing.T) {
	e, mock := newMatchmakingServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/matchmaking/join",
		strings.NewReader(`{"queue_type":"speedrun"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	guestAuth(t, req)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinReturnsSearchingTicket(t *testing.T) {
	e, mock := newMatchmakingServer(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM guest_players WHERE guest_id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"guest_id", "display_name", "created_at"}).
			AddRow(mmTestGuest, "PopcornPete", time.Now().UTC()))
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE status = 'searching' AND expires_at <= UTC_TIMESTAMP()")).
		WillReturnRows(sqlmock.NewRows([]string{"participant_id", "is_guest", "queue_type"}))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO guest_players")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM matchmaking_queue")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO matchmaking_queue")).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY joined_at ASC, id ASC LIMIT 1 FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "participant_id", "is_guest", "skill_rating", "display_name", "joined_at"}))
	mock.ExpectCommit()

	req := httptest.NewRequest(http.MethodPost, "/v1/matchmaking/join",
		strings.NewReader(`{"queue_type":"casual"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	guestAuth(t, req)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(7), body["ticket_id"])
	assert.Equal(t, mmTestGuest, body["participant_id"])
	assert.Equal(t, "searching", body["status"])
	assert.NotContains(t, body, "session_id")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveReportsRemoval(t *testing.T) {
	e, mock := newMatchmakingServer(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM matchmaking_queue WHERE participant_id = ? AND status = 'searching'")).
		WithArgs(mmTestGuest).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodDelete, "/v1/matchmaking", nil)
	guestAuth(t, req)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body["left"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatusNotFoundWhenNeverQueued(t *testing.T) {
	e, mock := newMatchmakingServer(t)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY id DESC LIMIT 1")).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "participant_id", "is_guest", "queue_type", "skill_rating", "display_name",
			"status", "paired_with", "session_id", "joined_at", "updated_at", "expires_at",
		}))

	req := httptest.NewRequest(http.MethodGet, "/v1/matchmaking/status", nil)
	guestAuth(t, req)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPoolSizeRejectsUnknownType(t *testing.T) {
	e, mock := newMatchmakingServer(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/queues/blitz/size", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSessionInvalidAndMissing(t *testing.T) {
	e, mock := newMatchmakingServer(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/abc", nil)
	guestAuth(t, req)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	mock.ExpectQuery(regexp.QuoteMeta("FROM game_sessions WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "slot1_player_id", "slot1_guest_id", "slot1_display_name",
			"slot2_player_id", "slot2_guest_id", "slot2_display_name",
			"mode", "status", "created_at",
		}))

	req = httptest.NewRequest(http.MethodGet, "/v1/sessions/99", nil)
	guestAuth(t, req)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
