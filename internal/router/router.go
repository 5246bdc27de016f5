package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/reelduel/matchmaking/internal/handler"    // import the handlers that implement business logic
	"github.com/reelduel/matchmaking/internal/middleware" // import middleware for JWT authentication and rate limiting
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance: the health check, guest identity
// creation, and the public pool-size counters shown on the lobby
// screen before a visitor has any identity.
func RegisterRoutes(e *echo.Echo, g *handler.GuestHandler, m *handler.MatchmakingHandler) {
	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)
	// Fabricate a guest identity and its token.
	e.POST("/v1/guests", g.CreateGuest)
	// Count of currently searching tickets per queue type; sweeps
	// expired tickets first so the number shown is honest.
	e.GET("/v1/queues/:type/size", m.PoolSize)
}

// RegisterMatchmaking registers the authenticated matchmaking routes.
// All of them require a valid participant token (registered player or
// guest); the join endpoint is additionally rate limited because every
// join is a locking transaction against the queue table.
func RegisterMatchmaking(e *echo.Echo, m *handler.MatchmakingHandler, ws *handler.WSHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))

	// Enqueue: supersedes any prior searching ticket and eagerly
	// attempts a pairing inside the same transaction.
	auth.POST("/matchmaking/join", m.Join, limit)
	// Voluntary leave; a no-op when the ticket was already paired.
	auth.DELETE("/matchmaking", m.Leave)
	// Read-only projection of the caller's most recent ticket.
	auth.GET("/matchmaking/status", m.Status)
	// Realtime ticket events over WebSocket (token via query param).
	auth.GET("/matchmaking/ws", ws.Serve)
	// Paired clients fetch the created session and hand off to gameplay.
	auth.GET("/sessions/:id", m.GetSession)
}
