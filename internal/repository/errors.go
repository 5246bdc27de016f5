// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and the matchmaking service to distinguish between different
// failure scenarios without string matching. For example, ErrNoTicket
// signals that a participant has never queued, which handlers translate
// into an HTTP 404 rather than a server error.
package repository

import "errors"

// ErrNoTicket is returned when a participant has no matchmaking ticket
// at all, current or historical. Handlers should translate this into an
// HTTP 404 response.
var ErrNoTicket = errors.New("no matchmaking ticket")

// ErrPlayerNotFound is returned when a registered player id does not
// resolve in the directory. Enqueue rejects such requests synchronously
// before any ticket is inserted.
var ErrPlayerNotFound = errors.New("player not found")

// ErrSessionNotFound is returned when a session id does not exist.
var ErrSessionNotFound = errors.New("session not found")
