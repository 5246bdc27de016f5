package matchmaking

import "time"

// Default tunables mirror the reference behaviour: a two minute search
// window, and a ranked rating window that widens by 10 points per second
// of candidate wait, capped at 300 points.  All of them are
// configuration, not business constants; see config.Load.
const (
	DefaultSearchTimeout      = 2 * time.Minute
	DefaultTolerancePerSecond = 10
	DefaultToleranceCap       = 300
	DefaultRetention          = time.Hour
	DefaultGuestRating        = 1000
)

// Config carries the matchmaking tunables.  Zero values fall back to
// the reference defaults.
type Config struct {
	SearchTimeout      time.Duration // how long a ticket stays searching before timeout
	TolerancePerSecond int           // ranked window growth in rating points per waited second
	ToleranceCap       int           // upper bound of the ranked window in rating points
	Retention          time.Duration // how long terminal tickets are kept before purge
}

// withDefaults fills unset fields with the reference defaults.
func (c Config) withDefaults() Config {
	if c.SearchTimeout <= 0 {
		c.SearchTimeout = DefaultSearchTimeout
	}
	if c.TolerancePerSecond <= 0 {
		c.TolerancePerSecond = DefaultTolerancePerSecond
	}
	if c.ToleranceCap <= 0 {
		c.ToleranceCap = DefaultToleranceCap
	}
	if c.Retention <= 0 {
		c.Retention = DefaultRetention
	}
	return c
}

// RatingTolerance returns the ranked rating window for a ticket that
// has waited the given duration: min(cap, floor(seconds) * slope).  A
// ticket that just joined tolerates a zero rating difference; the
// window then widens linearly so long-waiting players trade match
// quality for match speed, up to the cap.  The SQL candidate predicate
// applies the same formula on the candidate's wait.
func RatingTolerance(waited time.Duration, cfg Config) int {
	cfg = cfg.withDefaults()
	if waited < 0 {
		waited = 0
	}
	tol := int(waited/time.Second) * cfg.TolerancePerSecond
	if tol > cfg.ToleranceCap {
		return cfg.ToleranceCap
	}
	return tol
}
