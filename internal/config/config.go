package config // package config loads application configuration from environment variables

import (
	"log" // log is used to report configuration errors and halt execution
	"os"  // os provides access to environment variables
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  The matchmaking tunables default to a
// two minute search window, 10 rating points per waited second capped
// at 300, and one hour retention; they exist as knobs, not as
// load-bearing business constants.
type Config struct {
	Env       string // application environment (e.g. "dev", "prod")
	Port      string // HTTP port to listen on
	DBUser    string // database username
	DBPass    string // database password (optional)
	DBHost    string // database host address
	DBPort    string // database port number
	DBName    string // database name
	JWTSecret string // secret used to sign participant JWTs

	GuestTokenTTLHours int // guest token time-to-live in hours

	SearchTimeout      time.Duration // how long a ticket stays searching before timeout
	TolerancePerSecond int           // ranked window growth in rating points per waited second
	ToleranceCap       int           // upper bound of the ranked rating window
	Retention          time.Duration // retention of terminal tickets before purge
	SweepInterval      time.Duration // cadence of the background expiry sweeper
}

// Load reads configuration values from environment variables and returns
// a Config.  Required variables are enforced by must() and missing
// values cause the program to exit with a fatal log message; tunables
// fall back to defaults.
func Load() Config {
	return Config{
		Env:       must("APP_ENV"),      // environment (dev/test/prod)
		Port:      must("APP_PORT"),     // port to bind the HTTP server
		DBUser:    must("DB_USER"),      // database user
		DBPass:    os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:    must("DB_HOST"),      // database host
		DBPort:    must("DB_PORT"),      // database port
		DBName:    must("DB_NAME"),      // database name
		JWTSecret: must("JWT_SECRET"),   // secret used for signing participant JWTs

		GuestTokenTTLHours: envInt("GUEST_TOKEN_TTL_HOURS", 72),

		SearchTimeout:      envDur("MATCH_SEARCH_TIMEOUT", 2*time.Minute),
		TolerancePerSecond: envInt("MATCH_TOLERANCE_PER_SECOND", 10),
		ToleranceCap:       envInt("MATCH_TOLERANCE_CAP", 300),
		Retention:          envDur("MATCH_TICKET_RETENTION", time.Hour),
		SweepInterval:      envDur("MATCH_SWEEP_INTERVAL", 30*time.Second),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
