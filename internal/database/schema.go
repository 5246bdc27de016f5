package database

import (
	"context"
	"database/sql"
	"fmt"
)

// DDL statements for the matchmaking tables, applied idempotently at
// startup. players is the registered directory stand-in (owned by the
// account service in production, created here so the service runs
// standalone); guest_players holds lazily created guest identities;
// matchmaking_queue is the ticket table; game_sessions receives the
// pairing handoff.
//
// matchmaking_queue indexes back the two hot paths: the candidate scan
// (queue_type, status, joined_at) and the per-participant supersede /
// status lookups (participant_id, status).
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS players (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		display_name  VARCHAR(64)  NOT NULL,
		skill_rating  INT          NOT NULL DEFAULT 1000,
		created_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS guest_players (
		guest_id      CHAR(36)    NOT NULL,
		display_name  VARCHAR(64) NOT NULL,
		created_at    DATETIME    NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (guest_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS matchmaking_queue (
		id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		participant_id VARCHAR(64) NOT NULL,
		is_guest       TINYINT(1)  NOT NULL DEFAULT 0,
		queue_type     ENUM('casual','ranked') NOT NULL,
		skill_rating   INT NULL,
		display_name   VARCHAR(64) NOT NULL,
		status         ENUM('searching','found','timeout','error') NOT NULL DEFAULT 'searching',
		paired_with    VARCHAR(64) NULL,
		session_id     BIGINT UNSIGNED NULL,
		joined_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		expires_at     DATETIME NOT NULL,
		PRIMARY KEY (id),
		KEY idx_queue_scan (queue_type, status, joined_at),
		KEY idx_queue_participant (participant_id, status)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS game_sessions (
		id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		player1_id   BIGINT UNSIGNED NULL,
		guest1_id    CHAR(36) NULL,
		player1_name VARCHAR(64) NOT NULL,
		player2_id   BIGINT UNSIGNED NULL,
		guest2_id    CHAR(36) NULL,
		player2_name VARCHAR(64) NOT NULL,
		mode         VARCHAR(16) NOT NULL,
		status       VARCHAR(16) NOT NULL DEFAULT 'waiting',
		created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_sessions_player1 (player1_id),
		KEY idx_sessions_player2 (player2_id),
		CONSTRAINT fk_sessions_player1 FOREIGN KEY (player1_id) REFERENCES players (id),
		CONSTRAINT fk_sessions_player2 FOREIGN KEY (player2_id) REFERENCES players (id),
		CONSTRAINT fk_sessions_guest1  FOREIGN KEY (guest1_id)  REFERENCES guest_players (guest_id),
		CONSTRAINT fk_sessions_guest2  FOREIGN KEY (guest2_id)  REFERENCES guest_players (guest_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates the matchmaking tables when they do not exist.
// All statements are idempotent so the function can run on every start.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
