package repositories

import (
	"context"

	log "github.com/sirupsen/logrus"

	"server-identity/internal/interfaces"
)

// The schema is applied idempotently at startup. The uniqueness constraints
// on username, email and token are the real duplicate guard under
// concurrent requests; the flow-level pre-checks only exist for friendlier
// error reporting.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		first_name VARCHAR(50),
		last_name VARCHAR(50),
		username VARCHAR(30) NOT NULL UNIQUE,
		email VARCHAR(320) NOT NULL UNIQUE,
		hash CHAR(60) NOT NULL,
		email_verified BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS tokens (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token_type VARCHAR(32) NOT NULL,
		token CHAR(64) NOT NULL UNIQUE,
		expires_at TIMESTAMPTZ NOT NULL DEFAULT NOW() + INTERVAL '1 hour',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		used_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tokens_user_id ON tokens(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tokens_expires_at ON tokens(expires_at)`,
	`CREATE OR REPLACE FUNCTION touch_updated_at() RETURNS TRIGGER AS $$
	BEGIN
		NEW.updated_at = NOW();
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql`,
	`DROP TRIGGER IF EXISTS users_touch_updated_at ON users`,
	`CREATE TRIGGER users_touch_updated_at
		BEFORE UPDATE ON users
		FOR EACH ROW
		EXECUTE FUNCTION touch_updated_at()`,
	`DROP TRIGGER IF EXISTS tokens_touch_updated_at ON tokens`,
	`CREATE TRIGGER tokens_touch_updated_at
		BEFORE UPDATE ON tokens
		FOR EACH ROW
		EXECUTE FUNCTION touch_updated_at()`,
}

// EnsureSchema creates the tables, indexes and triggers when missing.
func EnsureSchema(ctx context.Context, pool interfaces.PgxPoolIface) error {
	for _, statement := range schemaStatements {
		if _, err := pool.Exec(ctx, statement); err != nil {
			return err
		}
	}
	log.Info("Database schema ensured")
	return nil
}
