package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema bootstraps the tables on startup. The conversations pair is stored
// normalized (user_low < user_high) so the unique constraint holds for the
// unordered pair regardless of who initiated.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	email         TEXT UNIQUE NOT NULL,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_active   TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS profiles (
	user_id   UUID PRIMARY KEY REFERENCES users(id),
	anon_name TEXT NOT NULL,
	bio       TEXT,
	gender    TEXT,
	age       INTEGER,
	location  TEXT,
	interests JSONB,
	answers   JSONB
);

CREATE TABLE IF NOT EXISTS preferences (
	user_id       UUID PRIMARY KEY REFERENCES users(id),
	gender_pref   TEXT NOT NULL DEFAULT 'any',
	age_min       INTEGER NOT NULL DEFAULT 18,
	age_max       INTEGER NOT NULL DEFAULT 80,
	distance_pref TEXT NOT NULL DEFAULT 'any'
);

CREATE TABLE IF NOT EXISTS blocks (
	blocker_id UUID NOT NULL REFERENCES users(id),
	blocked_id UUID NOT NULL REFERENCES users(id),
	reason     TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (blocker_id, blocked_id)
);

CREATE TABLE IF NOT EXISTS conversations (
	id             UUID PRIMARY KEY,
	user_low       UUID NOT NULL REFERENCES users(id),
	user_high      UUID NOT NULL REFERENCES users(id),
	reveal_level   INTEGER NOT NULL DEFAULT 0,
	vote_low       INTEGER,
	vote_high      INTEGER,
	last_message   TEXT,
	last_active    TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
	low_last_read  TIMESTAMPTZ,
	high_last_read TIMESTAMPTZ,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (user_low, user_high),
	CHECK (user_low < user_high)
);

CREATE TABLE IF NOT EXISTS messages (
	id              UUID PRIMARY KEY,
	conversation_id UUID NOT NULL REFERENCES conversations(id),
	sender_id       UUID NOT NULL REFERENCES users(id),
	content         TEXT NOT NULL,
	type            TEXT NOT NULL DEFAULT 'text',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_messages_conversation
	ON messages (conversation_id, created_at);
CREATE INDEX IF NOT EXISTS idx_conversations_members
	ON conversations (user_low, user_high);
`

// EnsureSchema applies the schema idempotently.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
