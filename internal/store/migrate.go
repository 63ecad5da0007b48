package store

import (
	"context"

	"github.com/jackc/pgx/v5"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	email TEXT UNIQUE NOT NULL,
	name TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS chats (
	id UUID PRIMARY KEY,
	admin_id UUID NOT NULL REFERENCES users(id),
	name TEXT NOT NULL,
	agenda TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	last_active_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	message_count BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS chat_participants (
	chat_id UUID NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
	user_id UUID NOT NULL REFERENCES users(id),
	joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (chat_id, user_id)
);

CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	chat_id UUID NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
	sender_id TEXT NOT NULL,
	content TEXT NOT NULL,
	ts BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
CREATE INDEX IF NOT EXISTS idx_participants_user ON chat_participants(user_id);
CREATE INDEX IF NOT EXISTS idx_messages_chat_ts ON messages(chat_id, ts);
`

// RunMigrations applies the PostgreSQL schema.
func RunMigrations(ctx context.Context, databaseURL string) error {
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	_, err = conn.Exec(ctx, postgresSchema)
	return err
}
