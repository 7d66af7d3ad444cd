package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"afribase-messaging/internal/logger"
)

// Connect initializes the database connection and runs migrations.
func Connect(dsn string) (*sqlx.DB, error) {
	database, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(database); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return database, nil
}

func runMigrations(database *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS conversations (
            key TEXT PRIMARY KEY,
            user_a TEXT NOT NULL,
            user_b TEXT NOT NULL,
            last_seq BIGINT NOT NULL DEFAULT 0,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS messages (
            id BIGSERIAL PRIMARY KEY,
            conversation_key TEXT NOT NULL REFERENCES conversations(key) ON DELETE CASCADE,
            seq BIGINT NOT NULL,
            sender_id TEXT NOT NULL,
            kind TEXT NOT NULL,
            body TEXT NOT NULL DEFAULT '',
            object_ref TEXT NOT NULL DEFAULT '',
            content_type TEXT NOT NULL DEFAULT '',
            state TEXT NOT NULL DEFAULT 'sent',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            UNIQUE(conversation_key, seq)
        );`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation_order
            ON messages(conversation_key, created_at, seq);`,
		`CREATE TABLE IF NOT EXISTS inbox_entries (
            user_id TEXT NOT NULL,
            conversation_key TEXT NOT NULL REFERENCES conversations(key) ON DELETE CASCADE,
            peer_id TEXT NOT NULL,
            last_message_id BIGINT NOT NULL,
            last_sender_id TEXT NOT NULL,
            last_kind TEXT NOT NULL,
            last_preview TEXT NOT NULL DEFAULT '',
            unread_count INT NOT NULL DEFAULT 0,
            last_activity TIMESTAMPTZ NOT NULL,
            PRIMARY KEY(user_id, conversation_key)
        );`,
		`CREATE INDEX IF NOT EXISTS idx_inbox_entries_user_order
            ON inbox_entries(user_id, unread_count, last_activity);`,
	}

	for _, m := range migrations {
		if _, err := database.Exec(m); err != nil {
			return err
		}
	}
	logger.Info().Msg("database migrations applied")
	return nil
}
