package gsqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/useinsider/go-pkg/inslogger"
)

const MemoryPath = ":memory:"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS messages (
	message_id TEXT PRIMARY KEY NOT NULL,
	sender     TEXT NOT NULL,
	recipient  TEXT NOT NULL,
	ts         TEXT NOT NULL,
	text       TEXT,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS ix_messages_sender ON messages (sender);
CREATE INDEX IF NOT EXISTS ix_messages_ts ON messages (ts);
CREATE INDEX IF NOT EXISTS ix_messages_ts_message_id ON messages (ts, message_id);
`

// PathFromURL extracts the file path from a sqlite:/// URL.
// "sqlite:///./data/messages.db" yields "./data/messages.db" and
// "sqlite:////var/lib/messages.db" yields "/var/lib/messages.db".
func PathFromURL(databaseURL string) (string, error) {
	const prefix = "sqlite:///"
	if !strings.HasPrefix(databaseURL, prefix) {
		return "", fmt.Errorf("unsupported sqlite url %q", databaseURL)
	}
	path := strings.TrimPrefix(databaseURL, prefix)
	if path == "" {
		return "", fmt.Errorf("sqlite url %q has no path", databaseURL)
	}
	return path, nil
}

// Open creates or opens the database at path, applies pragmas and the schema.
// The parent directory is created when missing.
func Open(ctx context.Context, path string, logger inslogger.Interface) (*sql.DB, error) {
	if path != MemoryPath {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows a single writer; one connection avoids SQLITE_BUSY and
	// keeps :memory: databases shared.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(ctx, db, path); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	logger.Logf("opened SQLite database at %s", path)
	return db, nil
}

func applyPragmas(ctx context.Context, db *sql.DB, path string) error {
	pragmas := []string{
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	if path != MemoryPath {
		pragmas = append([]string{"PRAGMA journal_mode = WAL"}, pragmas...)
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}
