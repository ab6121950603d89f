package gpostgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/useinsider/go-pkg/inslogger"
)

type ExecQueryRower interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func NewDBConnection(ctx context.Context, databaseURL string, logger inslogger.Interface) (*pgxpool.Pool, error) {
	parseConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		logger.Errorf("Error parsing pool config: %v", err)
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	parseConfig.MaxConns = 10
	parseConfig.MinConns = 2
	parseConfig.MaxConnLifetime = 30 * time.Minute
	parseConfig.MaxConnIdleTime = 10 * time.Minute
	parseConfig.HealthCheckPeriod = 2 * time.Minute

	db, err := pgxpool.NewWithConfig(ctx, parseConfig)
	if err != nil {
		logger.Errorf("error connecting to database: %v", err)
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.Ping(pingCtx); err != nil {
		db.Close()
		logger.Errorf("error pinging database: %v", err)
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	logger.Log("connected to PostgreSQL")
	return db, nil
}

// EnsureSchema creates the messages table and its indexes when missing.
func EnsureSchema(ctx context.Context, db ExecQueryRower) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS messages (
			message_id VARCHAR(255) PRIMARY KEY,
			sender     VARCHAR(20)  NOT NULL,
			recipient  VARCHAR(20)  NOT NULL,
			ts         TIMESTAMPTZ  NOT NULL,
			text       TEXT,
			created_at TIMESTAMPTZ  NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS ix_messages_sender ON messages (sender)`,
		`CREATE INDEX IF NOT EXISTS ix_messages_ts ON messages (ts)`,
		`CREATE INDEX IF NOT EXISTS ix_messages_ts_message_id ON messages (ts, message_id)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
