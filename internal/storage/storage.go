package storage

import (
	"context"
	"fmt"
	"strings"

	"inbound/internal/mpostgres"
	"inbound/internal/msqlite"
	"inbound/internal/pkg/gpostgresql"
	"inbound/internal/pkg/gsqlite"
	"inbound/internal/repository"

	"github.com/useinsider/go-pkg/inslogger"
)

// Open builds the message store selected by the DATABASE_URL scheme and
// makes sure the schema exists.
func Open(ctx context.Context, databaseURL string, logger inslogger.Interface) (repository.MessageStore, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		pool, err := gpostgresql.NewDBConnection(ctx, databaseURL, logger)
		if err != nil {
			return nil, err
		}
		if err := gpostgresql.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return mpostgres.NewMessageStore(pool), nil

	case strings.HasPrefix(databaseURL, "sqlite:"):
		path, err := gsqlite.PathFromURL(databaseURL)
		if err != nil {
			return nil, err
		}
		db, err := gsqlite.Open(ctx, path, logger)
		if err != nil {
			return nil, err
		}
		return msqlite.NewMessageStore(db), nil
	}

	return nil, fmt.Errorf("unsupported DATABASE_URL scheme: %q", redact(databaseURL))
}

func redact(databaseURL string) string {
	if i := strings.Index(databaseURL, "://"); i >= 0 {
		return databaseURL[:i+3] + "..."
	}
	return "..."
}
