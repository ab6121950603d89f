package msqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"inbound/internal/model"
	"inbound/internal/repository"
)

// timeLayout is fixed width so lexical order on the TEXT column matches
// chronological order.
const timeLayout = "2006-01-02T15:04:05.000000Z"

var _ repository.MessageStore = (*message)(nil)

type message struct {
	db *sql.DB
}

func NewMessageStore(db *sql.DB) repository.MessageStore {
	return &message{db: db}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Parse(time.RFC3339Nano, raw)
	}
	return t, nil
}

func (r *message) InsertIfAbsent(ctx context.Context, msg model.Message) (repository.InsertResult, error) {
	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var text sql.NullString
	if msg.Text != nil {
		text = sql.NullString{String: *msg.Text, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO messages (message_id, sender, recipient, ts, text, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (message_id) DO NOTHING
	`, msg.MessageID, msg.Sender, msg.Recipient, formatTime(msg.Ts), text, formatTime(createdAt))
	if err != nil {
		return repository.Inserted, fmt.Errorf("insert message: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return repository.Inserted, fmt.Errorf("insert message: %w", err)
	}
	if affected == 0 {
		return repository.AlreadyExisted, nil
	}
	return repository.Inserted, nil
}

func (r *message) List(ctx context.Context, filter repository.ListFilter, page repository.Page) ([]model.Message, int64, error) {
	page = page.Normalize()
	where, args := buildWhere(filter)

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count messages: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT message_id, sender, recipient, ts, text, created_at
		FROM messages`+where+`
		ORDER BY ts ASC, message_id ASC
		LIMIT ? OFFSET ?
	`, append(args, page.Limit, page.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	out := make([]model.Message, 0, page.Limit)
	for rows.Next() {
		var m model.Message
		var ts, createdAt string
		var text sql.NullString

		if err := rows.Scan(&m.MessageID, &m.Sender, &m.Recipient, &ts, &text, &createdAt); err != nil {
			return nil, 0, fmt.Errorf("scan message: %w", err)
		}
		if m.Ts, err = parseTime(ts); err != nil {
			return nil, 0, fmt.Errorf("parse ts of %s: %w", m.MessageID, err)
		}
		if m.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, 0, fmt.Errorf("parse created_at of %s: %w", m.MessageID, err)
		}
		if text.Valid {
			s := text.String
			m.Text = &s
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}

func (r *message) Stats(ctx context.Context) (repository.Stats, error) {
	var stats repository.Stats
	var firstTs, lastTs sql.NullString

	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT sender), MIN(ts), MAX(ts) FROM messages`,
	).Scan(&stats.TotalCount, &stats.UniqueSenderCount, &firstTs, &lastTs); err != nil {
		return repository.Stats{}, fmt.Errorf("aggregate messages: %w", err)
	}

	for _, bound := range []struct {
		raw sql.NullString
		dst **time.Time
	}{{firstTs, &stats.FirstTs}, {lastTs, &stats.LastTs}} {
		if !bound.raw.Valid {
			continue
		}
		t, err := parseTime(bound.raw.String)
		if err != nil {
			return repository.Stats{}, fmt.Errorf("parse ts bound: %w", err)
		}
		*bound.dst = &t
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT sender, COUNT(*) AS count
		FROM messages
		GROUP BY sender
		ORDER BY count DESC, sender ASC
		LIMIT ?
	`, repository.TopSenders)
	if err != nil {
		return repository.Stats{}, fmt.Errorf("top senders: %w", err)
	}
	defer rows.Close()

	stats.TopSenders = make([]model.SenderCount, 0, repository.TopSenders)
	for rows.Next() {
		var sc model.SenderCount
		if err := rows.Scan(&sc.From, &sc.Count); err != nil {
			return repository.Stats{}, fmt.Errorf("scan top senders: %w", err)
		}
		stats.TopSenders = append(stats.TopSenders, sc)
	}
	return stats, rows.Err()
}

func (r *message) Ping(ctx context.Context) error {
	var one int
	return r.db.QueryRowContext(ctx, `SELECT 1`).Scan(&one)
}

func (r *message) Close() {
	_ = r.db.Close()
}

func buildWhere(filter repository.ListFilter) (string, []any) {
	var clauses []string
	var args []any

	if filter.Sender != "" {
		clauses = append(clauses, "sender = ?")
		args = append(args, filter.Sender)
	}
	if filter.Since != nil {
		clauses = append(clauses, "ts >= ?")
		args = append(args, formatTime(*filter.Since))
	}
	if filter.Query != "" {
		// LIKE is case-insensitive for ASCII in SQLite.
		clauses = append(clauses, `text LIKE ? ESCAPE '\'`)
		args = append(args, repository.LikePattern(filter.Query))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
