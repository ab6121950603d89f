package mpostgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"inbound/internal/model"
	"inbound/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ repository.MessageStore = (*message)(nil)

type message struct {
	pool *pgxpool.Pool
}

func NewMessageStore(pool *pgxpool.Pool) repository.MessageStore {
	return &message{
		pool: pool,
	}
}

func (r *message) InsertIfAbsent(ctx context.Context, msg model.Message) (repository.InsertResult, error) {
	query := `
		INSERT INTO messages (message_id, sender, recipient, ts, text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (message_id) DO NOTHING
	`
	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	tag, err := r.pool.Exec(ctx, query,
		msg.MessageID,
		msg.Sender,
		msg.Recipient,
		msg.Ts.UTC(),
		msg.Text,
		createdAt.UTC(),
	)
	if err != nil {
		return repository.Inserted, fmt.Errorf("insert message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.AlreadyExisted, nil
	}
	return repository.Inserted, nil
}

func (r *message) List(ctx context.Context, filter repository.ListFilter, page repository.Page) ([]model.Message, int64, error) {
	page = page.Normalize()
	where, args := buildWhere(filter)

	var total int64
	countQuery := `SELECT COUNT(*) FROM messages` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count messages: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT message_id, sender, recipient, ts, text, created_at
		FROM messages%s
		ORDER BY ts ASC, message_id COLLATE "C" ASC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, page.Limit, page.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]model.Message, 0, page.Limit)
	for rows.Next() {
		var msg model.Message
		if err := rows.Scan(
			&msg.MessageID,
			&msg.Sender,
			&msg.Recipient,
			&msg.Ts,
			&msg.Text,
			&msg.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan message: %w", err)
		}
		msg.Ts = msg.Ts.UTC()
		msg.CreatedAt = msg.CreatedAt.UTC()
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return messages, total, nil
}

func (r *message) Stats(ctx context.Context) (repository.Stats, error) {
	var stats repository.Stats
	var firstTs, lastTs *time.Time

	query := `SELECT COUNT(*), COUNT(DISTINCT sender), MIN(ts), MAX(ts) FROM messages`
	if err := r.pool.QueryRow(ctx, query).Scan(
		&stats.TotalCount,
		&stats.UniqueSenderCount,
		&firstTs,
		&lastTs,
	); err != nil {
		return repository.Stats{}, fmt.Errorf("aggregate messages: %w", err)
	}
	if firstTs != nil {
		t := firstTs.UTC()
		stats.FirstTs = &t
	}
	if lastTs != nil {
		t := lastTs.UTC()
		stats.LastTs = &t
	}

	rows, err := r.pool.Query(ctx, `
		SELECT sender, COUNT(*) AS count
		FROM messages
		GROUP BY sender
		ORDER BY count DESC, sender COLLATE "C" ASC
		LIMIT $1
	`, repository.TopSenders)
	if err != nil {
		return repository.Stats{}, fmt.Errorf("top senders: %w", err)
	}

	senders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.SenderCount, error) {
		var sc model.SenderCount
		err := row.Scan(&sc.From, &sc.Count)
		return sc, err
	})
	if err != nil {
		return repository.Stats{}, fmt.Errorf("scan top senders: %w", err)
	}
	stats.TopSenders = senders

	return stats, nil
}

func (r *message) Ping(ctx context.Context) error {
	var one int
	return r.pool.QueryRow(ctx, `SELECT 1`).Scan(&one)
}

func (r *message) Close() {
	r.pool.Close()
}

func buildWhere(filter repository.ListFilter) (string, []any) {
	var clauses []string
	var args []any

	if filter.Sender != "" {
		args = append(args, filter.Sender)
		clauses = append(clauses, fmt.Sprintf("sender = $%d", len(args)))
	}
	if filter.Since != nil {
		args = append(args, filter.Since.UTC())
		clauses = append(clauses, fmt.Sprintf("ts >= $%d", len(args)))
	}
	if filter.Query != "" {
		args = append(args, repository.LikePattern(filter.Query))
		clauses = append(clauses, fmt.Sprintf(`text ILIKE $%d ESCAPE '\'`, len(args)))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
