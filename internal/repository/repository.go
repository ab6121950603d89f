package repository

import (
	"context"
	"strings"
	"time"

	"inbound/internal/model"
)

const (
	DefaultLimit = 50
	MaxLimit     = 100
	TopSenders   = 10
)

// InsertResult reports whether InsertIfAbsent wrote a new row.
type InsertResult int

const (
	Inserted InsertResult = iota
	AlreadyExisted
)

func (r InsertResult) String() string {
	if r == AlreadyExisted {
		return "already_existed"
	}
	return "inserted"
}

// ListFilter fields are optional and AND-combined. Zero values disable a filter.
type ListFilter struct {
	Sender string
	Since  *time.Time
	Query  string
}

type Page struct {
	Limit  int
	Offset int
}

// Normalize clamps the page into the accepted range.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

type Stats struct {
	TotalCount        int64
	UniqueSenderCount int64
	TopSenders        []model.SenderCount
	FirstTs           *time.Time
	LastTs            *time.Time
}

// MessageStore owns the messages table.
type MessageStore interface {
	InsertIfAbsent(ctx context.Context, message model.Message) (InsertResult, error)
	List(ctx context.Context, filter ListFilter, page Page) ([]model.Message, int64, error)
	Stats(ctx context.Context) (Stats, error)
	Ping(ctx context.Context) error
	Close()
}

// LikePattern turns a free-text query into a LIKE pattern matching it as a
// literal substring. Backslash is the escape character.
func LikePattern(query string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(query) + "%"
}
