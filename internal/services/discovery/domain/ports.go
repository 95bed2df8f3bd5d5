package domain

import (
	"context"

	"shelfsync/internal/core/book"
)

// Source is the remote search endpoint
type Source interface {
	Search(ctx context.Context, query string, limit int) ([]book.Record, error)
}

// ServicePort is the consumer facing contract of discovery
type ServicePort interface {
	Search(ctx context.Context, in SearchInput) (Result, error)
	Suggest(in SuggestInput) []string
	Add(recs []book.Record) int
	Seed(ctx context.Context) (int, error)
	ClearHistory() int
	Stats() Stats
}
