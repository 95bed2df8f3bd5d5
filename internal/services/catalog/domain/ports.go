package domain

import (
	"context"

	"shelfsync/internal/core/book"
)

// Source fetches raw pages from upstream
type Source interface {
	List(ctx context.Context, key PageKey) (PageResult, error)
	Book(ctx context.Context, id string) (book.Detail, error)
	Count(ctx context.Context, filters map[string][]string) (int, error)
}

// ServicePort is the consumer facing contract of the catalog
type ServicePort interface {
	FetchPage(ctx context.Context, key PageKey) (PageResult, error)
	LoadPage(ctx context.Context, in LoadInput) (PageResult, error)
	AppendPage(ctx context.Context, in LoadInput) (PageResult, error)
	NextPage(ctx context.Context) (PageResult, error)
	PrevPage(ctx context.Context) (PageResult, error)
	GoToPage(ctx context.Context, page int) (PageResult, error)
	Search(ctx context.Context, query string, filters map[string][]string) (PageResult, error)
	Refresh(ctx context.Context) (PageResult, error)
	Book(ctx context.Context, id string) (book.Detail, error)
	Count(ctx context.Context, filters map[string][]string) (int, error)
	State() State
	Stats() Stats
}
