package module

import (
	"context"

	"shelfsync/internal/adapters/bookapi"
	"shelfsync/internal/core/book"
	"shelfsync/internal/services/catalog/domain"
)

// apiSource adapts the book API client to domain.Source
// queries go to the search endpoint, everything else to the listing
type apiSource struct{ c *bookapi.Client }

// NewSource wraps c as a catalog source
func NewSource(c *bookapi.Client) domain.Source { return apiSource{c: c} }

func (a apiSource) List(ctx context.Context, key domain.PageKey) (domain.PageResult, error) {
	var (
		p   bookapi.Page
		err error
	)
	if key.IsSearch() {
		p, err = a.c.Search(ctx, key.Query, key.Page, key.Size)
	} else {
		p, err = a.c.Books(ctx, bookapi.PageQuery{Page: key.Page, Limit: key.Size, Filters: key.Filters})
	}
	if err != nil {
		return domain.PageResult{}, err
	}
	return domain.PageResult{Items: p.Items, Total: p.Total}, nil
}

func (a apiSource) Book(ctx context.Context, id string) (book.Detail, error) {
	return a.c.BookByID(ctx, id)
}

func (a apiSource) Count(ctx context.Context, filters map[string][]string) (int, error) {
	return a.c.Count(ctx, filters)
}
