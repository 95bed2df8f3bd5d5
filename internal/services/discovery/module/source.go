package module

import (
	"context"

	"shelfsync/internal/adapters/bookapi"
	"shelfsync/internal/core/book"
	"shelfsync/internal/services/discovery/domain"
)

// apiSource runs discovery searches against the first page of the search endpoint
type apiSource struct{ c *bookapi.Client }

// NewSource wraps c as a discovery source
func NewSource(c *bookapi.Client) domain.Source { return apiSource{c: c} }

func (a apiSource) Search(ctx context.Context, q string, limit int) ([]book.Record, error) {
	p, err := a.c.Search(ctx, q, 1, limit)
	if err != nil {
		return nil, err
	}
	return p.Items, nil
}
