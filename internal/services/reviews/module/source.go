package module

import (
	"context"

	"shelfsync/internal/adapters/bookapi"
	"shelfsync/internal/services/reviews/domain"
)

// apiSource adapts the book API client to domain.Source
type apiSource struct{ c *bookapi.Client }

// NewSource wraps c as a review source
func NewSource(c *bookapi.Client) domain.Source { return apiSource{c: c} }

func (a apiSource) Reviews(ctx context.Context, bookID string) ([]domain.Review, error) {
	rows, err := a.c.Reviews(ctx, bookID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Review, len(rows))
	for i, r := range rows {
		out[i] = fromAPI(r)
	}
	return out, nil
}

func (a apiSource) Post(ctx context.Context, in domain.SubmitInput) (domain.Review, error) {
	r, err := a.c.PostReview(ctx, bookapi.ReviewInput{BookID: in.BookID, Comment: in.Comment, Rating: in.Rating})
	if err != nil {
		return domain.Review{}, err
	}
	return fromAPI(r), nil
}

func fromAPI(r bookapi.Review) domain.Review {
	return domain.Review{
		ID:        r.ID,
		BookID:    r.BookID,
		Comment:   r.Comment,
		Rating:    r.Rating,
		UserEmail: r.UserEmail,
		UserName:  r.UserName,
		CreatedAt: r.CreatedAt,
	}
}
