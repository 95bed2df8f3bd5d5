// Package domain holds review types and ports
package domain

import (
	"context"
	"time"

	"shelfsync/internal/core/pending"
)

// Review is one review of a book; Pending marks a local submission the server has not confirmed
type Review struct {
	ID        string    `json:"id"`
	BookID    string    `json:"bookId"`
	Comment   string    `json:"comment"`
	Rating    int       `json:"rating"`
	UserEmail string    `json:"userEmail,omitempty"`
	UserName  string    `json:"userName,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Pending   bool      `json:"pending,omitempty"`
}

// Identity is who wrote r
func (r Review) Identity() pending.Identity {
	return pending.Identity{Email: r.UserEmail, Name: r.UserName}
}

// Confirms reports whether server review s is the confirmed copy of local review r
func (r Review) Confirms(s Review) bool {
	if r.ID != "" && r.ID == s.ID {
		return true
	}
	return pending.SameText(r.Comment, s.Comment) && r.Identity().Matches(s.Identity())
}

// SubmitInput is a new review
type SubmitInput struct {
	BookID    string `json:"bookId" validate:"required,max=200"`
	Comment   string `json:"comment" validate:"required,max=4000"`
	Rating    int    `json:"rating" validate:"min=1,max=5"`
	UserEmail string `json:"userEmail,omitempty" validate:"omitempty,email"`
	UserName  string `json:"userName,omitempty" validate:"omitempty,max=200"`
}

// Listing is the merged review list of one book, still pending reviews first
type Listing struct {
	BookID  string   `json:"bookId"`
	Reviews []Review `json:"reviews"`
	Pending int      `json:"pending"`
	Cached  bool     `json:"cached"`
}

// Source is the remote review endpoint
type Source interface {
	Reviews(ctx context.Context, bookID string) ([]Review, error)
	Post(ctx context.Context, in SubmitInput) (Review, error)
}

// ServicePort is the consumer facing contract of reviews
type ServicePort interface {
	Load(ctx context.Context, bookID string, refresh bool) (Listing, error)
	Submit(ctx context.Context, in SubmitInput) (Review, error)
	Pending(ctx context.Context, bookID string) ([]Review, error)
}
