// Package domain holds to be read list types and ports
package domain

import (
	"context"
	"time"
)

// Entry is one book on the list
type Entry struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Author   string    `json:"author,omitempty"`
	ImageURL string    `json:"imageUrl,omitempty"`
	AddedAt  time.Time `json:"addedAt"`
}

// AddInput puts a book on the list
type AddInput struct {
	ID       string `json:"id" validate:"required,max=200"`
	Title    string `json:"title" validate:"max=500"`
	Author   string `json:"author,omitempty" validate:"max=500"`
	ImageURL string `json:"imageUrl,omitempty" validate:"omitempty,url"`
}

// Removal remembers where an entry sat so it can be restored
type Removal struct {
	Entry Entry `json:"entry"`
	Index int   `json:"index"`
}

// ServicePort is the consumer facing contract of the list
type ServicePort interface {
	List(ctx context.Context) ([]Entry, error)
	Add(ctx context.Context, in AddInput) (bool, error)
	Remove(ctx context.Context, id string) (Removal, error)
	Restore(ctx context.Context, id string) (bool, error)
	Clear(ctx context.Context) (int, error)
}
