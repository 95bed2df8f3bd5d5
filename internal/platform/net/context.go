// Package net carries request scoped identity between middleware and handlers
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const keyUser ctxKey = "user"

// WithRequestID stores id where chi's request id lookup finds it
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, chimw.RequestIDKey, id)
}

// WithUser annotates ctx with the name behind an accepted bearer token
func WithUser(ctx context.Context, user string) context.Context {
	if user == "" {
		return ctx
	}
	return context.WithValue(ctx, keyUser, user)
}

// RequestID returns the request id on ctx, if any
func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }

// UserID returns the authenticated user on ctx, if any
func UserID(ctx context.Context) string {
	v, _ := ctx.Value(keyUser).(string)
	return v
}
