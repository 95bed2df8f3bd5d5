// Package modkit provides module wiring and core deps
package modkit

import (
	"shelfsync/internal/adapters/bookapi"
	"shelfsync/internal/platform/config"
	"shelfsync/internal/platform/logger"
	"shelfsync/internal/platform/store"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log *logger.Logger
	Cfg config.Conf
	// KV is the persisted local state, nil runs memory only
	KV *store.Store
	// API is the remote book API client
	API *bookapi.Client
}

// Logger returns Log or a named fallback
func (d Deps) Logger(component string) *logger.Logger {
	if d.Log == nil {
		return logger.Named(component)
	}
	l := d.Log.With().Str("component", component).Logger()
	return &l
}

// Client returns API or one built from BOOKAPI_* config
func (d Deps) Client() *bookapi.Client {
	if d.API != nil {
		return d.API
	}
	return bookapi.New(bookapi.FromConfig(d.Cfg.Prefix("BOOKAPI_")))
}
