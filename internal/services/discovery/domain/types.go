// Package domain holds discovery types and ports
package domain

import (
	"time"

	"shelfsync/internal/core/batcher"
	"shelfsync/internal/core/searchindex"
)

// Origin names the layer that answered a search
type Origin string

// Search answer layers, cheapest first
const (
	// OriginNone answers an empty query
	OriginNone    Origin = "none"
	OriginHistory Origin = "history"
	OriginLocal   Origin = "local"
	OriginStore   Origin = "store"
	OriginServer  Origin = "server"
)

// SearchInput is a smart search request
type SearchInput struct {
	Query string `json:"q" validate:"max=200"`
	Limit int    `json:"limit,omitempty" validate:"omitempty,min=1,max=200"`
	// Remote skips the local index and asks the server
	Remote bool `json:"remote,omitempty"`
}

// Result is what a smart search returns
type Result struct {
	Query   string               `json:"query"`
	Origin  Origin               `json:"origin"`
	Results []searchindex.Result `json:"results"`
	At      time.Time            `json:"at"`
}

// SuggestInput asks for completions of a prefix
type SuggestInput struct {
	Prefix string `json:"prefix" validate:"required,max=100"`
	Limit  int    `json:"limit,omitempty" validate:"omitempty,min=1,max=20"`
}

// Stats describes the discovery layers
type Stats struct {
	Index       searchindex.Stats `json:"index"`
	History     int               `json:"history"`
	Searches    int64             `json:"searches"`
	HistoryHits int64             `json:"historyHits"`
	LocalHits   int64             `json:"localHits"`
	StoreHits   int64             `json:"storeHits"`
	ServerHits  int64             `json:"serverHits"`
	Batch       batcher.Stats     `json:"batch"`
}
