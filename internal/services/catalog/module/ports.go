package module

import (
	"shelfsync/internal/core/book"
	"shelfsync/internal/services/catalog/domain"
)

// Ports exposed to other modules
type Ports struct {
	Catalog domain.ServicePort
}

// Indexer receives the items of every page fetched from the network
type Indexer interface {
	Add(recs []book.Record) int
}

// Needs are the ports the catalog consumes, injected with modkit.WithPorts
type Needs struct {
	Indexer Indexer
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
