// Package memory backs the repository ports with process-local state, for
// tests and for running the server without postgres.
package memory

import (
	"sync"

	"stagehand/internal/app/ports"
	"stagehand/internal/domain/troupe"
)

type Store struct {
	mu       sync.RWMutex
	events   []troupe.DomainEvent
	snapshot *ports.TroupeSnapshot
}

func NewStore() *Store {
	return &Store{}
}
