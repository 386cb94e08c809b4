package memory

import (
	"context"

	"stagehand/internal/domain/troupe"
)

type EventRepo struct {
	store *Store
}

func NewEventRepo(store *Store) EventRepo {
	return EventRepo{store: store}
}

func (r EventRepo) Append(_ context.Context, events []troupe.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.events = append(r.store.events, events...)
	return nil
}

// List returns the most recent events first, matching the postgres adapter.
func (r EventRepo) List(_ context.Context, limit int) ([]troupe.DomainEvent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	n := len(r.store.events)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]troupe.DomainEvent, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, r.store.events[i])
	}
	return out, nil
}
