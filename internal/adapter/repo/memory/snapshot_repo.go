package memory

import (
	"context"

	"stagehand/internal/app/ports"
	"stagehand/internal/domain/troupe"
)

type SnapshotRepo struct {
	store *Store
}

func NewSnapshotRepo(store *Store) SnapshotRepo {
	return SnapshotRepo{store: store}
}

func (r SnapshotRepo) Save(_ context.Context, snap ports.TroupeSnapshot) error {
	copied := copySnapshot(snap)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.snapshot = &copied
	return nil
}

func (r SnapshotRepo) Load(_ context.Context) (ports.TroupeSnapshot, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if r.store.snapshot == nil {
		return ports.TroupeSnapshot{}, ports.ErrNotFound
	}
	return copySnapshot(*r.store.snapshot), nil
}

func copySnapshot(snap ports.TroupeSnapshot) ports.TroupeSnapshot {
	morale := make(map[string]int, len(snap.Ledger.Morale))
	for k, v := range snap.Ledger.Morale {
		morale[k] = v
	}
	snap.Ledger.Morale = morale

	members := make([]troupe.Member, len(snap.Members))
	for i, m := range snap.Members {
		if m.Engagement != nil {
			eng := *m.Engagement
			m.Engagement = &eng
		}
		members[i] = m
	}
	snap.Members = members
	return snap
}
