package ports

import (
	"context"
	"time"

	"stagehand/internal/domain/troupe"
)

type EventRepository interface {
	Append(ctx context.Context, events []troupe.DomainEvent) error
	List(ctx context.Context, limit int) ([]troupe.DomainEvent, error)
}

// TroupeSnapshot is the persisted view of the mutable sim state: the ledger
// and every member's template plus busy-state.
type TroupeSnapshot struct {
	Ledger  troupe.Ledger
	Members []troupe.Member
	SavedAt time.Time
}

type SnapshotRepository interface {
	Save(ctx context.Context, snap TroupeSnapshot) error
	// Load returns ErrNotFound when no snapshot has ever been saved.
	Load(ctx context.Context) (TroupeSnapshot, error)
}
