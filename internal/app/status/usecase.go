package status

import (
	"context"

	"stagehand/internal/app/schedule"
	"stagehand/internal/domain/troupe"
)

// SnapshotProvider is the scheduler's read surface. Snapshots are copies and
// may be stale by the time the caller looks at them.
type SnapshotProvider interface {
	Snapshot() schedule.SimSnapshot
}

type UseCase struct {
	Sim     SnapshotProvider
	Catalog *schedule.Catalog
}

type Response struct {
	Members []troupe.Member          `json:"members"`
	Ledger  troupe.Ledger            `json:"ledger"`
	Groups  []schedule.GroupStatus   `json:"groups"`
	Actions []troupe.ActionDefinition `json:"actions,omitempty"`
}

func (u UseCase) Execute(_ context.Context) (Response, error) {
	snap := u.Sim.Snapshot()
	resp := Response{
		Members: snap.Members,
		Ledger:  snap.Ledger,
		Groups:  snap.Groups,
	}
	if u.Catalog != nil {
		resp.Actions = u.Catalog.List()
	}
	return resp, nil
}
