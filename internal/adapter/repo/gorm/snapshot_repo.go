package gormrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"stagehand/internal/adapter/repo/gorm/model"
	"stagehand/internal/app/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const snapshotRowID = 1

type SnapshotRepo struct {
	db *gorm.DB
}

func NewSnapshotRepo(db *gorm.DB) SnapshotRepo {
	return SnapshotRepo{db: db}
}

func (r SnapshotRepo) Save(ctx context.Context, snap ports.TroupeSnapshot) error {
	ledger, err := json.Marshal(snap.Ledger)
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}
	members, err := json.Marshal(snap.Members)
	if err != nil {
		return fmt.Errorf("marshal members: %w", err)
	}
	row := model.TroupeSnapshot{
		ID:      snapshotRowID,
		Ledger:  ledger,
		Members: members,
		SavedAt: snap.SavedAt,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&row).Error
}

func (r SnapshotRepo) Load(ctx context.Context) (ports.TroupeSnapshot, error) {
	var row model.TroupeSnapshot
	if err := r.db.WithContext(ctx).First(&row, snapshotRowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.TroupeSnapshot{}, ports.ErrNotFound
		}
		return ports.TroupeSnapshot{}, err
	}

	snap := ports.TroupeSnapshot{SavedAt: row.SavedAt}
	if err := json.Unmarshal(row.Ledger, &snap.Ledger); err != nil {
		return ports.TroupeSnapshot{}, fmt.Errorf("unmarshal ledger: %w", err)
	}
	if snap.Ledger.Morale == nil {
		snap.Ledger.Morale = map[string]int{}
	}
	if err := json.Unmarshal(row.Members, &snap.Members); err != nil {
		return ports.TroupeSnapshot{}, fmt.Errorf("unmarshal members: %w", err)
	}
	return snap, nil
}
