// Package model holds the gorm row types for the postgres adapter. The
// schema lives in migrations/; these structs mirror it by hand because the
// tables are few and the columns stable.
package model

import "time"

type DomainEvent struct {
	ID         int64 `gorm:"primaryKey;autoIncrement"`
	Type       string
	OccurredAt time.Time
	Payload    []byte `gorm:"type:jsonb"`
}

func (DomainEvent) TableName() string { return "domain_events" }

// TroupeSnapshot is a single-row table: id is always 1 and saves upsert it.
type TroupeSnapshot struct {
	ID      int64 `gorm:"primaryKey"`
	Ledger  []byte `gorm:"type:jsonb"`
	Members []byte `gorm:"type:jsonb"`
	SavedAt time.Time
}

func (TroupeSnapshot) TableName() string { return "troupe_snapshots" }
