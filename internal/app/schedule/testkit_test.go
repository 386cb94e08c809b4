package schedule

import (
	"context"
	"log"
	"testing"
	"time"

	"stagehand/internal/domain/troupe"
)

type stubEventRepo struct {
	events []troupe.DomainEvent
}

func (r *stubEventRepo) Append(_ context.Context, events []troupe.DomainEvent) error {
	r.events = append(r.events, events...)
	return nil
}

func (r *stubEventRepo) List(_ context.Context, limit int) ([]troupe.DomainEvent, error) {
	if limit <= 0 || limit > len(r.events) {
		limit = len(r.events)
	}
	out := make([]troupe.DomainEvent, limit)
	copy(out, r.events[:limit])
	return out, nil
}

func (r *stubEventRepo) countType(eventType string) int {
	n := 0
	for _, e := range r.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

type stubMetrics struct {
	starts      int
	rejected    []string
	completions int
	cancels     int
}

func (m *stubMetrics) RecordStart(string)              { m.starts++ }
func (m *stubMetrics) RecordStartRejected(reason string) { m.rejected = append(m.rejected, reason) }
func (m *stubMetrics) RecordCompletion(string)         { m.completions++ }
func (m *stubMetrics) RecordCancellation(string)       { m.cancels++ }

type stubNotifier struct {
	calls int
}

func (n *stubNotifier) StateChanged() { n.calls++ }

type testEnv struct {
	sched    *Scheduler
	ledger   *troupe.Ledger
	registry *Registry
	events   *stubEventRepo
	metrics  *stubMetrics
	notifier *stubNotifier
}

func fourMemberRoster() []troupe.MemberTemplate {
	return []troupe.MemberTemplate{
		{ID: "a", Name: "Asa", Stats: troupe.Stats{troupe.StatDance: 8, troupe.StatVocal: 2}},
		{ID: "b", Name: "Biru", Stats: troupe.Stats{troupe.StatDance: 3, troupe.StatVocal: 6}},
		{ID: "c", Name: "Coda", Stats: troupe.Stats{troupe.StatDance: 5}},
		{ID: "d", Name: "Dell", Stats: troupe.Stats{troupe.StatTechnique: 7}},
	}
}

func gigDefinition() troupe.ActionDefinition {
	return troupe.ActionDefinition{
		ID:                    "gig",
		Name:                  "Club Gig",
		MinMembers:            1,
		MaxMembers:            4,
		BaseCost:              100,
		CostPerMember:         20,
		MoraleCostPerMember:   2,
		BaseDuration:          30 * time.Second,
		MinDuration:           10 * time.Second,
		EfficiencyStat:        troupe.StatDance,
		ReductionPerStatPoint: 100 * time.Millisecond,
		RewardMoney:           200,
		RewardMoneyPerMember:  50,
		RewardFans:            10,
		RewardFansPerMember:   5,
		RewardUnity:           1,
		RewardMoralePerMember: 1,
		FullTeamBonus:         1.5,
		Growth:                troupe.GrowthSpecific,
		GrowthStat:            troupe.StatDance,
		StatGainAmount:        1,
	}
}

func newTestEnv(t *testing.T, money int, defs ...troupe.ActionDefinition) *testEnv {
	t.Helper()
	if len(defs) == 0 {
		defs = []troupe.ActionDefinition{gigDefinition()}
	}
	registry, err := NewRegistry(fourMemberRoster())
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	catalog, err := NewCatalog(defs)
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}

	env := &testEnv{
		ledger:   troupe.NewLedger(money, 0, 0),
		registry: registry,
		events:   &stubEventRepo{},
		metrics:  &stubMetrics{},
		notifier: &stubNotifier{},
	}
	env.sched = New(Config{
		Registry: registry,
		Catalog:  catalog,
		Ledger:   env.ledger,
		Events:   env.events,
		Metrics:  env.metrics,
		Notifier: env.notifier,
		Logger:   log.New(testWriter{t}, "", 0),
		Now:      func() time.Time { return time.Unix(1700000000, 0) },
		Pick:     func(int) int { return int(troupe.StatVocal) },
	})
	return env
}

type testWriter struct {
	t *testing.T
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Logf("%s", p)
	return len(p), nil
}
