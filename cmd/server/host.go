package main

import (
	"context"
	"log"
	"sync"
	"time"

	"stagehand/internal/app/ports"
	"stagehand/internal/app/schedule"
	"stagehand/internal/app/trigger"
	"stagehand/internal/domain/troupe"
)

// simHost owns the scheduler and the trigger evaluator and serializes every
// entry point with one mutex, so each mutation runs to completion before the
// next one starts. HTTP handlers and the tick loop both go through here.
type simHost struct {
	mu        sync.Mutex
	sched     *schedule.Scheduler
	eval      *trigger.Evaluator
	ledger    *troupe.Ledger
	events    ports.EventRepository
	snapshots ports.SnapshotRepository
	logger    *log.Logger
	now       func() time.Time

	flags  map[string]bool
	paused bool
	dirty  bool
}

type hostConfig struct {
	Scheduler *schedule.Scheduler
	Evaluator *trigger.Evaluator
	Ledger    *troupe.Ledger
	Events    ports.EventRepository
	Snapshots ports.SnapshotRepository
	Logger    *log.Logger
	Now       func() time.Time
}

func newSimHost(cfg hostConfig) *simHost {
	h := &simHost{
		sched:     cfg.Scheduler,
		eval:      cfg.Evaluator,
		ledger:    cfg.Ledger,
		events:    cfg.Events,
		snapshots: cfg.Snapshots,
		logger:    cfg.Logger,
		now:       cfg.Now,
		flags:     map[string]bool{},
	}
	if h.logger == nil {
		h.logger = log.Default()
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

// StateChanged implements ports.StateNotifier: the scheduler cues the host
// to persist a fresh snapshot on the next tick.
func (h *simHost) StateChanged() {
	h.dirty = true
}

func (h *simHost) StartAction(ctx context.Context, actionID string, memberIDs []string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sched.StartAction(ctx, actionID, memberIDs)
}

func (h *simHost) CancelAction(ctx context.Context, memberID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sched.CancelAction(ctx, memberID)
}

func (h *simHost) Snapshot() schedule.SimSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sched.Snapshot()
}

func (h *simHost) Pause() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paused = true
}

func (h *simHost) Resume() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paused = false
}

func (h *simHost) Paused() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.paused
}

// Tick advances timers, evaluates triggers, and persists a snapshot when
// something changed since the last save. Paused hosts skip everything.
func (h *simHost) Tick(ctx context.Context, dt time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.paused {
		return
	}

	h.sched.Tick(ctx, dt)
	h.evaluateTriggers(ctx)

	if h.dirty {
		h.saveSnapshot(ctx)
		h.dirty = false
	}
}

// SetFlag exposes narrative flags to trigger conditions.
func (h *simHost) SetFlag(name string, value bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.flags[name] = value
}

func (h *simHost) evaluateTriggers(ctx context.Context) {
	if h.eval == nil {
		return
	}
	id, ok := h.eval.Check(*h.ledger, h.flags, h.now())
	if !ok {
		return
	}
	// A fired trigger doubles as a flag so later triggers can chain on it.
	h.flags[id] = true
	h.logger.Printf("trigger fired: %s", id)
	if h.events != nil {
		err := h.events.Append(ctx, []troupe.DomainEvent{{
			Type:       troupe.EventTriggerFired,
			OccurredAt: h.now().UTC(),
			Payload:    map[string]any{"trigger_id": id},
		}})
		if err != nil {
			h.logger.Printf("append trigger event: %v", err)
		}
	}
	h.dirty = true
}

func (h *simHost) saveSnapshot(ctx context.Context) {
	if h.snapshots == nil {
		return
	}
	snap := h.sched.Snapshot()
	err := h.snapshots.Save(ctx, ports.TroupeSnapshot{
		Ledger:  snap.Ledger,
		Members: snap.Members,
		SavedAt: h.now().UTC(),
	})
	if err != nil {
		h.logger.Printf("save snapshot: %v", err)
	}
}

func (h *simHost) runTickLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := h.now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := h.now()
			h.Tick(ctx, now.Sub(last))
			last = now
		}
	}
}
