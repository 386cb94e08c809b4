// Package trigger evaluates narrative-event conditions against the resource
// ledger. It reads shared state, never mutates it; the only thing it owns is
// the set of trigger ids that already fired.
package trigger

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"stagehand/internal/domain/troupe"
)

type Evaluator struct {
	defs  []troupe.TriggerDefinition
	fired map[string]bool
	roll  func() float64
}

func NewEvaluator(defs []troupe.TriggerDefinition, roll func() float64) (*Evaluator, error) {
	seen := map[string]bool{}
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return nil, err
		}
		if seen[def.ID] {
			return nil, fmt.Errorf("duplicate trigger id %s", def.ID)
		}
		seen[def.ID] = true
	}
	if roll == nil {
		roll = rand.Float64
	}
	return &Evaluator{
		defs:  append([]troupe.TriggerDefinition(nil), defs...),
		fired: map[string]bool{},
		roll:  roll,
	}, nil
}

// Check returns at most one newly satisfied, not-yet-fired trigger per call,
// in catalog order, first match wins. A trigger that fails only its random
// roll stays eligible for later calls.
func (e *Evaluator) Check(ledger troupe.Ledger, flags map[string]bool, now time.Time) (string, bool) {
	for _, def := range e.defs {
		if e.fired[def.ID] {
			continue
		}
		if !e.satisfied(def, ledger, flags, now) {
			continue
		}
		if def.Chance > 0 && e.roll() >= def.Chance {
			continue
		}
		e.fired[def.ID] = true
		return def.ID, true
	}
	return "", false
}

func (e *Evaluator) satisfied(def troupe.TriggerDefinition, ledger troupe.Ledger, flags map[string]bool, now time.Time) bool {
	if !hourInWindow(now.Hour(), def.FromHour, def.ToHour) {
		return false
	}
	for _, f := range def.RequiredFlags {
		if !flags[f] {
			return false
		}
	}
	for _, f := range def.ForbiddenFlags {
		if flags[f] {
			return false
		}
	}
	if def.MinMoney > 0 && ledger.Money < def.MinMoney {
		return false
	}
	if def.MaxMoney > 0 && ledger.Money > def.MaxMoney {
		return false
	}
	if def.MinFans > 0 && ledger.Fans < def.MinFans {
		return false
	}
	if def.MaxFans > 0 && ledger.Fans > def.MaxFans {
		return false
	}
	if def.MinUnity > 0 && ledger.Unity < def.MinUnity {
		return false
	}
	if def.MaxUnity > 0 && ledger.Unity > def.MaxUnity {
		return false
	}
	return true
}

// hourInWindow treats from >= to as a window wrapping midnight.
func hourInWindow(hour, from, to int) bool {
	if from < to {
		return hour >= from && hour < to
	}
	return hour >= from || hour < to
}

// Fired lists the trigger ids that already fired, sorted for stable output.
func (e *Evaluator) Fired() []string {
	out := make([]string, 0, len(e.fired))
	for id := range e.fired {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// RestoreFired marks triggers as already fired, for hosts resuming from a
// persisted snapshot.
func (e *Evaluator) RestoreFired(ids []string) {
	for _, id := range ids {
		e.fired[id] = true
	}
}
