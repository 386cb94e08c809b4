package troupe

import "time"

// BestStat returns the maximum of the relevant stat across the group's
// members. One specialist present lowers the duration for everyone; weaker
// members who merely participate never raise it.
func BestStat(members []*Member, kind StatKind) int {
	best := 0
	for _, m := range members {
		if v := m.Stats.Get(kind); v > best {
			best = v
		}
	}
	return best
}

// ComputeDuration reduces the base duration additively per stat point of the
// group's best relevant stat, floored at the definition's minimum:
//
//	duration = max(minDuration, baseDuration - bestStat*reductionPerStatPoint)
func ComputeDuration(def ActionDefinition, bestStat int) time.Duration {
	d := def.BaseDuration - time.Duration(bestStat)*def.ReductionPerStatPoint
	if d < def.MinDuration {
		d = def.MinDuration
	}
	return d
}
