package troupe

import "math"

// RewardBreakdown is everything a completed action pays out, computed once
// per group at completion time.
type RewardBreakdown struct {
	Money           int
	Fans            int
	Unity           int
	MoralePerMember int
	Multiplier      float64
}

// ComputeRewards applies the full-team bonus only when every active roster
// member took part. Money and fans are rounded after the multiplier.
func ComputeRewards(def ActionDefinition, groupSize, rosterSize int) RewardBreakdown {
	mult := 1.0
	if rosterSize > 0 && groupSize == rosterSize && def.FullTeamBonus > 0 {
		mult = def.FullTeamBonus
	}
	return RewardBreakdown{
		Money:           roundMult(def.RewardMoney+def.RewardMoneyPerMember*groupSize, mult),
		Fans:            roundMult(def.RewardFans+def.RewardFansPerMember*groupSize, mult),
		Unity:           def.RewardUnity,
		MoralePerMember: def.RewardMoralePerMember,
		Multiplier:      mult,
	}
}

func roundMult(base int, mult float64) int {
	return int(math.Round(float64(base) * mult))
}

// ApplyGrowth raises one member's stats per the action's growth policy.
// pick chooses a stat index for the random policy; it is injected so tests
// and the scheduler control the randomness source.
func ApplyGrowth(st *Stats, def ActionDefinition, pick func(n int) int) {
	switch def.Growth {
	case GrowthSpecific:
		st.Raise(def.GrowthStat, def.StatGainAmount)
	case GrowthRandom:
		st.Raise(StatKind(pick(NumStats)), def.StatGainAmount)
	case GrowthAllSmall:
		st.RaiseAll(AllSmallStatGain)
	}
}
