package troupe

// CostBreakdown is the up-front price of starting an action, computed before
// any mutation so validation can reject without side effects.
type CostBreakdown struct {
	Money           int
	MoralePerMember int
}

func ComputeCosts(def ActionDefinition, memberCount int) CostBreakdown {
	return CostBreakdown{
		Money:           def.BaseCost + def.CostPerMember*memberCount,
		MoralePerMember: def.MoraleCostPerMember,
	}
}
