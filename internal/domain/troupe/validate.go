package troupe

import "fmt"

// Validate rejects malformed definitions at catalog-load time so a bad data
// file never surfaces as an action-start failure.
func (d ActionDefinition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("action definition missing id")
	}
	if d.MinMembers < 0 {
		return fmt.Errorf("action %s: min_members %d is negative", d.ID, d.MinMembers)
	}
	if d.MaxMembers != 0 && d.MaxMembers < d.MinMembers {
		return fmt.Errorf("action %s: max_members %d below min_members %d", d.ID, d.MaxMembers, d.MinMembers)
	}
	if d.BaseCost < 0 || d.CostPerMember < 0 || d.MoraleCostPerMember < 0 {
		return fmt.Errorf("action %s: costs must not be negative", d.ID)
	}
	if d.BaseDuration <= 0 {
		return fmt.Errorf("action %s: base_duration must be positive", d.ID)
	}
	if d.MinDuration <= 0 || d.MinDuration > d.BaseDuration {
		return fmt.Errorf("action %s: min_duration must be in (0, base_duration]", d.ID)
	}
	if d.ReductionPerStatPoint < 0 {
		return fmt.Errorf("action %s: reduction_per_stat_point must not be negative", d.ID)
	}
	if !d.EfficiencyStat.Valid() {
		return fmt.Errorf("action %s: invalid efficiency stat", d.ID)
	}
	if d.FullTeamBonus < 0 {
		return fmt.Errorf("action %s: full_team_bonus must not be negative", d.ID)
	}
	switch d.Growth {
	case "", GrowthNone, GrowthRandom, GrowthAllSmall:
	case GrowthSpecific:
		if !d.GrowthStat.Valid() {
			return fmt.Errorf("action %s: specific growth needs a valid growth_stat", d.ID)
		}
	default:
		return fmt.Errorf("action %s: unknown growth policy %q", d.ID, d.Growth)
	}
	if d.StatGainAmount < 0 {
		return fmt.Errorf("action %s: stat_gain_amount must not be negative", d.ID)
	}
	return nil
}
