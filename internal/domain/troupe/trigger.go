package troupe

import "fmt"

// TriggerDefinition is one catalog entry for the narrative-event evaluator.
// A trigger is satisfied when the clock hour falls inside its window, every
// required flag is set, no forbidden flag is set, the ledger meets every
// threshold, and the random roll passes. Each trigger fires at most once.
type TriggerDefinition struct {
	ID string `json:"id"`

	// Hour window, inclusive from / exclusive to, in [0, 24]. FromHour 0
	// and ToHour 24 matches any time of day.
	FromHour int `json:"from_hour"`
	ToHour   int `json:"to_hour"`

	RequiredFlags  []string `json:"required_flags,omitempty"`
	ForbiddenFlags []string `json:"forbidden_flags,omitempty"`

	// Thresholds; Min* of 0 means no floor, Max* of 0 means no ceiling.
	MinMoney int `json:"min_money"`
	MaxMoney int `json:"max_money"`
	MinFans  int `json:"min_fans"`
	MaxFans  int `json:"max_fans"`
	MinUnity int `json:"min_unity"`
	MaxUnity int `json:"max_unity"`

	// Chance in (0, 1]; 0 means the trigger fires whenever its conditions
	// hold.
	Chance float64 `json:"chance"`
}

func (d TriggerDefinition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("trigger definition missing id")
	}
	if d.FromHour < 0 || d.FromHour > 23 {
		return fmt.Errorf("trigger %s: from_hour %d out of range", d.ID, d.FromHour)
	}
	if d.ToHour < 1 || d.ToHour > 24 {
		return fmt.Errorf("trigger %s: to_hour %d out of range", d.ID, d.ToHour)
	}
	if d.Chance < 0 || d.Chance > 1 {
		return fmt.Errorf("trigger %s: chance %v out of range", d.ID, d.Chance)
	}
	if d.MinMoney < 0 || d.MaxMoney < 0 || d.MinFans < 0 || d.MaxFans < 0 || d.MinUnity < 0 || d.MaxUnity < 0 {
		return fmt.Errorf("trigger %s: thresholds must not be negative", d.ID)
	}
	return nil
}
