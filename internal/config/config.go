// Package config loads troupe content from a TOML file: the starting
// ledger, the roster, the action catalog, and the trigger definitions.
// Everything is validated at load time so a bad file fails startup instead
// of a request.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"stagehand/internal/domain/troupe"
)

type Config struct {
	Ledger   LedgerConfig    `toml:"ledger"`
	Members  []MemberConfig  `toml:"members"`
	Actions  []ActionConfig  `toml:"actions"`
	Triggers []TriggerConfig `toml:"triggers"`
	Path     string          `toml:"-"`
}

type LedgerConfig struct {
	Money int `toml:"money"`
	Fans  int `toml:"fans"`
	Unity int `toml:"unity"`
}

type MemberConfig struct {
	ID        string         `toml:"id"`
	Name      string         `toml:"name"`
	StageName string         `toml:"stage_name"`
	Stats     map[string]int `toml:"stats"`
}

type ActionConfig struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`

	MinMembers int `toml:"min_members"`
	MaxMembers int `toml:"max_members"`

	BaseCost            int `toml:"base_cost"`
	CostPerMember       int `toml:"cost_per_member"`
	MoraleCostPerMember int `toml:"morale_cost_per_member"`

	BaseDurationMS          int    `toml:"base_duration_ms"`
	MinDurationMS           int    `toml:"min_duration_ms"`
	EfficiencyStat          string `toml:"efficiency_stat"`
	ReductionPerStatPointMS int    `toml:"reduction_per_stat_point_ms"`

	RewardMoney           int     `toml:"reward_money"`
	RewardMoneyPerMember  int     `toml:"reward_money_per_member"`
	RewardFans            int     `toml:"reward_fans"`
	RewardFansPerMember   int     `toml:"reward_fans_per_member"`
	RewardUnity           int     `toml:"reward_unity"`
	RewardMoralePerMember int     `toml:"reward_morale_per_member"`
	FullTeamBonus         float64 `toml:"full_team_bonus"`

	Growth         string `toml:"growth"`
	GrowthStat     string `toml:"growth_stat"`
	StatGainAmount int    `toml:"stat_gain_amount"`
}

type TriggerConfig struct {
	ID             string   `toml:"id"`
	FromHour       int      `toml:"from_hour"`
	ToHour         int      `toml:"to_hour"`
	RequiredFlags  []string `toml:"required_flags"`
	ForbiddenFlags []string `toml:"forbidden_flags"`
	MinMoney       int      `toml:"min_money"`
	MaxMoney       int      `toml:"max_money"`
	MinFans        int      `toml:"min_fans"`
	MaxFans        int      `toml:"max_fans"`
	MinUnity       int      `toml:"min_unity"`
	MaxUnity       int      `toml:"max_unity"`
	Chance         float64  `toml:"chance"`
}

func Load(path string) (Config, error) {
	resolved := filepath.Clean(path)
	bytes, err := os.ReadFile(resolved)
	if err != nil {
		return Config{}, fmt.Errorf("read config file %s: %w", resolved, err)
	}

	var cfg Config
	if _, err := toml.Decode(string(bytes), &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config file: %w", err)
	}
	cfg.Path = resolved
	return cfg, nil
}

// Roster converts the member entries into roster templates. Unknown stat
// names are rejected; values clamp at the stat cap.
func (c Config) Roster() ([]troupe.MemberTemplate, error) {
	out := make([]troupe.MemberTemplate, 0, len(c.Members))
	for _, mc := range c.Members {
		if mc.ID == "" {
			return nil, fmt.Errorf("member with empty id in %s", c.Path)
		}
		tpl := troupe.MemberTemplate{
			ID:        mc.ID,
			Name:      mc.Name,
			StageName: mc.StageName,
		}
		for name, value := range mc.Stats {
			kind, err := troupe.ParseStatKind(name)
			if err != nil {
				return nil, fmt.Errorf("member %s: %w", mc.ID, err)
			}
			tpl.Stats.Raise(kind, value)
		}
		out = append(out, tpl)
	}
	return out, nil
}

// Catalog converts and validates the action entries.
func (c Config) Catalog() ([]troupe.ActionDefinition, error) {
	out := make([]troupe.ActionDefinition, 0, len(c.Actions))
	for _, ac := range c.Actions {
		def := troupe.ActionDefinition{
			ID:                    ac.ID,
			Name:                  ac.Name,
			MinMembers:            ac.MinMembers,
			MaxMembers:            ac.MaxMembers,
			BaseCost:              ac.BaseCost,
			CostPerMember:         ac.CostPerMember,
			MoraleCostPerMember:   ac.MoraleCostPerMember,
			BaseDuration:          time.Duration(ac.BaseDurationMS) * time.Millisecond,
			MinDuration:           time.Duration(ac.MinDurationMS) * time.Millisecond,
			ReductionPerStatPoint: time.Duration(ac.ReductionPerStatPointMS) * time.Millisecond,
			RewardMoney:           ac.RewardMoney,
			RewardMoneyPerMember:  ac.RewardMoneyPerMember,
			RewardFans:            ac.RewardFans,
			RewardFansPerMember:   ac.RewardFansPerMember,
			RewardUnity:           ac.RewardUnity,
			RewardMoralePerMember: ac.RewardMoralePerMember,
			FullTeamBonus:         ac.FullTeamBonus,
			Growth:                troupe.GrowthPolicy(ac.Growth),
			StatGainAmount:        ac.StatGainAmount,
		}
		if ac.EfficiencyStat != "" {
			kind, err := troupe.ParseStatKind(ac.EfficiencyStat)
			if err != nil {
				return nil, fmt.Errorf("action %s: %w", ac.ID, err)
			}
			def.EfficiencyStat = kind
		}
		if ac.GrowthStat != "" {
			kind, err := troupe.ParseStatKind(ac.GrowthStat)
			if err != nil {
				return nil, fmt.Errorf("action %s: %w", ac.ID, err)
			}
			def.GrowthStat = kind
		}
		if err := def.Validate(); err != nil {
			return nil, err
		}
		out = append(out, def)
	}
	return out, nil
}

// TriggerDefs converts and validates the trigger entries.
func (c Config) TriggerDefs() ([]troupe.TriggerDefinition, error) {
	out := make([]troupe.TriggerDefinition, 0, len(c.Triggers))
	for _, tc := range c.Triggers {
		def := troupe.TriggerDefinition{
			ID:             tc.ID,
			FromHour:       tc.FromHour,
			ToHour:         tc.ToHour,
			RequiredFlags:  tc.RequiredFlags,
			ForbiddenFlags: tc.ForbiddenFlags,
			MinMoney:       tc.MinMoney,
			MaxMoney:       tc.MaxMoney,
			MinFans:        tc.MinFans,
			MaxFans:        tc.MaxFans,
			MinUnity:       tc.MinUnity,
			MaxUnity:       tc.MaxUnity,
			Chance:         tc.Chance,
		}
		if err := def.Validate(); err != nil {
			return nil, err
		}
		out = append(out, def)
	}
	return out, nil
}

// SeedLedger builds the starting ledger from the config.
func (c Config) SeedLedger() *troupe.Ledger {
	return troupe.NewLedger(c.Ledger.Money, c.Ledger.Fans, c.Ledger.Unity)
}
