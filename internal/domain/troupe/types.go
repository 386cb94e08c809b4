package troupe

import "time"

// MemberTemplate is the immutable part of a roster member, loaded once at
// roster setup.
type MemberTemplate struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StageName string `json:"stage_name,omitempty"`
	Stats     Stats  `json:"stats"`
}

// Engagement is the busy-state of a member: the action it is performing and
// the shared group countdown it belongs to. A member with a nil Engagement
// is idle; there is no third state.
type Engagement struct {
	ActionID      string        `json:"action_id"`
	GroupID       string        `json:"group_id"`
	TimeRemaining time.Duration `json:"time_remaining"`
	TotalDuration time.Duration `json:"total_duration"`
}

// Member is a roster entry: immutable template plus mutable state. Stats are
// seeded from the template and grow on action completion.
type Member struct {
	Template   MemberTemplate `json:"template"`
	Stats      Stats          `json:"stats"`
	Engagement *Engagement    `json:"engagement,omitempty"`
}

// NewMember creates an idle member with stats copied from its template.
func NewMember(tpl MemberTemplate) Member {
	return Member{Template: tpl, Stats: tpl.Stats}
}

func (m *Member) Busy() bool {
	return m.Engagement != nil
}

// Group is the set of members that jointly started one action instance.
// Duration is computed once at start time and shared by all members.
type Group struct {
	ID        string        `json:"id"`
	ActionID  string        `json:"action_id"`
	MemberIDs []string      `json:"member_ids"`
	Duration  time.Duration `json:"duration"`
}

// GrowthPolicy selects how completion raises member stats.
type GrowthPolicy string

const (
	GrowthNone     GrowthPolicy = "none"
	GrowthSpecific GrowthPolicy = "specific"
	GrowthRandom   GrowthPolicy = "random"
	GrowthAllSmall GrowthPolicy = "all_small"
)

// ActionDefinition is a catalog entry describing one timed engagement.
// MaxMembers of 0 means no upper bound; a max of 0 or 1 means the action
// does not require a group.
type ActionDefinition struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	MinMembers int `json:"min_members"`
	MaxMembers int `json:"max_members"`

	BaseCost            int `json:"base_cost"`
	CostPerMember       int `json:"cost_per_member"`
	MoraleCostPerMember int `json:"morale_cost_per_member"`

	BaseDuration          time.Duration `json:"base_duration"`
	MinDuration           time.Duration `json:"min_duration"`
	EfficiencyStat        StatKind      `json:"efficiency_stat"`
	ReductionPerStatPoint time.Duration `json:"reduction_per_stat_point"`

	RewardMoney          int     `json:"reward_money"`
	RewardMoneyPerMember int     `json:"reward_money_per_member"`
	RewardFans           int     `json:"reward_fans"`
	RewardFansPerMember  int     `json:"reward_fans_per_member"`
	RewardUnity          int     `json:"reward_unity"`
	RewardMoralePerMember int    `json:"reward_morale_per_member"`
	FullTeamBonus        float64 `json:"full_team_bonus"`

	Growth         GrowthPolicy `json:"growth"`
	GrowthStat     StatKind     `json:"growth_stat"`
	StatGainAmount int          `json:"stat_gain_amount"`
}

// RequiresGroup reports whether the action is meant for more than one member.
func (d ActionDefinition) RequiresGroup() bool {
	return d.MaxMembers > 1 || d.MaxMembers == 0
}

// Ledger holds the troupe-wide resource totals plus per-member morale.
// Only the scheduler mutates it.
type Ledger struct {
	Money  int            `json:"money"`
	Fans   int            `json:"fans"`
	Unity  int            `json:"unity"`
	Morale map[string]int `json:"morale"`
}

func NewLedger(money, fans, unity int) *Ledger {
	return &Ledger{Money: money, Fans: fans, Unity: unity, Morale: map[string]int{}}
}

// MoraleOf returns the member's morale, defaulting to the cap for members
// never charged or rewarded yet.
func (l *Ledger) MoraleOf(memberID string) int {
	if v, ok := l.Morale[memberID]; ok {
		return v
	}
	return MoraleCap
}

func (l *Ledger) setMorale(memberID string, v int) {
	if v < MoraleFloor {
		v = MoraleFloor
	}
	if v > MoraleCap {
		v = MoraleCap
	}
	l.Morale[memberID] = v
}

// ChargeMorale lowers a member's morale, flooring at zero.
func (l *Ledger) ChargeMorale(memberID string, amount int) {
	l.setMorale(memberID, l.MoraleOf(memberID)-amount)
}

// RewardMorale raises a member's morale, clamped at the cap.
func (l *Ledger) RewardMorale(memberID string, amount int) {
	l.setMorale(memberID, l.MoraleOf(memberID)+amount)
}

const (
	EventActionStarted   = "action_started"
	EventActionCompleted = "action_completed"
	EventActionCancelled = "action_cancelled"
	EventTriggerFired    = "trigger_fired"
)

type DomainEvent struct {
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload"`
}
