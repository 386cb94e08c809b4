package schedule

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"stagehand/internal/app/ports"
	"stagehand/internal/domain/troupe"
)

// Scheduler is the only component that mutates roster state and the ledger.
// StartAction, CancelAction and Tick each run to completion before another
// mutator may begin; the host is responsible for serializing calls.
type Scheduler struct {
	registry *Registry
	catalog  *Catalog
	timers   *TimerService
	ledger   *troupe.Ledger

	events   ports.EventRepository
	metrics  ports.SchedulerMetrics
	notifier ports.StateNotifier
	logger   *log.Logger

	now  func() time.Time
	pick func(n int) int

	// groupID -> timer handle; the member set itself lives on the timer.
	groups map[string]TimerHandle

	onComplete func(groupID, actionID string)
}

type Config struct {
	Registry *Registry
	Catalog  *Catalog
	Ledger   *troupe.Ledger

	Events   ports.EventRepository
	Metrics  ports.SchedulerMetrics
	Notifier ports.StateNotifier
	Logger   *log.Logger

	Now  func() time.Time
	Pick func(n int) int

	// OnActionComplete is the audio/visual cue seam, fired once per
	// completed group.
	OnActionComplete func(groupID, actionID string)
}

func New(cfg Config) *Scheduler {
	s := &Scheduler{
		registry:   cfg.Registry,
		catalog:    cfg.Catalog,
		ledger:     cfg.Ledger,
		events:     cfg.Events,
		metrics:    cfg.Metrics,
		notifier:   cfg.Notifier,
		logger:     cfg.Logger,
		now:        cfg.Now,
		pick:       cfg.Pick,
		groups:     map[string]TimerHandle{},
		onComplete: cfg.OnActionComplete,
	}
	if s.notifier == nil {
		s.notifier = ports.NopNotifier{}
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.pick == nil {
		s.pick = rand.Intn
	}
	s.timers = NewTimerService(s.completeGroup)
	return s
}

// SetNotifier replaces the state-change notifier. Hosts that both own the
// scheduler and listen to it call this after construction.
func (s *Scheduler) SetNotifier(n ports.StateNotifier) {
	if n == nil {
		n = ports.NopNotifier{}
	}
	s.notifier = n
}

// StartAction validates the request in a fixed order and only then mutates:
// the ledger charge, every member lock and the group timer happen as one
// uninterruptible sequence, so a failed start leaves no trace.
func (s *Scheduler) StartAction(ctx context.Context, actionID string, memberIDs []string) (string, error) {
	def, err := s.catalog.Lookup(actionID)
	if err != nil {
		s.rejected("unknown_action")
		return "", err
	}

	n := len(memberIDs)
	maxMembers := def.MaxMembers
	minMembers := def.MinMembers
	if minMembers < 1 {
		minMembers = 1
	}
	if n < minMembers || (maxMembers != 0 && n > maxMembers) {
		s.rejected("member_count")
		return "", &MemberCountError{ActionID: actionID, Got: n, Min: minMembers, Max: maxMembers}
	}

	seen := map[string]bool{}
	for _, id := range memberIDs {
		if _, err := s.registry.Member(id); err != nil {
			s.rejected("member_not_found")
			return "", err
		}
		if seen[id] || !s.registry.IsAvailable(id) {
			s.rejected("member_unavailable")
			return "", &MemberUnavailableError{MemberID: id}
		}
		seen[id] = true
	}

	costs := troupe.ComputeCosts(def, n)
	if s.ledger.Money < costs.Money {
		s.rejected("insufficient_funds")
		return "", &InsufficientFundsError{Required: costs.Money, Available: s.ledger.Money}
	}

	members := make([]*troupe.Member, 0, n)
	for _, id := range memberIDs {
		m, _ := s.registry.member(id)
		members = append(members, m)
	}
	duration := troupe.ComputeDuration(def, troupe.BestStat(members, def.EfficiencyStat))

	// Validation is done; from here mutation must not fail.
	groupID := uuid.NewString()
	s.ledger.Money -= costs.Money
	for _, id := range memberIDs {
		s.ledger.ChargeMorale(id, costs.MoralePerMember)
		s.registry.lock(id, troupe.Engagement{
			ActionID:      def.ID,
			GroupID:       groupID,
			TimeRemaining: duration,
			TotalDuration: duration,
		})
	}
	group := troupe.Group{
		ID:        groupID,
		ActionID:  def.ID,
		MemberIDs: append([]string(nil), memberIDs...),
		Duration:  duration,
	}
	s.groups[groupID] = s.timers.Start(group)

	if s.metrics != nil {
		s.metrics.RecordStart(def.ID)
	}
	s.appendEvent(ctx, troupe.EventActionStarted, map[string]any{
		"group_id":         groupID,
		"action_id":        def.ID,
		"member_ids":       group.MemberIDs,
		"money_charged":    costs.Money,
		"duration_seconds": duration.Seconds(),
	})
	s.notifier.StateChanged()
	return groupID, nil
}

// CompleteAction settles the whole group the member belongs to. It is
// normally reached from a timer expiry; calling it for an idle member is a
// caller bug, logged and ignored.
func (s *Scheduler) CompleteAction(ctx context.Context, memberID string) {
	m, ok := s.registry.member(memberID)
	if !ok || !m.Busy() {
		s.logger.Printf("complete ignored: member %s is not busy", memberID)
		return
	}
	groupID := m.Engagement.GroupID
	handle, ok := s.groups[groupID]
	if !ok {
		s.logger.Printf("complete ignored: member %s references dead group %s", memberID, groupID)
		s.registry.unlock(memberID)
		return
	}
	group, ok := s.timers.Group(handle)
	if !ok {
		s.logger.Printf("complete ignored: group %s has no live timer", groupID)
		delete(s.groups, groupID)
		s.registry.unlock(memberID)
		return
	}
	s.timers.Stop(group.MemberIDs)
	s.completeGroup(ctx, group)
}

// completeGroup applies rewards and unlocks every member as one step. It is
// the timer expiry callback; the timer is already out of the arena.
func (s *Scheduler) completeGroup(ctx context.Context, group troupe.Group) {
	def, err := s.catalog.Lookup(group.ActionID)
	if err != nil {
		// A group can only reference a catalog entry that existed at start
		// time, so this indicates state corruption. Free the members rather
		// than leaving them stuck.
		s.logger.Printf("complete: group %s references unknown action %s", group.ID, group.ActionID)
		s.releaseGroup(group)
		return
	}

	rewards := troupe.ComputeRewards(def, len(group.MemberIDs), s.registry.Size())
	s.ledger.Money += rewards.Money
	s.ledger.Fans += rewards.Fans
	s.ledger.Unity += rewards.Unity

	for _, id := range group.MemberIDs {
		if rewards.MoralePerMember > 0 {
			s.ledger.RewardMorale(id, rewards.MoralePerMember)
		}
		if m, ok := s.registry.member(id); ok {
			troupe.ApplyGrowth(&m.Stats, def, s.pick)
		}
	}
	s.releaseGroup(group)

	if s.metrics != nil {
		s.metrics.RecordCompletion(def.ID)
	}
	s.appendEvent(ctx, troupe.EventActionCompleted, map[string]any{
		"group_id":   group.ID,
		"action_id":  def.ID,
		"member_ids": group.MemberIDs,
		"money":      rewards.Money,
		"fans":       rewards.Fans,
		"unity":      rewards.Unity,
		"multiplier": rewards.Multiplier,
	})
	if s.onComplete != nil {
		s.onComplete(group.ID, def.ID)
	}
	s.notifier.StateChanged()
}

// CancelAction releases the entire group of the given member and forfeits
// everything already spent. No partial refunds: cancellation is a product
// decision, not an undo.
func (s *Scheduler) CancelAction(ctx context.Context, memberID string) {
	m, ok := s.registry.member(memberID)
	if !ok || !m.Busy() {
		s.logger.Printf("cancel ignored: member %s is not busy", memberID)
		return
	}
	groupID := m.Engagement.GroupID
	actionID := m.Engagement.ActionID

	if handle, ok := s.groups[groupID]; ok {
		if group, ok := s.timers.Group(handle); ok {
			s.timers.Stop(group.MemberIDs)
			s.releaseGroup(group)
		} else {
			delete(s.groups, groupID)
			s.registry.unlock(memberID)
		}
	} else {
		s.logger.Printf("cancel: member %s references dead group %s", memberID, groupID)
		s.registry.unlock(memberID)
	}

	if s.metrics != nil {
		s.metrics.RecordCancellation(actionID)
	}
	s.appendEvent(ctx, troupe.EventActionCancelled, map[string]any{
		"group_id":  groupID,
		"action_id": actionID,
		"member_id": memberID,
	})
	s.notifier.StateChanged()
}

// ReleaseMember frees a single member from its group without touching the
// rest: the shared timer shrinks and keeps counting down for whoever stays,
// and is deleted only when the last member leaves. Nothing is refunded.
func (s *Scheduler) ReleaseMember(ctx context.Context, memberID string) {
	m, ok := s.registry.member(memberID)
	if !ok || !m.Busy() {
		s.logger.Printf("release ignored: member %s is not busy", memberID)
		return
	}
	groupID := m.Engagement.GroupID
	actionID := m.Engagement.ActionID

	s.timers.Stop([]string{memberID})
	s.registry.unlock(memberID)
	if handle, ok := s.groups[groupID]; ok {
		if _, live := s.timers.Group(handle); !live {
			delete(s.groups, groupID)
		}
	}

	if s.metrics != nil {
		s.metrics.RecordCancellation(actionID)
	}
	s.appendEvent(ctx, troupe.EventActionCancelled, map[string]any{
		"group_id":  groupID,
		"action_id": actionID,
		"member_id": memberID,
		"partial":   true,
	})
	s.notifier.StateChanged()
}

// releaseGroup unlocks every member and drops the group bookkeeping in one
// logical step.
func (s *Scheduler) releaseGroup(group troupe.Group) {
	for _, id := range group.MemberIDs {
		s.registry.unlock(id)
	}
	delete(s.groups, group.ID)
}

// Tick advances all timers, settles whatever expired, then refreshes the
// per-member remaining time shown to readers.
func (s *Scheduler) Tick(ctx context.Context, dt time.Duration) {
	s.timers.Tick(ctx, dt)
	for _, at := range s.timers.ActiveTimers() {
		for _, id := range at.Group.MemberIDs {
			if m, ok := s.registry.member(id); ok && m.Busy() {
				m.Engagement.TimeRemaining = at.Remaining
			}
		}
	}
}

// GroupStatus is a read-only view of one in-flight action group.
type GroupStatus struct {
	GroupID   string        `json:"group_id"`
	ActionID  string        `json:"action_id"`
	MemberIDs []string      `json:"member_ids"`
	Remaining time.Duration `json:"remaining"`
	Duration  time.Duration `json:"duration"`
}

// SimSnapshot is the read surface for presentation: copies only, stale the
// moment control returns to the tick loop.
type SimSnapshot struct {
	Members []troupe.Member `json:"members"`
	Ledger  troupe.Ledger   `json:"ledger"`
	Groups  []GroupStatus   `json:"groups"`
}

func (s *Scheduler) Snapshot() SimSnapshot {
	snap := SimSnapshot{
		Members: s.registry.Members(),
		Ledger:  copyLedger(*s.ledger),
	}
	for _, at := range s.timers.ActiveTimers() {
		snap.Groups = append(snap.Groups, GroupStatus{
			GroupID:   at.Group.ID,
			ActionID:  at.Group.ActionID,
			MemberIDs: at.Group.MemberIDs,
			Remaining: at.Remaining,
			Duration:  at.Group.Duration,
		})
	}
	return snap
}

func copyLedger(l troupe.Ledger) troupe.Ledger {
	morale := make(map[string]int, len(l.Morale))
	for k, v := range l.Morale {
		morale[k] = v
	}
	l.Morale = morale
	return l
}

func (s *Scheduler) rejected(reason string) {
	if s.metrics != nil {
		s.metrics.RecordStartRejected(reason)
	}
}

func (s *Scheduler) appendEvent(ctx context.Context, eventType string, payload map[string]any) {
	if s.events == nil {
		return
	}
	err := s.events.Append(ctx, []troupe.DomainEvent{{
		Type:       eventType,
		OccurredAt: s.now().UTC(),
		Payload:    payload,
	}})
	if err != nil {
		s.logger.Printf("append %s event: %v", eventType, err)
	}
}
