package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"stagehand/internal/app/ports"
	"stagehand/internal/domain/troupe"
)

func TestStartAction_ChargesAndLocks(t *testing.T) {
	env := newTestEnv(t, 500)
	ctx := context.Background()

	groupID, err := env.sched.StartAction(ctx, "gig", []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if groupID == "" {
		t.Fatalf("expected a group id")
	}

	// 100 + 20*3 = 160 charged.
	if env.ledger.Money != 340 {
		t.Fatalf("expected money 340, got %d", env.ledger.Money)
	}
	for _, id := range []string{"a", "b", "c"} {
		m, _ := env.registry.Member(id)
		if !m.Busy() {
			t.Fatalf("member %s must be busy", id)
		}
		if m.Engagement.GroupID != groupID || m.Engagement.ActionID != "gig" {
			t.Fatalf("member %s has wrong engagement %+v", id, m.Engagement)
		}
		if got := env.ledger.MoraleOf(id); got != 8 {
			t.Fatalf("member %s: expected morale 8 after charge, got %d", id, got)
		}
	}
	if m, _ := env.registry.Member("d"); m.Busy() {
		t.Fatalf("uninvolved member must stay idle")
	}

	// Best dance stat is 8: 30s - 8*0.1s = 29.2s.
	m, _ := env.registry.Member("a")
	if m.Engagement.TotalDuration != 29200*time.Millisecond {
		t.Fatalf("expected duration 29.2s, got %v", m.Engagement.TotalDuration)
	}

	if env.notifier.calls != 1 {
		t.Fatalf("expected one state-changed notification, got %d", env.notifier.calls)
	}
	if env.metrics.starts != 1 {
		t.Fatalf("expected one recorded start, got %d", env.metrics.starts)
	}
	if env.events.countType(troupe.EventActionStarted) != 1 {
		t.Fatalf("expected one start event")
	}
}

func TestStartAction_InsufficientFundsLeavesNoTrace(t *testing.T) {
	env := newTestEnv(t, 159)
	ctx := context.Background()

	_, err := env.sched.StartAction(ctx, "gig", []string{"a", "b", "c"})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	var detail *InsufficientFundsError
	if !errors.As(err, &detail) || detail.Required != 160 || detail.Available != 159 {
		t.Fatalf("expected required=160 available=159, got %+v", detail)
	}

	if env.ledger.Money != 159 {
		t.Fatalf("failed start must not charge, money=%d", env.ledger.Money)
	}
	for _, id := range []string{"a", "b", "c"} {
		if !env.registry.IsAvailable(id) {
			t.Fatalf("failed start must not lock member %s", id)
		}
		if got := env.ledger.MoraleOf(id); got != troupe.MoraleCap {
			t.Fatalf("failed start must not charge morale, got %d", got)
		}
	}
	if env.sched.timers.ActiveCount() != 0 {
		t.Fatalf("failed start must not create timers")
	}
	if env.notifier.calls != 0 {
		t.Fatalf("failed start must not notify")
	}
}

func TestStartAction_ValidationOrder(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()

	// Unknown action before anything else.
	_, err := env.sched.StartAction(ctx, "festival", []string{"a"})
	if !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}

	// Member count before availability and funds.
	_, err = env.sched.StartAction(ctx, "gig", nil)
	if !errors.Is(err, ErrMemberCount) {
		t.Fatalf("expected ErrMemberCount, got %v", err)
	}

	// Unavailability before funds: lock a member, then request with no money.
	env.registry.lock("a", troupe.Engagement{ActionID: "gig", GroupID: "g0"})
	_, err = env.sched.StartAction(ctx, "gig", []string{"a"})
	if !errors.Is(err, ErrMemberUnavailable) {
		t.Fatalf("expected ErrMemberUnavailable, got %v", err)
	}
	var unavailable *MemberUnavailableError
	if !errors.As(err, &unavailable) || unavailable.MemberID != "a" {
		t.Fatalf("expected detail naming member a, got %v", err)
	}
}

func TestStartAction_UnknownMember(t *testing.T) {
	env := newTestEnv(t, 500)
	_, err := env.sched.StartAction(context.Background(), "gig", []string{"zz"})
	if !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStartAction_DuplicateMemberRejected(t *testing.T) {
	env := newTestEnv(t, 500)
	_, err := env.sched.StartAction(context.Background(), "gig", []string{"a", "a"})
	if !errors.Is(err, ErrMemberUnavailable) {
		t.Fatalf("expected ErrMemberUnavailable for duplicate id, got %v", err)
	}
}

func TestStartAction_MemberCountBounds(t *testing.T) {
	def := gigDefinition()
	def.MinMembers = 2
	def.MaxMembers = 3
	env := newTestEnv(t, 10000, def)
	ctx := context.Background()

	if _, err := env.sched.StartAction(ctx, "gig", []string{"a"}); !errors.Is(err, ErrMemberCount) {
		t.Fatalf("expected rejection below min, got %v", err)
	}
	if _, err := env.sched.StartAction(ctx, "gig", []string{"a", "b", "c", "d"}); !errors.Is(err, ErrMemberCount) {
		t.Fatalf("expected rejection above max, got %v", err)
	}
	if _, err := env.sched.StartAction(ctx, "gig", []string{"a", "b"}); err != nil {
		t.Fatalf("expected start inside bounds, got %v", err)
	}
}

func TestTick_CompletesGroupAndRewards(t *testing.T) {
	env := newTestEnv(t, 500)
	ctx := context.Background()

	if _, err := env.sched.StartAction(ctx, "gig", []string{"a", "b", "c"}); err != nil {
		t.Fatalf("start: %v", err)
	}

	env.sched.Tick(ctx, 30*time.Second)

	// 3 of 4 roster members: multiplier 1.0, money 200+50*3=350 on top of 340.
	if env.ledger.Money != 690 {
		t.Fatalf("expected money 690, got %d", env.ledger.Money)
	}
	if env.ledger.Fans != 25 {
		t.Fatalf("expected fans 25, got %d", env.ledger.Fans)
	}
	if env.ledger.Unity != 1 {
		t.Fatalf("expected unity 1, got %d", env.ledger.Unity)
	}
	for _, id := range []string{"a", "b", "c"} {
		if !env.registry.IsAvailable(id) {
			t.Fatalf("member %s must be idle after completion", id)
		}
		// Charged 2 at start, rewarded 1 on completion.
		if got := env.ledger.MoraleOf(id); got != 9 {
			t.Fatalf("member %s: expected morale 9, got %d", id, got)
		}
	}
	// Specific growth: dance +1 on every participant.
	m, _ := env.registry.Member("a")
	if got := m.Stats.Get(troupe.StatDance); got != 9 {
		t.Fatalf("expected dance grown to 9, got %d", got)
	}
	if env.sched.timers.ActiveCount() != 0 {
		t.Fatalf("completed group must free its timer")
	}
	if env.metrics.completions != 1 {
		t.Fatalf("expected one completion recorded")
	}
	if env.events.countType(troupe.EventActionCompleted) != 1 {
		t.Fatalf("expected one completion event")
	}
}

func TestTick_FullTeamBonus(t *testing.T) {
	env := newTestEnv(t, 500)
	ctx := context.Background()

	if _, err := env.sched.StartAction(ctx, "gig", []string{"a", "b", "c", "d"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	// Cost 100 + 20*4 = 180.
	if env.ledger.Money != 320 {
		t.Fatalf("expected money 320 after charge, got %d", env.ledger.Money)
	}

	env.sched.Tick(ctx, time.Minute)

	// All 4 of 4: (200 + 50*4) * 1.5 = 600, fans (10 + 5*4) * 1.5 = 45.
	if env.ledger.Money != 920 {
		t.Fatalf("expected money 920, got %d", env.ledger.Money)
	}
	if env.ledger.Fans != 45 {
		t.Fatalf("expected fans 45, got %d", env.ledger.Fans)
	}
}

func TestCompleteAction_IdleMemberIsNoop(t *testing.T) {
	env := newTestEnv(t, 500)
	ctx := context.Background()

	env.sched.CompleteAction(ctx, "a")
	if env.ledger.Money != 500 {
		t.Fatalf("idle completion must not touch ledger")
	}
	if env.notifier.calls != 0 {
		t.Fatalf("idle completion must not notify")
	}

	// Complete a real group, then complete again: second call is a no-op.
	if _, err := env.sched.StartAction(ctx, "gig", []string{"a"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	env.sched.CompleteAction(ctx, "a")
	money := env.ledger.Money
	env.sched.CompleteAction(ctx, "a")
	if env.ledger.Money != money {
		t.Fatalf("double completion must not pay twice")
	}
	if env.metrics.completions != 1 {
		t.Fatalf("expected exactly one completion, got %d", env.metrics.completions)
	}
}

func TestCancelAction_ReleasesWholeGroupWithoutRefund(t *testing.T) {
	env := newTestEnv(t, 500)
	ctx := context.Background()

	if _, err := env.sched.StartAction(ctx, "gig", []string{"a", "b", "c"}); err != nil {
		t.Fatalf("start: %v", err)
	}

	env.sched.CancelAction(ctx, "b")

	for _, id := range []string{"a", "b", "c"} {
		if !env.registry.IsAvailable(id) {
			t.Fatalf("cancel must release the whole group, %s still busy", id)
		}
	}
	if env.ledger.Money != 340 {
		t.Fatalf("cancel must not refund, money=%d", env.ledger.Money)
	}
	if env.sched.timers.ActiveCount() != 0 {
		t.Fatalf("cancel must destroy the shared timer")
	}
	if env.events.countType(troupe.EventActionCancelled) != 1 {
		t.Fatalf("expected one cancel event")
	}

	// Timers are gone: a later tick pays nothing.
	env.sched.Tick(ctx, time.Hour)
	if env.ledger.Money != 340 {
		t.Fatalf("cancelled action must never pay out")
	}
}

func TestCancelAction_IdleMemberIsNoop(t *testing.T) {
	env := newTestEnv(t, 500)
	env.sched.CancelAction(context.Background(), "a")
	if env.metrics.cancels != 0 {
		t.Fatalf("idle cancel must not be recorded")
	}
}

func TestReleaseMember_ShrinksGroupKeepsTimer(t *testing.T) {
	env := newTestEnv(t, 500)
	ctx := context.Background()

	if _, err := env.sched.StartAction(ctx, "gig", []string{"a", "b", "c"}); err != nil {
		t.Fatalf("start: %v", err)
	}

	env.sched.Tick(ctx, 19200*time.Millisecond) // 10s left of 29.2s
	env.sched.ReleaseMember(ctx, "b")

	if !env.registry.IsAvailable("b") {
		t.Fatalf("released member must be idle")
	}
	for _, id := range []string{"a", "c"} {
		if env.registry.IsAvailable(id) {
			t.Fatalf("member %s must stay busy after partial release", id)
		}
	}
	if env.sched.timers.ActiveCount() != 1 {
		t.Fatalf("partial release must keep the timer running")
	}

	moneyBefore := env.ledger.Money
	env.sched.Tick(ctx, 10*time.Second)

	// Completion covers only a and c: 200 + 50*2 = 300 at multiplier 1.
	if env.ledger.Money != moneyBefore+300 {
		t.Fatalf("expected payout 300 for the remaining pair, got %d", env.ledger.Money-moneyBefore)
	}
	if got := env.ledger.MoraleOf("b"); got != 8 {
		t.Fatalf("released member must not share rewards, morale=%d", got)
	}
	if !env.registry.IsAvailable("a") || !env.registry.IsAvailable("c") {
		t.Fatalf("remaining members must complete normally")
	}
}

func TestReleaseMember_LastMemberClearsGroup(t *testing.T) {
	env := newTestEnv(t, 500)
	ctx := context.Background()

	if _, err := env.sched.StartAction(ctx, "gig", []string{"a"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	env.sched.ReleaseMember(ctx, "a")

	if env.sched.timers.ActiveCount() != 0 {
		t.Fatalf("releasing the last member must delete the timer")
	}
	if len(env.sched.groups) != 0 {
		t.Fatalf("group bookkeeping must be cleared")
	}
	env.sched.Tick(ctx, time.Hour)
	if env.metrics.completions != 0 {
		t.Fatalf("emptied group must never complete")
	}
}

func TestTick_RefreshesRemainingTime(t *testing.T) {
	env := newTestEnv(t, 500)
	ctx := context.Background()

	if _, err := env.sched.StartAction(ctx, "gig", []string{"a"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	env.sched.Tick(ctx, 9200*time.Millisecond)

	m, _ := env.registry.Member("a")
	if m.Engagement.TimeRemaining != 20*time.Second {
		t.Fatalf("expected 20s remaining, got %v", m.Engagement.TimeRemaining)
	}
	if m.Engagement.TotalDuration != 29200*time.Millisecond {
		t.Fatalf("total duration must not change, got %v", m.Engagement.TotalDuration)
	}
}

func TestSnapshot_IsDetachedCopy(t *testing.T) {
	env := newTestEnv(t, 500)
	ctx := context.Background()

	if _, err := env.sched.StartAction(ctx, "gig", []string{"a", "b"}); err != nil {
		t.Fatalf("start: %v", err)
	}

	snap := env.sched.Snapshot()
	if len(snap.Groups) != 1 || len(snap.Groups[0].MemberIDs) != 2 {
		t.Fatalf("expected one group of two, got %+v", snap.Groups)
	}
	if snap.Ledger.Money != 360 { // 500 - (100 + 20*2)
		t.Fatalf("expected snapshot money 360, got %d", snap.Ledger.Money)
	}

	snap.Ledger.Money = 0
	snap.Ledger.Morale["a"] = -5
	snap.Groups[0].MemberIDs[0] = "tampered"

	fresh := env.sched.Snapshot()
	if fresh.Ledger.Money != 360 || fresh.Groups[0].MemberIDs[0] != "a" {
		t.Fatalf("snapshot mutation must not reach live state")
	}
	if env.ledger.MoraleOf("a") != 8 {
		t.Fatalf("snapshot morale map must be detached")
	}
}

func TestBusyImpliesLiveGroupInvariant(t *testing.T) {
	env := newTestEnv(t, 10000)
	ctx := context.Background()

	if _, err := env.sched.StartAction(ctx, "gig", []string{"a", "b"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := env.sched.StartAction(ctx, "gig", []string{"c"}); err != nil {
		t.Fatalf("start: %v", err)
	}

	checkInvariant := func(stage string) {
		t.Helper()
		snap := env.sched.Snapshot()
		live := map[string]bool{}
		for _, g := range snap.Groups {
			live[g.GroupID] = true
		}
		for _, m := range snap.Members {
			if m.Busy() != (m.Engagement != nil) {
				t.Fatalf("%s: busy flag out of sync for %s", stage, m.Template.ID)
			}
			if m.Busy() && !live[m.Engagement.GroupID] {
				t.Fatalf("%s: member %s references dead group %s", stage, m.Template.ID, m.Engagement.GroupID)
			}
		}
	}

	checkInvariant("after start")
	env.sched.Tick(ctx, 5*time.Second)
	checkInvariant("mid flight")
	env.sched.CancelAction(ctx, "a")
	checkInvariant("after cancel")
	env.sched.Tick(ctx, time.Hour)
	checkInvariant("after completion")
}
