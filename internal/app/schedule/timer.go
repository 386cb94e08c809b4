package schedule

import (
	"context"
	"sort"
	"time"

	"stagehand/internal/domain/troupe"
)

// TimerHandle addresses one in-flight countdown in the arena. Handles are
// never reused, so a stale handle simply resolves to nothing.
type TimerHandle uint64

type timer struct {
	group     troupe.Group
	remaining time.Duration
}

// TimerService owns every in-flight countdown. One timer per action group;
// all members of the group complete together when it crosses zero.
type TimerService struct {
	next     TimerHandle
	active   map[TimerHandle]*timer
	onExpire func(ctx context.Context, group troupe.Group)
}

func NewTimerService(onExpire func(ctx context.Context, group troupe.Group)) *TimerService {
	return &TimerService{
		active:   map[TimerHandle]*timer{},
		onExpire: onExpire,
	}
}

// Start registers a shared countdown for the group, using the duration
// computed at start time.
func (t *TimerService) Start(group troupe.Group) TimerHandle {
	t.next++
	h := t.next
	t.active[h] = &timer{group: group, remaining: group.Duration}
	return h
}

// Tick advances every active timer by dt. Timers that cross zero are
// removed from the arena first and then fired exactly once each, so a
// callback that starts new timers never sees its own expiry again.
func (t *TimerService) Tick(ctx context.Context, dt time.Duration) {
	if dt <= 0 {
		return
	}
	expired := make([]TimerHandle, 0)
	for h, tm := range t.active {
		tm.remaining -= dt
		if tm.remaining <= 0 {
			expired = append(expired, h)
		}
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i] < expired[j] })

	for _, h := range expired {
		tm := t.active[h]
		delete(t.active, h)
		if t.onExpire != nil {
			t.onExpire(ctx, tm.group)
		}
	}
}

// Stop removes exactly the given members from whatever timers hold them.
// A timer whose member set empties is deleted; otherwise it keeps running
// unaffected for the remaining members. Returns the ids actually removed.
func (t *TimerService) Stop(memberIDs []string) []string {
	doomed := map[string]bool{}
	for _, id := range memberIDs {
		doomed[id] = true
	}

	removed := make([]string, 0, len(memberIDs))
	for h, tm := range t.active {
		kept := tm.group.MemberIDs[:0]
		for _, id := range tm.group.MemberIDs {
			if doomed[id] {
				removed = append(removed, id)
				continue
			}
			kept = append(kept, id)
		}
		tm.group.MemberIDs = kept
		if len(kept) == 0 {
			delete(t.active, h)
		}
	}
	return removed
}

// Group returns a copy of the group bound to a live timer.
func (t *TimerService) Group(h TimerHandle) (troupe.Group, bool) {
	tm, ok := t.active[h]
	if !ok {
		return troupe.Group{}, false
	}
	return copyGroup(tm.group), true
}

// Remaining reports the time left on a live timer.
func (t *TimerService) Remaining(h TimerHandle) (time.Duration, bool) {
	tm, ok := t.active[h]
	if !ok {
		return 0, false
	}
	return tm.remaining, true
}

func (t *TimerService) ActiveCount() int {
	return len(t.active)
}

// ActiveTimer is a read-only view of one in-flight countdown.
type ActiveTimer struct {
	Handle    TimerHandle
	Group     troupe.Group
	Remaining time.Duration
}

// ActiveTimers returns views of every live timer, ordered by handle.
func (t *TimerService) ActiveTimers() []ActiveTimer {
	handles := make([]TimerHandle, 0, len(t.active))
	for h := range t.active {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })

	out := make([]ActiveTimer, 0, len(handles))
	for _, h := range handles {
		tm := t.active[h]
		out = append(out, ActiveTimer{Handle: h, Group: copyGroup(tm.group), Remaining: tm.remaining})
	}
	return out
}

func copyGroup(g troupe.Group) troupe.Group {
	out := g
	out.MemberIDs = append([]string(nil), g.MemberIDs...)
	return out
}
