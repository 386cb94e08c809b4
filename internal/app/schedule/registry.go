package schedule

import (
	"fmt"

	"stagehand/internal/app/ports"
	"stagehand/internal/domain/troupe"
)

// Registry holds the troupe roster. Members are created once at setup and
// live for the process lifetime; only the scheduler flips their busy-state,
// which is why lock and unlock are unexported.
type Registry struct {
	members map[string]*troupe.Member
	order   []string
}

func NewRegistry(templates []troupe.MemberTemplate) (*Registry, error) {
	r := &Registry{members: map[string]*troupe.Member{}}
	for _, tpl := range templates {
		if tpl.ID == "" {
			return nil, fmt.Errorf("member template missing id")
		}
		if _, exists := r.members[tpl.ID]; exists {
			return nil, fmt.Errorf("duplicate member id %s", tpl.ID)
		}
		m := troupe.NewMember(tpl)
		r.members[tpl.ID] = &m
		r.order = append(r.order, tpl.ID)
	}
	return r, nil
}

// Restore replaces members' grown stats from a persisted snapshot. Unknown
// ids are ignored; the roster itself comes from configuration. Engagements
// are not restored — an action in flight at shutdown is forfeited, same as
// a cancellation.
func (r *Registry) Restore(members []troupe.Member) {
	for _, saved := range members {
		m, ok := r.members[saved.Template.ID]
		if !ok {
			continue
		}
		m.Stats = saved.Stats
		m.Engagement = nil
	}
}

// Member returns a copy of the roster entry.
func (r *Registry) Member(id string) (troupe.Member, error) {
	m, ok := r.members[id]
	if !ok {
		return troupe.Member{}, fmt.Errorf("member %s: %w", id, ports.ErrNotFound)
	}
	return copyMember(m), nil
}

func (r *Registry) IsAvailable(id string) bool {
	m, ok := r.members[id]
	return ok && !m.Busy()
}

// Size is the active roster size, the denominator of the full-team bonus.
func (r *Registry) Size() int {
	return len(r.order)
}

// Members returns copies of every roster entry in setup order.
func (r *Registry) Members() []troupe.Member {
	out := make([]troupe.Member, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, copyMember(r.members[id]))
	}
	return out
}

func (r *Registry) member(id string) (*troupe.Member, bool) {
	m, ok := r.members[id]
	return m, ok
}

func (r *Registry) lock(id string, eng troupe.Engagement) {
	if m, ok := r.members[id]; ok {
		m.Engagement = &eng
	}
}

func (r *Registry) unlock(id string) {
	if m, ok := r.members[id]; ok {
		m.Engagement = nil
	}
}

func copyMember(m *troupe.Member) troupe.Member {
	out := *m
	if m.Engagement != nil {
		eng := *m.Engagement
		out.Engagement = &eng
	}
	return out
}
