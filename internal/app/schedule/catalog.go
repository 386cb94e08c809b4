package schedule

import (
	"fmt"

	"stagehand/internal/domain/troupe"
)

// Catalog is the read-only set of action definitions, validated once at
// load time. It has no mutation methods.
type Catalog struct {
	defs  map[string]troupe.ActionDefinition
	order []string
}

func NewCatalog(defs []troupe.ActionDefinition) (*Catalog, error) {
	c := &Catalog{defs: map[string]troupe.ActionDefinition{}}
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return nil, err
		}
		if _, exists := c.defs[def.ID]; exists {
			return nil, fmt.Errorf("duplicate action id %s", def.ID)
		}
		c.defs[def.ID] = def
		c.order = append(c.order, def.ID)
	}
	return c, nil
}

func (c *Catalog) Lookup(id string) (troupe.ActionDefinition, error) {
	def, ok := c.defs[id]
	if !ok {
		return troupe.ActionDefinition{}, &UnknownActionError{ActionID: id}
	}
	return def, nil
}

// List returns definitions in catalog order.
func (c *Catalog) List() []troupe.ActionDefinition {
	out := make([]troupe.ActionDefinition, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.defs[id])
	}
	return out
}
