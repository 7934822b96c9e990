package content

import (
	"sort"
	"strings"
)

// Catalog is the read-only view of loaded content shared by every session.
// Units keep document order with the default unit appended last.
type Catalog struct {
	persona      Persona
	units        []*Unit
	byID         map[string]*Unit
	topics       []Topic
	topicsByUnit map[string][]int
	flags        map[Flag]struct{}
}

func newCatalog(doc *document) *Catalog {
	c := &Catalog{
		persona: Persona{
			Name:        strings.TrimSpace(doc.Persona.Name),
			Instruction: strings.TrimSpace(doc.Persona.Instruction),
		},
		byID:         make(map[string]*Unit, len(doc.Units)+1),
		topicsByUnit: make(map[string][]int),
		flags:        make(map[Flag]struct{}),
	}
	for _, f := range builtinFlags {
		c.flags[f] = struct{}{}
	}

	for _, raw := range doc.Units {
		u := &Unit{
			ID:        strings.TrimSpace(raw.ID),
			Replies:   trimAll(raw.Replies),
			Triggers:  lowerAll(raw.Triggers),
			Keywords:  lowerAll(raw.Keywords),
			Next:      trimAll(raw.Next),
			Priority:  1.0,
			Sentiment: raw.Sentiment,
		}
		if raw.Priority != nil {
			u.Priority = *raw.Priority
		}
		for _, name := range raw.ContextFlags {
			f := Flag(strings.ToLower(strings.TrimSpace(name)))
			u.ContextFlags = append(u.ContextFlags, f)
			c.flags[f] = struct{}{}
		}
		c.units = append(c.units, u)
		c.byID[u.ID] = u
	}

	def := &Unit{
		ID:       DefaultUnitID,
		Replies:  trimAll(doc.DefaultReplies),
		Priority: 1.0,
	}
	c.units = append(c.units, def)
	c.byID[def.ID] = def

	for i, raw := range doc.Topics {
		t := Topic{
			ID:          strings.TrimSpace(raw.ID),
			Name:        strings.TrimSpace(raw.Name),
			Description: strings.TrimSpace(raw.Description),
			Keywords:    lowerAll(raw.Keywords),
			UnitIDs:     trimAll(raw.Units),
		}
		c.topics = append(c.topics, t)
		for _, unitID := range t.UnitIDs {
			c.topicsByUnit[unitID] = append(c.topicsByUnit[unitID], i)
		}
	}
	return c
}

// Persona returns the persona description.
func (c *Catalog) Persona() Persona { return c.persona }

// Units returns every unit in scoring order, default last. The slice must not be modified.
func (c *Catalog) Units() []*Unit { return c.units }

// Unit looks up a unit by id.
func (c *Catalog) Unit(id string) (*Unit, bool) {
	u, ok := c.byID[id]
	return u, ok
}

// Default returns the fallback unit.
func (c *Catalog) Default() *Unit { return c.units[len(c.units)-1] }

// Topics returns all topics in document order.
func (c *Catalog) Topics() []Topic { return c.topics }

// TopicsForUnit returns the topics covering unitID.
func (c *Catalog) TopicsForUnit(unitID string) []Topic {
	idx := c.topicsByUnit[unitID]
	out := make([]Topic, 0, len(idx))
	for _, i := range idx {
		out = append(out, c.topics[i])
	}
	return out
}

// HasFlag reports whether f belongs to the closed flag set.
func (c *Catalog) HasFlag(f Flag) bool {
	_, ok := c.flags[f]
	return ok
}

// Flags lists the known flags, sorted.
func (c *Catalog) Flags() []Flag {
	out := make([]Flag, 0, len(c.flags))
	for f := range c.flags {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IndexText returns the text indexed for the unit at position i:
// triggers, keywords and context flag names joined.
func (c *Catalog) IndexText(i int) string {
	u := c.units[i]
	parts := make([]string, 0, len(u.Triggers)+len(u.Keywords)+len(u.ContextFlags))
	parts = append(parts, u.Triggers...)
	parts = append(parts, u.Keywords...)
	for _, f := range u.ContextFlags {
		parts = append(parts, strings.ReplaceAll(string(f), "_", " "))
	}
	return strings.Join(parts, " ")
}

// IndexTexts returns IndexText for every unit, in unit order.
func (c *Catalog) IndexTexts() []string {
	docs := make([]string, len(c.units))
	for i := range c.units {
		docs[i] = c.IndexText(i)
	}
	return docs
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func lowerAll(in []string) []string {
	out := trimAll(in)
	for i := range out {
		out[i] = strings.ToLower(out[i])
	}
	return out
}
