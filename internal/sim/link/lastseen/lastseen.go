// Package lastseen caches the last anchor value observed for each agent slot.
package lastseen

import "villagerlink.ai/internal/sim/link"

type key struct {
	Agent link.AgentID
	Kind  link.Kind
}

type Cache struct {
	values map[key]link.Value
}

func New() *Cache { return &Cache{values: map[key]link.Value{}} }

// Get returns the cached value and whether the slot was ever observed.
func (c *Cache) Get(agent link.AgentID, kind link.Kind) (link.Value, bool) {
	v, ok := c.values[key{Agent: agent, Kind: kind}]
	return v, ok
}

// Observe stores v and reports whether it differs from the previous value.
// The first observation of a slot always reports changed and first.
func (c *Cache) Observe(agent link.AgentID, kind link.Kind, v link.Value) (changed, first bool) {
	k := key{Agent: agent, Kind: kind}
	prev, ok := c.values[k]
	if ok && prev == v {
		return false, false
	}
	c.values[k] = v
	return true, !ok
}

// Retain drops every slot belonging to agents for which keep returns false.
func (c *Cache) Retain(keep func(link.AgentID) bool) {
	for k := range c.values {
		if !keep(k.Agent) {
			delete(c.values, k)
		}
	}
}

func (c *Cache) Len() int { return len(c.values) }

func (c *Cache) Reset() { clear(c.values) }
