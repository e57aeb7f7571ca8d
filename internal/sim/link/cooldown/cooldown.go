// Package cooldown gates how often a single agent may trigger highlights.
package cooldown

import "villagerlink.ai/internal/sim/link"

// Gate remembers the tick of each agent's last acted-upon change. Allow never
// records; callers Record only when they actually triggered something.
type Gate struct {
	ticks uint64
	last  map[link.AgentID]uint64
}

func New(cooldownTicks uint64) *Gate {
	return &Gate{ticks: cooldownTicks, last: map[link.AgentID]uint64{}}
}

func (g *Gate) SetCooldown(ticks uint64) { g.ticks = ticks }

func (g *Gate) Cooldown() uint64 { return g.ticks }

// Allow reports whether nowTick is at least the cooldown past the last record.
// Agents with no record are always allowed.
func (g *Gate) Allow(agent link.AgentID, nowTick uint64) bool {
	last, ok := g.last[agent]
	if !ok {
		return true
	}
	if nowTick < last {
		return false
	}
	return nowTick-last >= g.ticks
}

func (g *Gate) Record(agent link.AgentID, nowTick uint64) { g.last[agent] = nowTick }

// LastTriggered returns the recorded tick, if any.
func (g *Gate) LastTriggered(agent link.AgentID) (uint64, bool) {
	t, ok := g.last[agent]
	return t, ok
}

// Retain drops records for agents for which keep returns false.
func (g *Gate) Retain(keep func(link.AgentID) bool) {
	for id := range g.last {
		if !keep(id) {
			delete(g.last, id)
		}
	}
}

func (g *Gate) Len() int { return len(g.last) }

func (g *Gate) Reset() { clear(g.last) }
