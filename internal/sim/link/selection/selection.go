// Package selection remembers which agent each operator is currently targeting.
package selection

import "villagerlink.ai/internal/sim/link"

// Tracker holds at most one selection per operator. A new Select overwrites.
type Tracker struct {
	byOperator map[link.OperatorID]link.AgentID
}

func New() *Tracker {
	return &Tracker{byOperator: map[link.OperatorID]link.AgentID{}}
}

func (t *Tracker) Select(op link.OperatorID, agent link.AgentID) {
	t.byOperator[op] = agent
}

func (t *Tracker) Current(op link.OperatorID) (link.AgentID, bool) {
	id, ok := t.byOperator[op]
	return id, ok
}

func (t *Tracker) Clear(op link.OperatorID) { delete(t.byOperator, op) }

func (t *Tracker) Len() int { return len(t.byOperator) }

// Reset drops every selection (shutdown).
func (t *Tracker) Reset() { clear(t.byOperator) }
