package world

import "villagerlink.ai/internal/sim/link"

type Agent struct {
	id    link.AgentID
	world *World
	pos   link.Point
	valid bool

	home link.Value
	job  link.Value
}

func (a *Agent) ID() link.AgentID { return a.id }

func (a *Agent) Valid() bool { return a.valid }

func (a *Agent) Location() link.Point { return a.pos }

func (a *Agent) World() *World { return a.world }

func (a *Agent) MoveTo(x, y, z float64) {
	a.pos.X, a.pos.Y, a.pos.Z = x, y, z
}

func (a *Agent) Memory(kind link.Kind) link.Value {
	switch kind {
	case link.Home:
		return a.home
	case link.Job:
		return a.job
	default:
		return link.Absent
	}
}

func (a *Agent) SetMemory(kind link.Kind, v link.Value) {
	switch kind {
	case link.Home:
		a.home = v
	case link.Job:
		a.job = v
	}
}
