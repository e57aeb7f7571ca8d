// Package world is the in-memory engine side of the linker: a single dimension
// holding agents, their anchor memory and the effects played in it.
package world

import (
	"fmt"

	"github.com/google/uuid"

	"villagerlink.ai/internal/sim/link"
)

// EffectKind values.
const (
	EffectParticle = "PARTICLE"
	EffectSound    = "SOUND"
)

// EffectRecord is one particle or sound request played in the world.
type EffectRecord struct {
	Kind   string     `json:"kind"`
	Name   string     `json:"name"`
	At     link.Point `json:"at"`
	Count  int        `json:"count,omitempty"`
	Spread link.Vec3  `json:"spread,omitempty"`
	Extra  float64    `json:"extra,omitempty"`
	Volume float64    `json:"volume,omitempty"`
	Pitch  float64    `json:"pitch,omitempty"`
}

// World must only be accessed from the loop goroutine that owns it.
type World struct {
	id string

	agents map[link.AgentID]*Agent
	order  []link.AgentID

	effects    []EffectRecord
	maxEffects int
}

func New(id string) *World {
	return &World{
		id:         id,
		agents:     map[link.AgentID]*Agent{},
		maxEffects: 4096,
	}
}

func (w *World) ID() string { return w.id }

// SpawnAgent creates an agent with a fresh random id.
func (w *World) SpawnAgent(pos link.Point) *Agent {
	a, _ := w.AddAgent(link.AgentID(uuid.NewString()), pos)
	return a
}

// AddAgent creates an agent with a caller-chosen id.
func (w *World) AddAgent(id link.AgentID, pos link.Point) (*Agent, error) {
	if id == "" {
		return nil, fmt.Errorf("empty agent id")
	}
	if _, ok := w.agents[id]; ok {
		return nil, fmt.Errorf("duplicate agent id: %s", id)
	}
	pos.World = w.id
	a := &Agent{id: id, world: w, pos: pos, valid: true}
	w.agents[id] = a
	w.order = append(w.order, id)
	return a, nil
}

func (w *World) Agent(id link.AgentID) (*Agent, bool) {
	a, ok := w.agents[id]
	return a, ok
}

// RemoveAgent invalidates the agent; outstanding handles observe Valid()==false.
func (w *World) RemoveAgent(id link.AgentID) bool {
	a, ok := w.agents[id]
	if !ok {
		return false
	}
	a.valid = false
	delete(w.agents, id)
	for i, x := range w.order {
		if x == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	return true
}

// Agents returns live agents in spawn order.
func (w *World) Agents() []*Agent {
	out := make([]*Agent, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.agents[id])
	}
	return out
}

func (w *World) AgentCount() int { return len(w.order) }

// AgentAt returns the i-th live agent in spawn order.
func (w *World) AgentAt(i int) (link.AgentHandle, bool) {
	if i < 0 || i >= len(w.order) {
		return nil, false
	}
	return w.agents[w.order[i]], true
}

func (w *World) FindAgent(id link.AgentID) (link.AgentHandle, bool) {
	a, ok := w.agents[id]
	if !ok {
		return nil, false
	}
	return a, true
}

func (w *World) EachAgent(fn func(link.AgentHandle) bool) {
	for _, id := range w.order {
		if !fn(w.agents[id]) {
			return
		}
	}
}

func (w *World) Anchor(agent link.AgentID, kind link.Kind) link.Value {
	a, ok := w.agents[agent]
	if !ok {
		return link.Absent
	}
	return a.Memory(kind)
}

func (w *World) SetAnchor(agent link.AgentID, kind link.Kind, v link.Value) {
	if a, ok := w.agents[agent]; ok {
		a.SetMemory(kind, v)
	}
}

func (w *World) SpawnParticle(at link.Point, particle string, count int, spread link.Vec3, extra float64) {
	w.record(EffectRecord{Kind: EffectParticle, Name: particle, At: at, Count: count, Spread: spread, Extra: extra})
}

func (w *World) PlaySound(at link.Point, sound string, volume, pitch float64) {
	w.record(EffectRecord{Kind: EffectSound, Name: sound, At: at, Volume: volume, Pitch: pitch})
}

// DrainEffects returns and forgets every effect played since the last drain.
func (w *World) DrainEffects() []EffectRecord {
	out := w.effects
	w.effects = nil
	return out
}

func (w *World) record(e EffectRecord) {
	if len(w.effects) >= w.maxEffects {
		// Drop oldest; nobody drained in a while.
		copy(w.effects, w.effects[1:])
		w.effects = w.effects[:len(w.effects)-1]
	}
	w.effects = append(w.effects, e)
}
