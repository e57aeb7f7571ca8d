// Package effects schedules the timed highlight pulses played after an anchor change.
package effects

import (
	"villagerlink.ai/internal/sim/link"
	"villagerlink.ai/internal/sim/scheduler"
)

// Burst is one particle emission with an optional sound.
type Burst struct {
	Particle string
	Count    int
	Spread   link.Vec3
	Extra    float64
	YOffset  float64

	Sound  string
	Volume float64
	Pitch  float64
}

// Pulse repeats a Burst every EveryTicks until DurationTicks have elapsed.
type Pulse struct {
	Burst
	EveryTicks    int
	DurationTicks int
}

type Config struct {
	Agent  Pulse
	Anchor Pulse
}

// Play emits b once at p.
func Play(fx link.Effects, p link.Point, b Burst) {
	at := p.Add(0, b.YOffset, 0)
	fx.SpawnParticle(at, b.Particle, b.Count, b.Spread, b.Extra)
	if b.Sound != "" {
		fx.PlaySound(at, b.Sound, b.Volume, b.Pitch)
	}
}

type Sequencer struct {
	sched *scheduler.Scheduler
	fx    link.Effects
	cfg   Config
}

func NewSequencer(sched *scheduler.Scheduler, fx link.Effects, cfg Config) *Sequencer {
	return &Sequencer{sched: sched, fx: fx, cfg: cfg}
}

// SetConfig applies to sequences started afterwards; running pulses keep the
// configuration they were started with.
func (s *Sequencer) SetConfig(cfg Config) { s.cfg = cfg }

// Started reports the tasks created by one Start call. Either may be nil.
type Started struct {
	Agent  *scheduler.Task
	Anchor *scheduler.Task
}

// Start launches the agent pulse (when agent is non-nil) and the anchor pulse
// (when anchor is non-nil). The two run independently of each other.
func (s *Sequencer) Start(kind link.Kind, agent link.AgentHandle, anchor *link.Point) Started {
	var out Started
	if agent != nil {
		out.Agent = s.startAgentPulse(kind, agent, s.cfg.Agent)
	}
	if anchor != nil {
		out.Anchor = s.startAnchorPulse(kind, anchor.Center(), s.cfg.Anchor)
	}
	return out
}

// The agent pulse samples the agent position on every run since the agent
// keeps walking while it plays, and stops as soon as the agent is gone.
func (s *Sequencer) startAgentPulse(kind link.Kind, agent link.AgentHandle, p Pulse) *scheduler.Task {
	elapsed := 0
	return s.sched.Every("pulse:agent:"+kind.String()+":"+string(agent.ID()), 0, period(p), func(uint64) bool {
		if elapsed >= p.DurationTicks || !agent.Valid() {
			return false
		}
		s.emit(agent.Location(), p, elapsed)
		elapsed += everyTicks(p)
		return elapsed < p.DurationTicks
	})
}

func (s *Sequencer) startAnchorPulse(kind link.Kind, at link.Point, p Pulse) *scheduler.Task {
	elapsed := 0
	return s.sched.Every("pulse:anchor:"+kind.String(), 0, period(p), func(uint64) bool {
		if elapsed >= p.DurationTicks {
			return false
		}
		s.emit(at, p, elapsed)
		elapsed += everyTicks(p)
		return elapsed < p.DurationTicks
	})
}

func (s *Sequencer) emit(p link.Point, pulse Pulse, elapsed int) {
	at := p.Add(0, pulse.YOffset, 0)
	s.fx.SpawnParticle(at, pulse.Particle, pulse.Count, pulse.Spread, pulse.Extra)
	if elapsed == 0 && pulse.Sound != "" {
		s.fx.PlaySound(at, pulse.Sound, pulse.Volume, pulse.Pitch)
	}
}

func period(p Pulse) uint64 { return uint64(everyTicks(p)) }

func everyTicks(p Pulse) int {
	if p.EveryTicks <= 0 {
		return 1
	}
	return p.EveryTicks
}
