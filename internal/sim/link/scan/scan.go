// Package scan periodically diffs every agent's anchors against the last
// observed values and starts highlight pulses for the ones that changed.
package scan

import (
	"log"

	"villagerlink.ai/internal/sim/link"
	"villagerlink.ai/internal/sim/link/cooldown"
	"villagerlink.ai/internal/sim/link/effects"
	"villagerlink.ai/internal/sim/link/lastseen"
)

type Config struct {
	// MaxAgentsPerRun bounds the agents visited per run; 0 means no bound.
	MaxAgentsPerRun int
	// SilentFirstSight makes the first observation of an agent only seed the
	// cache. By default a present anchor seen for the first time is a change.
	SilentFirstSight bool
	Debug            bool
}

type Deps struct {
	Agents    link.AgentQuery
	Store     link.Store
	Sequencer *effects.Sequencer
	Audit     link.AuditLogger
	Logger    *log.Logger
}

// Stats summarises one run.
type Stats struct {
	Tick       uint64 `json:"tick"`
	Processed  int    `json:"processed"`
	Changed    int    `json:"changed"`    // anchor slots whose value differed from the cache
	Triggered  int    `json:"triggered"`  // slots that started a highlight
	Suppressed int    `json:"suppressed"` // present changes swallowed by the cooldown
	Cleared    int    `json:"cleared"`    // slots that went from present to absent
	Capped     bool   `json:"capped"`
}

type Scanner struct {
	deps Deps
	seen *lastseen.Cache
	gate *cooldown.Gate
	cfg  Config

	cursor int
}

func New(deps Deps, gate *cooldown.Gate, seen *lastseen.Cache, cfg Config) *Scanner {
	return &Scanner{deps: deps, seen: seen, gate: gate, cfg: cfg}
}

func (s *Scanner) SetConfig(cfg Config) { s.cfg = cfg }

// Reset drops the cache and every cooldown record (shutdown).
func (s *Scanner) Reset() {
	s.cursor = 0
	s.seen.Reset()
	s.gate.Reset()
}

// Run performs one budgeted pass. When the budget is smaller than the agent
// population the next run resumes after the last agent visited, so every agent
// is reached within a bounded number of runs. Nothing else is carried over.
func (s *Scanner) Run(nowTick uint64) Stats {
	st := Stats{Tick: nowTick}

	n := s.deps.Agents.AgentCount()
	if n == 0 {
		s.cursor = 0
		s.seen.Reset()
		s.gate.Reset()
		return st
	}

	budget := n
	if s.cfg.MaxAgentsPerRun > 0 && s.cfg.MaxAgentsPerRun < n {
		budget = s.cfg.MaxAgentsPerRun
		st.Capped = true
	}
	start := s.cursor % n
	for i := 0; i < budget; i++ {
		a, ok := s.deps.Agents.AgentAt((start + i) % n)
		if !ok {
			continue
		}
		st.Processed++
		s.scanAgent(nowTick, a, &st)
	}
	s.cursor = (start + budget) % n

	// The cursor wrapped: a lap is complete, forget agents the engine dropped.
	if start+budget >= n {
		s.forgetRemoved()
	}
	return st
}

func (s *Scanner) forgetRemoved() {
	live := func(id link.AgentID) bool {
		a, ok := s.deps.Agents.FindAgent(id)
		return ok && a.Valid()
	}
	s.seen.Retain(live)
	s.gate.Retain(live)
}

func (s *Scanner) scanAgent(nowTick uint64, a link.AgentHandle, st *Stats) {
	id := a.ID()
	cooling := !s.gate.Allow(id, nowTick)
	triggered := false

	for _, kind := range link.Kinds {
		cur := s.deps.Store.Anchor(id, kind)
		changed, first := s.seen.Observe(id, kind, cur)
		if !changed {
			continue
		}
		if first && (s.cfg.SilentFirstSight || !cur.Present()) {
			continue
		}
		st.Changed++
		s.debugf("agent %s %s changed: %s", id, kind, cur)

		if !cur.Present() {
			st.Cleared++
			s.audit(link.AuditEntry{Tick: nowTick, Action: link.AuditCleared, Agent: string(id), Anchor: kind.String()})
			continue
		}
		if cooling {
			st.Suppressed++
			continue
		}

		loc := a.Location()
		var anchor *link.Point
		if pt, ok := link.Resolve(cur, loc.World); ok {
			anchor = &pt
		} else {
			s.debugf("agent %s %s: unresolvable anchor %q, highlighting agent only", id, kind, cur.String())
		}
		s.deps.Sequencer.Start(kind, a, anchor)
		triggered = true
		st.Triggered++

		e := link.AuditEntry{Tick: nowTick, Action: link.AuditHighlight, Agent: string(id), Anchor: kind.String()}
		if anchor != nil {
			e.World = anchor.World
			e.Pos = link.PointPos(*anchor)
		} else {
			e.Reason = "unresolvable"
		}
		s.audit(e)
		s.debugf("triggered %s highlight for agent %s", kind, id)
	}

	if triggered {
		s.gate.Record(id, nowTick)
	}
}

func (s *Scanner) audit(e link.AuditEntry) {
	if s.deps.Audit != nil {
		_ = s.deps.Audit.WriteAudit(e)
	}
}

func (s *Scanner) debugf(format string, args ...any) {
	if s.cfg.Debug && s.deps.Logger != nil {
		s.deps.Logger.Printf(format, args...)
	}
}
