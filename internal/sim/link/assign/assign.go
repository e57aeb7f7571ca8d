// Package assign implements the two-step select-then-bind protocol driven by
// operators holding the linking tool.
package assign

import (
	"villagerlink.ai/internal/protocol"
	"villagerlink.ai/internal/sim/catalogs"
	"villagerlink.ai/internal/sim/link"
	"villagerlink.ai/internal/sim/link/effects"
	"villagerlink.ai/internal/sim/link/selection"
)

type Feedback struct {
	Select effects.Burst
	Link   effects.Burst
}

type Config struct {
	Tool     catalogs.ToolSpec
	Feedback Feedback
}

// Deps are the engine capabilities the protocol drives. Audit may be nil.
type Deps struct {
	Agents    link.AgentQuery
	Store     link.Store
	Effects   link.Effects
	Messenger link.Messenger
	Blocks    catalogs.BlockCatalog
	Audit     link.AuditLogger
}

// clickDedupeTicks is how long a consumed click stays remembered. A second
// channel may report the same physical click up to one tick later.
const clickDedupeTicks = 2

type click struct {
	ExpiresTick uint64
	Target      string
}

// Protocol is owned by the tick goroutine; it is not safe for concurrent use.
type Protocol struct {
	sel  *selection.Tracker
	deps Deps
	cfg  Config

	// Last consumed click per operator. A repeat of the same target before it
	// expires is the same physical click reported on another channel.
	consumed map[link.OperatorID]click
}

func New(sel *selection.Tracker, deps Deps, cfg Config) *Protocol {
	return &Protocol{
		sel:      sel,
		deps:     deps,
		cfg:      cfg,
		consumed: map[link.OperatorID]click{},
	}
}

func (p *Protocol) SetConfig(cfg Config) { p.cfg = cfg }

// Reset forgets every selection and consumed click (shutdown).
func (p *Protocol) Reset() {
	p.sel.Reset()
	clear(p.consumed)
}

// Handle routes ev to the matching handler. Unknown events are ignored.
func (p *Protocol) Handle(nowTick uint64, ev protocol.Event) protocol.Outcome {
	switch e := ev.(type) {
	case protocol.EntityInteract:
		return p.HandleEntity(nowTick, e)
	case protocol.BlockInteract:
		return p.HandleBlock(nowTick, e)
	case protocol.BedEnter:
		return p.HandleBedEnter(e)
	default:
		return protocol.Ignored
	}
}

// HandleEntity selects the clicked agent when the operator sneaks with the tool.
func (p *Protocol) HandleEntity(nowTick uint64, ev protocol.EntityInteract) protocol.Outcome {
	a, ok := p.deps.Agents.FindAgent(ev.Agent)
	if !ok || !a.Valid() {
		return protocol.Ignored
	}
	if !ev.Sneaking || !p.holdsTool(ev.Held) {
		return protocol.Ignored
	}
	if ev.Hand == protocol.HandOff {
		return protocol.Suppressed(protocol.ErrDenied)
	}
	if !p.consume(ev.Operator, nowTick, "agent:"+string(a.ID())) {
		return protocol.Suppressed(protocol.ErrDuplicate)
	}

	p.sel.Select(ev.Operator, a.ID())
	loc := a.Location()
	p.deps.Messenger.SendActionBar(ev.Operator, protocol.SelectedText(a.ID()))
	effects.Play(p.deps.Effects, loc, p.cfg.Feedback.Select)
	p.audit(link.AuditEntry{
		Tick:     nowTick,
		Action:   link.AuditSelect,
		Operator: string(ev.Operator),
		Agent:    string(a.ID()),
		World:    loc.World,
		Pos:      link.PointPos(loc),
	})
	return protocol.Suppressed(protocol.OkSelected)
}

// HandleBlock binds the selected agent's HOME or JOB to the clicked block.
// The block's and the tool's default use are denied on every path once the
// operator holds the tool.
func (p *Protocol) HandleBlock(nowTick uint64, ev protocol.BlockInteract) protocol.Outcome {
	if ev.Action != protocol.ActionRightClickBlock || !p.holdsTool(ev.Held) {
		return protocol.Ignored
	}
	if ev.Hand == protocol.HandOff {
		return protocol.Suppressed(protocol.ErrDenied)
	}
	if !p.consume(ev.Operator, nowTick, "block:"+blockKey(ev.Block.Pos)) {
		return protocol.Suppressed(protocol.ErrDuplicate)
	}

	id, ok := p.sel.Current(ev.Operator)
	if !ok {
		p.deps.Messenger.SendActionBar(ev.Operator, protocol.MsgNoSelection)
		return protocol.Suppressed(protocol.ErrNoSelection)
	}
	a, ok := p.deps.Agents.FindAgent(id)
	if !ok || !a.Valid() {
		p.sel.Clear(ev.Operator)
		p.deps.Messenger.SendActionBar(ev.Operator, protocol.MsgStale)
		p.audit(link.AuditEntry{
			Tick:     nowTick,
			Action:   link.AuditStale,
			Operator: string(ev.Operator),
			Agent:    string(id),
			Reason:   protocol.ErrStale,
		})
		return protocol.Suppressed(protocol.ErrStale)
	}

	switch p.deps.Blocks.Classify(ev.Block.Type) {
	case catalogs.ClassBed:
		p.bind(nowTick, ev.Operator, a.ID(), link.Home, BedHead(ev.Block))
		return protocol.Suppressed(protocol.OkLinkedHome)
	case catalogs.ClassWorkstation:
		p.bind(nowTick, ev.Operator, a.ID(), link.Job, ev.Block.Pos.Center())
		return protocol.Suppressed(protocol.OkLinkedJob)
	default:
		return protocol.Suppressed(protocol.ErrNotBindable)
	}
}

// HandleBedEnter denies sleeping while the tool is held in either hand.
func (p *Protocol) HandleBedEnter(ev protocol.BedEnter) protocol.Outcome {
	if !p.holdsTool(ev.Held) {
		return protocol.Ignored
	}
	return protocol.Suppressed(protocol.ErrDenied)
}

// bind clears the slot before writing so no stale value survives a rebind.
func (p *Protocol) bind(nowTick uint64, op link.OperatorID, agent link.AgentID, kind link.Kind, at link.Point) {
	p.deps.Store.SetAnchor(agent, kind, link.Absent)
	p.deps.Store.SetAnchor(agent, kind, link.At(at))

	p.deps.Messenger.SendActionBar(op, protocol.LinkedText(kind, agent))
	effects.Play(p.deps.Effects, at, p.cfg.Feedback.Link)
	p.audit(link.AuditEntry{
		Tick:     nowTick,
		Action:   link.AuditLink,
		Operator: string(op),
		Agent:    string(agent),
		Anchor:   kind.String(),
		World:    at.World,
		Pos:      link.PointPos(at),
	})
}

func (p *Protocol) holdsTool(h protocol.Held) bool {
	return p.cfg.Tool.Matches(h.Main) || p.cfg.Tool.Matches(h.Off)
}

func (p *Protocol) consume(op link.OperatorID, nowTick uint64, target string) bool {
	c, ok := p.consumed[op]
	if ok && c.Target == target && nowTick < c.ExpiresTick {
		return false
	}
	p.consumed[op] = click{ExpiresTick: nowTick + clickDedupeTicks, Target: target}
	return true
}

func (p *Protocol) audit(e link.AuditEntry) {
	if p.deps.Audit != nil {
		_ = p.deps.Audit.WriteAudit(e)
	}
}
