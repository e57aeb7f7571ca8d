package multiworld

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"villagerlink.ai/internal/protocol"
	"villagerlink.ai/internal/sim/catalogs"
	"villagerlink.ai/internal/sim/link"
	"villagerlink.ai/internal/sim/link/assign"
	"villagerlink.ai/internal/sim/link/cooldown"
	"villagerlink.ai/internal/sim/link/effects"
	"villagerlink.ai/internal/sim/link/lastseen"
	"villagerlink.ai/internal/sim/link/scan"
	"villagerlink.ai/internal/sim/link/selection"
	"villagerlink.ai/internal/sim/scheduler"
	"villagerlink.ai/internal/sim/tuning"
	"villagerlink.ai/internal/sim/world"
)

var ErrStopped = errors.New("manager stopped")

// ScanLogger receives the stats of every scan run that saw a change.
type ScanLogger interface {
	WriteScan(st scan.Stats) error
}

type Options struct {
	Tuning   tuning.Tuning
	Catalogs *catalogs.Catalogs
	// Optional sinks (may be nil).
	Audit   link.AuditLogger
	ScanLog ScanLogger
	Logger  *log.Logger
}

// Envelope carries one operator event into the loop. Resp must be buffered.
type Envelope struct {
	Event protocol.Event
	Resp  chan Result
}

type Result struct {
	Outcome  protocol.Outcome
	Messages []string
}

type execReq struct {
	fn   func(m *Manager) error
	resp chan error
}

// Manager owns every world plus the linker state built on top of them.
// All state must be accessed only from the Run goroutine, or through StepOnce
// when Run is not running.
type Manager struct {
	cfg    Config
	worlds map[string]*world.World
	order  []string

	tuning tuning.Tuning
	cats   *catalogs.Catalogs
	logger *log.Logger

	sched     *scheduler.Scheduler
	sel       *selection.Tracker
	gate      *cooldown.Gate
	seen      *lastseen.Cache
	seq       *effects.Sequencer
	proto     *assign.Protocol
	scanner   *scan.Scanner
	scanLog   ScanLogger
	scanTask  *scheduler.Task
	scanEvery uint64
	lastScan  scan.Stats

	outbox map[link.OperatorID][]string

	tick atomic.Uint64

	inbox  chan Envelope
	reload chan tuning.Tuning
	exec   chan execReq
	stop   chan struct{}

	stopOnce sync.Once
}

func NewManager(cfg Config, opts Options) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cats := opts.Catalogs
	if cats == nil {
		cats = catalogs.Default()
	}
	m := &Manager{
		cfg:    cfg,
		worlds: map[string]*world.World{},
		order:  cfg.WorldIDs(),
		tuning: opts.Tuning,
		cats:   cats,
		logger: opts.Logger,
		sched:  scheduler.New(),
		sel:    selection.New(),
		gate:   cooldown.New(cooldownTicks(opts.Tuning)),
		seen:   lastseen.New(),
		outbox: map[link.OperatorID][]string{},
		inbox:  make(chan Envelope, 1024),
		reload: make(chan tuning.Tuning, 4),
		exec:   make(chan execReq, 64),
		stop:   make(chan struct{}),
	}
	for _, spec := range cfg.Worlds {
		w := world.New(spec.ID)
		m.worlds[spec.ID] = w
		for _, as := range spec.Agents {
			if err := m.seedAgent(w, as); err != nil {
				return nil, fmt.Errorf("world %s: %w", spec.ID, err)
			}
		}
	}

	m.seq = effects.NewSequencer(m.sched, m, effectsConfig(m.tuning))
	m.proto = assign.New(m.sel, assign.Deps{
		Agents:    m,
		Store:     m,
		Effects:   m,
		Messenger: m,
		Blocks:    cats.Blocks,
		Audit:     opts.Audit,
	}, assignConfig(m.tuning))
	m.scanner = scan.New(scan.Deps{
		Agents:    m,
		Store:     m,
		Sequencer: m.seq,
		Audit:     opts.Audit,
		Logger:    opts.Logger,
	}, m.gate, m.seen, scanConfig(m.tuning))
	m.scanLog = opts.ScanLog
	m.scheduleScan(scanInterval(m.tuning))
	return m, nil
}

func (m *Manager) seedAgent(w *world.World, as AgentSpec) error {
	pos := link.Point{World: w.ID(), X: as.Pos[0], Y: as.Pos[1], Z: as.Pos[2]}
	var a *world.Agent
	if as.ID == "" {
		a = w.SpawnAgent(pos)
	} else {
		var err error
		if a, err = w.AddAgent(link.AgentID(as.ID), pos); err != nil {
			return err
		}
	}
	a.SetMemory(link.Home, link.Descriptor(as.Home))
	a.SetMemory(link.Job, link.Descriptor(as.Job))
	return nil
}

func (m *Manager) scheduleScan(every uint64) {
	m.scanTask.Cancel()
	m.scanEvery = every
	m.scanTask = m.sched.Every("scan", every, every, m.runScan)
}

func (m *Manager) runScan(nowTick uint64) bool {
	st := m.scanner.Run(nowTick)
	m.lastScan = st
	if st.Changed > 0 && m.scanLog != nil {
		_ = m.scanLog.WriteScan(st)
	}
	return true
}

func (m *Manager) WorldIDs() []string { return append([]string(nil), m.order...) }

func (m *Manager) World(id string) *world.World { return m.worlds[id] }

func (m *Manager) DefaultWorld() *world.World { return m.worlds[m.cfg.DefaultWorldID] }

func (m *Manager) Tuning() tuning.Tuning { return m.tuning }

func (m *Manager) CurrentTick() uint64 { return m.tick.Load() }

// LastScan returns the stats of the most recent scan run.
func (m *Manager) LastScan() scan.Stats { return m.lastScan }

func (m *Manager) Selection(op link.OperatorID) (link.AgentID, bool) { return m.sel.Current(op) }

// ActiveTasks reports live scheduler tasks, the scan task included.
func (m *Manager) ActiveTasks() int { return m.sched.Len() }

func (m *Manager) Run(ctx context.Context) error {
	hz := m.tuning.TickRateHz
	if hz <= 0 {
		hz = 20
	}
	ticker := time.NewTicker(time.Second / time.Duration(hz))
	defer ticker.Stop()

	var pendingEvents []Envelope
	var pendingReloads []tuning.Tuning

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.stop:
			return nil
		case req := <-m.exec:
			req.resp <- req.fn(m)
		case t := <-m.reload:
			pendingReloads = append(pendingReloads, t)
		case env := <-m.inbox:
			pendingEvents = append(pendingEvents, env)
		case <-ticker.C:
			m.step(pendingEvents, pendingReloads)
			pendingEvents = pendingEvents[:0]
			pendingReloads = pendingReloads[:0]
		}
	}
}

// Stop ends Run. Calling it more than once is fine.
func (m *Manager) Stop() { m.stopOnce.Do(func() { close(m.stop) }) }

// StepOnce advances a single tick with the same ordering as Run: reloads, then
// events, then scheduled tasks. It is intended for tests and replays.
func (m *Manager) StepOnce(events ...protocol.Event) (tick uint64, results []Result) {
	envs := make([]Envelope, 0, len(events))
	for _, ev := range events {
		envs = append(envs, Envelope{Event: ev, Resp: make(chan Result, 1)})
	}
	var reloads []tuning.Tuning
	for len(m.reload) > 0 {
		reloads = append(reloads, <-m.reload)
	}
	tick = m.sched.Now()
	m.step(envs, reloads)
	for _, env := range envs {
		results = append(results, <-env.Resp)
	}
	return tick, results
}

func (m *Manager) step(events []Envelope, reloads []tuning.Tuning) {
	if n := len(reloads); n > 0 {
		m.applyTuning(reloads[n-1])
	}
	nowTick := m.sched.Now()
	for _, env := range events {
		res := Result{Outcome: protocol.Ignored}
		if env.Event != nil {
			res.Outcome = m.proto.Handle(nowTick, env.Event)
			op := env.Event.OperatorID()
			res.Messages = m.outbox[op]
			delete(m.outbox, op)
		}
		if env.Resp != nil {
			select {
			case env.Resp <- res:
			default:
			}
		}
	}
	m.sched.Tick()
	m.tick.Store(m.sched.Now())
}

// Submit queues ev for the next tick and waits for its outcome.
func (m *Manager) Submit(ctx context.Context, ev protocol.Event) (Result, error) {
	env := Envelope{Event: ev, Resp: make(chan Result, 1)}
	select {
	case m.inbox <- env:
	case <-m.stop:
		return Result{}, ErrStopped
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	select {
	case res := <-env.Resp:
		return res, nil
	case <-m.stop:
		return Result{}, ErrStopped
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Exec runs fn on the loop goroutine between ticks.
func (m *Manager) Exec(ctx context.Context, fn func(m *Manager) error) error {
	req := execReq{fn: fn, resp: make(chan error, 1)}
	select {
	case m.exec <- req:
	case <-m.stop:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.resp:
		return err
	case <-m.stop:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reload queues new tuning; it is applied at the start of the next tick.
func (m *Manager) Reload(t tuning.Tuning) {
	select {
	case m.reload <- t:
	default:
		if m.logger != nil {
			m.logger.Printf("reload dropped: queue full")
		}
	}
}

// applyTuning swaps configuration without touching selections, the last-seen
// cache, cooldown records or running pulses.
func (m *Manager) applyTuning(t tuning.Tuning) {
	m.tuning = t
	m.seq.SetConfig(effectsConfig(t))
	m.proto.SetConfig(assignConfig(t))
	m.scanner.SetConfig(scanConfig(t))
	m.gate.SetCooldown(cooldownTicks(t))
	if every := scanInterval(t); every != m.scanEvery {
		m.scheduleScan(every)
	}
	if m.logger != nil {
		m.logger.Printf("tuning reloaded: scan every %d ticks, cooldown %d ticks", m.scanEvery, m.gate.Cooldown())
	}
}

// Close cancels every task and clears all linker state. Call it after Run returned.
func (m *Manager) Close() {
	m.sched.Clear()
	m.scanTask = nil
	m.proto.Reset()
	m.scanner.Reset()
	clear(m.outbox)
}

// FindAgent searches every world.
func (m *Manager) FindAgent(id link.AgentID) (link.AgentHandle, bool) {
	for _, wid := range m.order {
		if a, ok := m.worlds[wid].FindAgent(id); ok {
			return a, true
		}
	}
	return nil, false
}

// EachAgent visits agents in world order, then spawn order within a world.
func (m *Manager) EachAgent(fn func(link.AgentHandle) bool) {
	stopped := false
	for _, wid := range m.order {
		m.worlds[wid].EachAgent(func(a link.AgentHandle) bool {
			if !fn(a) {
				stopped = true
				return false
			}
			return true
		})
		if stopped {
			return
		}
	}
}

func (m *Manager) AgentCount() int {
	n := 0
	for _, wid := range m.order {
		n += m.worlds[wid].AgentCount()
	}
	return n
}

// AgentAt indexes agents in EachAgent order.
func (m *Manager) AgentAt(i int) (link.AgentHandle, bool) {
	if i < 0 {
		return nil, false
	}
	for _, wid := range m.order {
		w := m.worlds[wid]
		if n := w.AgentCount(); i >= n {
			i -= n
			continue
		}
		return w.AgentAt(i)
	}
	return nil, false
}

func (m *Manager) agentWorld(id link.AgentID) *world.World {
	for _, wid := range m.order {
		if _, ok := m.worlds[wid].Agent(id); ok {
			return m.worlds[wid]
		}
	}
	return nil
}

func (m *Manager) Anchor(agent link.AgentID, kind link.Kind) link.Value {
	if w := m.agentWorld(agent); w != nil {
		return w.Anchor(agent, kind)
	}
	return link.Absent
}

func (m *Manager) SetAnchor(agent link.AgentID, kind link.Kind, v link.Value) {
	if w := m.agentWorld(agent); w != nil {
		w.SetAnchor(agent, kind, v)
	}
}

// SpawnParticle and PlaySound route by the point's world; unknown worlds drop the effect.
func (m *Manager) SpawnParticle(at link.Point, particle string, count int, spread link.Vec3, extra float64) {
	if w := m.worlds[at.World]; w != nil {
		w.SpawnParticle(at, particle, count, spread, extra)
	}
}

func (m *Manager) PlaySound(at link.Point, sound string, volume, pitch float64) {
	if w := m.worlds[at.World]; w != nil {
		w.PlaySound(at, sound, volume, pitch)
	}
}

func (m *Manager) SendActionBar(op link.OperatorID, text string) {
	m.outbox[op] = append(m.outbox[op], text)
}
