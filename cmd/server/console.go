package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"villagerlink.ai/internal/protocol"
	"villagerlink.ai/internal/sim/catalogs"
	"villagerlink.ai/internal/sim/link"
	"villagerlink.ai/internal/sim/multiworld"
	"villagerlink.ai/internal/sim/world"
)

const consoleUsage = `commands:
  as <operator>                          act as another operator
  give                                   put the linking tool in the main hand
  hold <ITEM> [label...] | hold none     set the main hand item
  offhand                                swap main and off hand
  sneak on|off
  spawn [world] <x> <y> <z>              spawn an agent
  agents                                 list agents and anchors
  move <agent> <x> <y> <z>
  remove <agent>
  memory <agent> home|job <descriptor...>|clear
  select <agent> [off] [at]              sneak-right-click an agent
  click <world> <x> <y> <z> <BLOCK> [head|foot <facing>] [off]
  bed                                    try to sleep
  fx                                     drain and count played effects
  stats                                  last scan run
  reload                                 re-read linker.yaml`

// console drives the manager from line commands, standing in for an engine
// that would deliver real operator input.
type console struct {
	m      *multiworld.Manager
	out    io.Writer
	reload func() error

	op       link.OperatorID
	held     protocol.Held
	sneaking bool
}

func newConsole(m *multiworld.Manager, out io.Writer, reload func() error) *console {
	return &console{m: m, out: out, reload: reload, op: "console"}
}

func (c *console) run(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := c.exec(ctx, line); err != nil {
			fmt.Fprintf(c.out, "error: %v\n", err)
		}
	}
	return sc.Err()
}

func (c *console) exec(ctx context.Context, line string) error {
	args := strings.Fields(line)
	cmd, args := strings.ToLower(args[0]), args[1:]
	switch cmd {
	case "help":
		fmt.Fprintln(c.out, consoleUsage)
		return nil
	case "as":
		if len(args) != 1 {
			return fmt.Errorf("usage: as <operator>")
		}
		c.op = link.OperatorID(args[0])
		return nil
	case "give":
		return c.m.Exec(ctx, func(m *multiworld.Manager) error {
			t := m.Tuning().Tool
			c.held.Main = catalogs.ToolSpec{Item: t.Item, Label: t.Label}.MakeTool()
			fmt.Fprintf(c.out, "%s now holds %s\n", c.op, c.held.Main.Label)
			return nil
		})
	case "hold":
		if len(args) == 0 {
			return fmt.Errorf("usage: hold <ITEM> [label...] | hold none")
		}
		if strings.EqualFold(args[0], "none") {
			c.held.Main = catalogs.Item{}
			return nil
		}
		c.held.Main = catalogs.Item{Type: strings.ToUpper(args[0]), Label: strings.Join(args[1:], " ")}
		return nil
	case "offhand":
		c.held.Main, c.held.Off = c.held.Off, c.held.Main
		return nil
	case "sneak":
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			return fmt.Errorf("usage: sneak on|off")
		}
		c.sneaking = args[0] == "on"
		return nil
	case "spawn":
		return c.spawn(ctx, args)
	case "agents":
		return c.listAgents(ctx)
	case "move":
		if len(args) != 4 {
			return fmt.Errorf("usage: move <agent> <x> <y> <z>")
		}
		xyz, err := parseFloats(args[1:])
		if err != nil {
			return err
		}
		return c.withAgent(ctx, args[0], func(a *world.Agent) {
			a.MoveTo(xyz[0], xyz[1], xyz[2])
		})
	case "remove":
		if len(args) != 1 {
			return fmt.Errorf("usage: remove <agent>")
		}
		return c.withAgent(ctx, args[0], func(a *world.Agent) {
			a.World().RemoveAgent(a.ID())
			fmt.Fprintf(c.out, "removed %s\n", a.ID())
		})
	case "memory":
		return c.memory(ctx, args)
	case "select":
		return c.selectAgent(ctx, args)
	case "click":
		return c.click(ctx, args)
	case "bed":
		return c.submit(ctx, protocol.BedEnter{Operator: c.op, Held: c.held})
	case "fx":
		return c.m.Exec(ctx, func(m *multiworld.Manager) error {
			for _, id := range m.WorldIDs() {
				counts := map[string]int{}
				for _, e := range m.World(id).DrainEffects() {
					counts[e.Name]++
				}
				fmt.Fprintf(c.out, "%s: %v\n", id, counts)
			}
			return nil
		})
	case "stats":
		return c.m.Exec(ctx, func(m *multiworld.Manager) error {
			st := m.LastScan()
			fmt.Fprintf(c.out, "tick=%d processed=%d changed=%d triggered=%d suppressed=%d cleared=%d capped=%v tasks=%d\n",
				st.Tick, st.Processed, st.Changed, st.Triggered, st.Suppressed, st.Cleared, st.Capped, m.ActiveTasks())
			return nil
		})
	case "reload":
		if len(args) != 0 {
			return fmt.Errorf("usage: reload")
		}
		if err := c.reload(); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "reload queued")
		return nil
	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
}

func (c *console) spawn(ctx context.Context, args []string) error {
	worldID := ""
	if len(args) == 4 {
		worldID, args = args[0], args[1:]
	}
	if len(args) != 3 {
		return fmt.Errorf("usage: spawn [world] <x> <y> <z>")
	}
	xyz, err := parseFloats(args)
	if err != nil {
		return err
	}
	return c.m.Exec(ctx, func(m *multiworld.Manager) error {
		w := m.DefaultWorld()
		if worldID != "" {
			if w = m.World(worldID); w == nil {
				return fmt.Errorf("unknown world %q", worldID)
			}
		}
		a := w.SpawnAgent(link.Point{World: w.ID(), X: xyz[0], Y: xyz[1], Z: xyz[2]})
		fmt.Fprintf(c.out, "spawned %s in %s\n", a.ID(), w.ID())
		return nil
	})
}

func (c *console) listAgents(ctx context.Context) error {
	return c.m.Exec(ctx, func(m *multiworld.Manager) error {
		for _, id := range m.WorldIDs() {
			for _, a := range m.World(id).Agents() {
				p := a.Location()
				fmt.Fprintf(c.out, "%s %s (%.1f, %.1f, %.1f) home=%s job=%s\n",
					a.ID(), id, p.X, p.Y, p.Z, a.Memory(link.Home), a.Memory(link.Job))
			}
		}
		return nil
	})
}

func (c *console) memory(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: memory <agent> home|job <descriptor...>|clear")
	}
	var kind link.Kind
	switch strings.ToLower(args[1]) {
	case "home":
		kind = link.Home
	case "job":
		kind = link.Job
	default:
		return fmt.Errorf("unknown anchor %q", args[1])
	}
	v := link.Descriptor(strings.Join(args[2:], " "))
	if strings.EqualFold(args[2], "clear") {
		v = link.Absent
	}
	return c.withAgent(ctx, args[0], func(a *world.Agent) {
		a.SetMemory(kind, v)
	})
}

func (c *console) selectAgent(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: select <agent> [off] [at]")
	}
	ev := protocol.EntityInteract{
		Operator: c.op,
		Hand:     protocol.HandMain,
		Channel:  protocol.ChannelEntity,
		Sneaking: c.sneaking,
		Held:     c.held,
	}
	for _, a := range args[1:] {
		switch a {
		case "off":
			ev.Hand = protocol.HandOff
		case "at":
			ev.Channel = protocol.ChannelAtEntity
		default:
			return fmt.Errorf("unknown select option %q", a)
		}
	}
	id, err := c.resolveAgent(ctx, args[0])
	if err != nil {
		return err
	}
	ev.Agent = id
	return c.submit(ctx, ev)
}

func (c *console) click(ctx context.Context, args []string) error {
	if len(args) < 5 {
		return fmt.Errorf("usage: click <world> <x> <y> <z> <BLOCK> [head|foot <facing>] [off]")
	}
	xyz, err := parseInts(args[1:4])
	if err != nil {
		return err
	}
	ev := protocol.BlockInteract{
		Operator: c.op,
		Action:   protocol.ActionRightClickBlock,
		Hand:     protocol.HandMain,
		Block: protocol.Block{
			Pos:  protocol.BlockPos{World: args[0], X: xyz[0], Y: xyz[1], Z: xyz[2]},
			Type: strings.ToUpper(args[4]),
		},
		Held: c.held,
	}
	rest := args[5:]
	for len(rest) > 0 {
		switch strings.ToLower(rest[0]) {
		case "off":
			ev.Hand = protocol.HandOff
			rest = rest[1:]
		case "head", "foot":
			if len(rest) < 2 {
				return fmt.Errorf("bed part needs a facing")
			}
			ev.Block.Bed = &protocol.BedData{
				Part:   protocol.BedPart(strings.ToUpper(rest[0])),
				Facing: protocol.Facing(strings.ToUpper(rest[1])),
			}
			rest = rest[2:]
		default:
			return fmt.Errorf("unknown click option %q", rest[0])
		}
	}
	return c.submit(ctx, ev)
}

func (c *console) submit(ctx context.Context, ev protocol.Event) error {
	res, err := c.m.Submit(ctx, ev)
	if err != nil {
		return err
	}
	for _, msg := range res.Messages {
		fmt.Fprintf(c.out, "[%s] %s\n", c.op, catalogs.StripFormatting(msg))
	}
	code := res.Outcome.Code
	if code == "" {
		code = "IGNORED"
	}
	fmt.Fprintf(c.out, "%s -> %s\n", ev.EventType(), code)
	return nil
}

func (c *console) resolveAgent(ctx context.Context, prefix string) (link.AgentID, error) {
	var id link.AgentID
	err := c.withAgent(ctx, prefix, func(a *world.Agent) { id = a.ID() })
	return id, err
}

// withAgent runs fn on the loop goroutine for the single agent whose id starts with prefix.
func (c *console) withAgent(ctx context.Context, prefix string, fn func(a *world.Agent)) error {
	return c.m.Exec(ctx, func(m *multiworld.Manager) error {
		var found []*world.Agent
		for _, id := range m.WorldIDs() {
			for _, a := range m.World(id).Agents() {
				if strings.HasPrefix(string(a.ID()), prefix) {
					found = append(found, a)
				}
			}
		}
		switch len(found) {
		case 0:
			return fmt.Errorf("no agent matches %q", prefix)
		case 1:
			fn(found[0])
			return nil
		default:
			return fmt.Errorf("%d agents match %q", len(found), prefix)
		}
	})
}

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, s := range args {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", s)
		}
		out[i] = f
	}
	return out, nil
}

func parseInts(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, s := range args {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("bad block coordinate %q", s)
		}
		out[i] = n
	}
	return out, nil
}
