package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"villagerlink.ai/internal/sim/multiworld"
	"villagerlink.ai/internal/sim/tuning"
)

func startManager(t *testing.T) *multiworld.Manager {
	t.Helper()
	tu := tuning.Defaults()
	tu.TickRateHz = 200
	cfg := multiworld.Config{
		DefaultWorldID: "overworld",
		Worlds: []multiworld.WorldSpec{{
			ID:     "overworld",
			Agents: []multiworld.AgentSpec{{ID: "cafe0001-aaaa-4bbb-8ccc-000000000001", Pos: [3]float64{0, 64, 0}}},
		}},
	}
	m, err := multiworld.NewManager(cfg, multiworld.Options{Tuning: tu})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = m.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		m.Close()
	})
	return m
}

func runScript(t *testing.T, c *console, script string) string {
	t.Helper()
	var out bytes.Buffer
	c.out = &out
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.run(ctx, strings.NewReader(script)); err != nil {
		t.Fatalf("run: %v", err)
	}
	return out.String()
}

func TestConsoleSelectAndLink(t *testing.T) {
	m := startManager(t)
	c := newConsole(m, nil, func() error { return nil })

	out := runScript(t, c, `
give
sneak on
select cafe0001
click overworld 4 64 4 lectern
click overworld 1 64 1 red_bed foot north
click overworld 9 64 9 stone
agents
`)
	for _, want := range []string{
		"ENTITY_INTERACT -> OK_SELECTED",
		"Selected agent cafe0001",
		"BLOCK_INTERACT -> OK_LINKED_JOB",
		"BLOCK_INTERACT -> OK_LINKED_HOME",
		"BLOCK_INTERACT -> E_NOT_BINDABLE",
		"JOB linked for cafe0001",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConsoleWithoutToolOrSelection(t *testing.T) {
	m := startManager(t)
	c := newConsole(m, nil, func() error { return nil })

	out := runScript(t, c, `
sneak on
select cafe
give
click overworld 4 64 4 lectern
bed
`)
	for _, want := range []string{
		"ENTITY_INTERACT -> IGNORED",
		"BLOCK_INTERACT -> E_NO_SELECTION",
		"No agent selected",
		"BED_ENTER -> E_DENIED",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConsoleStaleSelectionAndErrors(t *testing.T) {
	m := startManager(t)
	c := newConsole(m, nil, func() error { return nil })

	out := runScript(t, c, `
give
sneak on
select cafe0001
remove cafe0001
click overworld 4 64 4 composter
select nobody
frobnicate
`)
	for _, want := range []string{
		"removed cafe0001",
		"BLOCK_INTERACT -> E_STALE",
		"Selected agent is gone",
		`error: no agent matches "nobody"`,
		`error: unknown command "frobnicate"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConsoleReload(t *testing.T) {
	m := startManager(t)
	calls := 0
	c := newConsole(m, nil, func() error {
		calls++
		if calls > 1 {
			return errors.New("linker.yaml: boom")
		}
		return nil
	})

	out := runScript(t, c, "reload\nreload now\nreload\n")
	if calls != 2 {
		t.Fatalf("reload calls=%d", calls)
	}
	for _, want := range []string{"reload queued", "error: usage: reload", "error: linker.yaml: boom"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}
