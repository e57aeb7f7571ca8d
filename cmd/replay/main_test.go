package main

import (
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	persistlog "villagerlink.ai/internal/persistence/log"
	"villagerlink.ai/internal/sim/link"
)

func writeAudit(t *testing.T, dir string, entries ...link.AuditEntry) {
	t.Helper()
	l := persistlog.NewAuditLogger(dir)
	for _, e := range entries {
		if err := l.WriteAudit(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestReplayFoldsLinks(t *testing.T) {
	dir := t.TempDir()
	writeAudit(t, dir,
		link.AuditEntry{Tick: 1, Action: link.AuditSelect, Operator: "steve", Agent: "aaaa-1"},
		link.AuditEntry{Tick: 2, Action: link.AuditLink, Operator: "steve", Agent: "aaaa-1", Anchor: "HOME", World: "overworld", Pos: [3]float64{1.5, 64.5, 1.5}},
		link.AuditEntry{Tick: 3, Action: link.AuditLink, Operator: "steve", Agent: "aaaa-1", Anchor: "HOME", World: "overworld", Pos: [3]float64{2.5, 64.5, 2.5}},
		link.AuditEntry{Tick: 4, Action: link.AuditLink, Operator: "alex", Agent: "bbbb-2", Anchor: "JOB", World: "overworld"},
		link.AuditEntry{Tick: 10, Action: link.AuditHighlight, Agent: "aaaa-1", Anchor: "HOME"},
	)

	files, err := listAuditFiles(filepath.Join(dir, "audit"))
	if err != nil || len(files) != 1 {
		t.Fatalf("files=%v err=%v", files, err)
	}
	schema, err := jsonschema.Compile(filepath.Join("..", "..", "schemas", "audit.schema.json"))
	if err != nil {
		t.Fatalf("schema: %v", err)
	}

	r := replayer{agent: "aaaa", schema: schema}
	if err := r.replayFile(files[0]); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if r.entries != 4 || r.byAction[link.AuditLink] != 2 || r.lastTick != 10 {
		t.Fatalf("unexpected summary: entries=%d actions=%v last=%d", r.entries, r.byAction, r.lastTick)
	}
	got := r.links[linkKey{agent: "aaaa-1", anchor: "HOME"}]
	if len(r.links) != 1 || got.Pos != [3]float64{2.5, 64.5, 2.5} {
		t.Fatalf("latest link not kept: %+v", r.links)
	}
}

func TestReplayTickRange(t *testing.T) {
	dir := t.TempDir()
	writeAudit(t, dir,
		link.AuditEntry{Tick: 1, Action: link.AuditSelect, Agent: "a"},
		link.AuditEntry{Tick: 5, Action: link.AuditSelect, Agent: "a"},
		link.AuditEntry{Tick: 9, Action: link.AuditSelect, Agent: "a"},
	)
	files, _ := listAuditFiles(filepath.Join(dir, "audit"))
	r := replayer{from: 2, to: 8}
	if err := r.replayFile(files[0]); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if r.entries != 1 || r.lastTick != 5 {
		t.Fatalf("range not applied: entries=%d last=%d", r.entries, r.lastTick)
	}
}
