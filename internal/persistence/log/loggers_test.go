package log

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"villagerlink.ai/internal/sim/link"
	"villagerlink.ai/internal/sim/link/scan"
)

func TestAuditLoggerRoundTripMatchesSchema(t *testing.T) {
	dir := t.TempDir()
	l := NewAuditLogger(dir)
	entries := []link.AuditEntry{
		{Tick: 12, Action: link.AuditLink, Operator: "steve", Agent: "0f3c2a1e", Anchor: "JOB", World: "overworld", Pos: [3]float64{3.5, 64.5, 3.5}},
		{Tick: 20, Action: link.AuditHighlight, Agent: "0f3c2a1e", Anchor: "HOME", Reason: "unresolvable"},
	}
	for _, e := range entries {
		if err := l.WriteAudit(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "audit", "audit-*.jsonl.zst"))
	if err != nil || len(files) != 1 {
		t.Fatalf("expected one audit file, got %v (%v)", files, err)
	}

	schema, err := jsonschema.Compile(filepath.Join("..", "..", "..", "schemas", "audit.schema.json"))
	if err != nil {
		t.Fatalf("compile schema: %v", err)
	}
	var got []link.AuditEntry
	err = ReadJSONL(files[0], func(line []byte) error {
		var doc any
		if err := json.Unmarshal(line, &doc); err != nil {
			return err
		}
		if err := schema.Validate(doc); err != nil {
			return err
		}
		var e link.AuditEntry
		if err := json.Unmarshal(line, &e); err != nil {
			return err
		}
		got = append(got, e)
		return nil
	})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 || got[0] != entries[0] || got[1] != entries[1] {
		t.Fatalf("unexpected entries: %+v", got)
	}
}

func TestWriterRotatesHourly(t *testing.T) {
	dir := t.TempDir()
	w := NewJSONLZstdWriter(dir, "scans")
	clock := time.Date(2026, 3, 1, 10, 59, 0, 0, time.UTC)
	w.now = func() time.Time { return clock }

	if err := w.Write(scan.Stats{Tick: 1, Changed: 1}); err != nil {
		t.Fatalf("write: %v", err)
	}
	clock = clock.Add(2 * time.Minute)
	if err := w.Write(scan.Stats{Tick: 2, Changed: 1}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	for _, name := range []string{"scans-2026-03-01-10.jsonl.zst", "scans-2026-03-01-11.jsonl.zst"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
		n := 0
		if err := ReadJSONL(path, func([]byte) error { n++; return nil }); err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if n != 1 {
			t.Fatalf("%s: %d lines", name, n)
		}
	}
}

func TestWriterAppendsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	clock := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		w := NewJSONLZstdWriter(dir, "audit")
		w.now = func() time.Time { return clock }
		if err := w.Write(link.AuditEntry{Tick: uint64(i), Action: link.AuditSelect, Agent: "a"}); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
	n := 0
	if err := ReadJSONL(filepath.Join(dir, "audit-2026-03-01-10.jsonl.zst"), func([]byte) error { n++; return nil }); err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected both frames to decode, got %d lines", n)
	}
}
