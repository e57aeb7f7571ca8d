package indexdb

import (
	"context"
	"path/filepath"
	"testing"

	"villagerlink.ai/internal/sim/catalogs"
	"villagerlink.ai/internal/sim/link"
	"villagerlink.ai/internal/sim/link/scan"
	"villagerlink.ai/internal/sim/tuning"
)

func TestSQLiteIndex_QueueDropStats(t *testing.T) {
	s := &SQLiteIndex{ch: make(chan req, 1)}
	s.ch <- req{kind: reqScan, scan: scan.Stats{Tick: 1}}

	_ = s.WriteAudit(link.AuditEntry{Tick: 2})
	_ = s.WriteScan(scan.Stats{Tick: 2})

	st := s.Stats()
	if st.DropAuditTotal != 1 || st.DropScanTotal != 1 {
		t.Fatalf("drops: %+v", st)
	}
	if st.QueueDepth != 1 || st.QueueCapacity != 1 {
		t.Fatalf("queue stats mismatch: depth=%d cap=%d", st.QueueDepth, st.QueueCapacity)
	}
}

func TestSQLiteIndex_WriteAndQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index", "linker.sqlite")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := idx.UpsertCatalogs(catalogs.Default(), tuning.Defaults()); err != nil {
		t.Fatalf("upsert catalogs: %v", err)
	}

	entries := []link.AuditEntry{
		{Tick: 5, Action: link.AuditSelect, Operator: "steve", Agent: "aaaa-1", World: "overworld"},
		{Tick: 6, Action: link.AuditLink, Operator: "steve", Agent: "aaaa-1", Anchor: "JOB", World: "overworld", Pos: [3]float64{1.5, 64.5, 1.5}},
		{Tick: 9, Action: link.AuditLink, Operator: "alex", Agent: "aaaa-1", Anchor: "JOB", World: "overworld", Pos: [3]float64{7.5, 64.5, 7.5}},
		{Tick: 9, Action: link.AuditLink, Operator: "alex", Agent: "bbbb-2", Anchor: "HOME", World: "the_nether", Pos: [3]float64{0.5, 40.5, 1.5}},
		{Tick: 20, Action: link.AuditHighlight, Agent: "aaaa-1", Anchor: "JOB", Reason: "unresolvable"},
	}
	for _, e := range entries {
		if err := idx.WriteAudit(e); err != nil {
			t.Fatalf("write audit: %v", err)
		}
	}
	_ = idx.WriteScan(scan.Stats{Tick: 20, Processed: 2, Changed: 1, Triggered: 1})
	_ = idx.WriteScan(scan.Stats{Tick: 30, Processed: 2, Changed: 1, Suppressed: 1})
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM catalogs`).Scan(&n); err != nil || n != 4 {
		t.Fatalf("catalog rows=%d err=%v", n, err)
	}

	got, err := QueryAudits(ctx, db, AuditFilter{Agent: "aaaa", Limit: 10})
	if err != nil {
		t.Fatalf("query audits: %v", err)
	}
	if len(got) != 4 || got[0].Action != link.AuditHighlight || got[0].Reason != "unresolvable" {
		t.Fatalf("unexpected audits: %+v", got)
	}

	links, err := QueryLinks(ctx, db)
	if err != nil {
		t.Fatalf("query links: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("expected two current links, got %+v", links)
	}
	if links[0].Agent != "aaaa-1" || links[0].Operator != "alex" || links[0].Pos != [3]float64{7.5, 64.5, 7.5} {
		t.Fatalf("latest link not picked: %+v", links[0])
	}

	sum, err := QueryScanSummary(ctx, db)
	if err != nil {
		t.Fatalf("scan summary: %v", err)
	}
	if sum.Runs != 2 || sum.Triggered != 1 || sum.Suppressed != 1 || sum.LastTick != 30 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
}
