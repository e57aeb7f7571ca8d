package selection

import (
	"testing"

	"villagerlink.ai/internal/sim/link"
)

func TestSelectOverwrites(t *testing.T) {
	tr := New()
	if _, ok := tr.Current("op1"); ok {
		t.Fatalf("fresh tracker should have no selection")
	}
	tr.Select("op1", "A")
	tr.Select("op1", "B")
	got, ok := tr.Current("op1")
	if !ok || got != link.AgentID("B") {
		t.Fatalf("expected B, got %q ok=%v", got, ok)
	}
	if tr.Len() != 1 {
		t.Fatalf("second select must overwrite, len=%d", tr.Len())
	}
}

func TestSelectionsArePerOperator(t *testing.T) {
	tr := New()
	tr.Select("op1", "A")
	tr.Select("op2", "B")
	tr.Clear("op1")
	if _, ok := tr.Current("op1"); ok {
		t.Fatalf("op1 should be cleared")
	}
	if got, _ := tr.Current("op2"); got != "B" {
		t.Fatalf("op2 selection lost: %q", got)
	}
	tr.Reset()
	if tr.Len() != 0 {
		t.Fatalf("reset left %d selections", tr.Len())
	}
}
