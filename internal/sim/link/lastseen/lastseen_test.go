package lastseen

import (
	"testing"

	"villagerlink.ai/internal/sim/link"
)

func TestObserveByValue(t *testing.T) {
	c := New()
	p := link.At(link.Point{World: "w", X: 1.5, Y: 2.5, Z: 3.5})

	changed, first := c.Observe("A", link.Home, p)
	if !changed || !first {
		t.Fatalf("first observation: changed=%v first=%v", changed, first)
	}
	same := link.At(link.Point{World: "w", X: 1.5, Y: 2.5, Z: 3.5})
	if changed, _ := c.Observe("A", link.Home, same); changed {
		t.Fatalf("structurally equal value must not be a change")
	}
	if changed, first := c.Observe("A", link.Home, link.Absent); !changed || first {
		t.Fatalf("clear: changed=%v first=%v", changed, first)
	}
	if v, ok := c.Get("A", link.Home); !ok || v.Present() {
		t.Fatalf("cleared slot should be stored as absent, got %v ok=%v", v, ok)
	}
	if changed, _ := c.Observe("A", link.Home, link.Absent); changed {
		t.Fatalf("absent vs absent is unchanged")
	}
}

func TestSlotsAreIndependent(t *testing.T) {
	c := New()
	c.Observe("A", link.Home, link.Descriptor("pos=(1,2,3)"))
	if _, ok := c.Get("A", link.Job); ok {
		t.Fatalf("JOB slot should be unseen")
	}
	c.Observe("B", link.Job, link.Absent)
	c.Retain(func(id link.AgentID) bool { return id == "B" })
	if c.Len() != 1 {
		t.Fatalf("retain kept %d slots", c.Len())
	}
	c.Reset()
	if c.Len() != 0 {
		t.Fatalf("reset left %d", c.Len())
	}
}
