package protocol

import (
	"strings"
	"testing"

	"villagerlink.ai/internal/sim/catalogs"
	"villagerlink.ai/internal/sim/link"
)

func TestIsKnownCode(t *testing.T) {
	cases := []string{
		"",
		OkSelected,
		OkLinkedHome,
		OkLinkedJob,
		ErrNoSelection,
		ErrStale,
		ErrNotBindable,
		ErrDuplicate,
		ErrDenied,
	}
	for _, c := range cases {
		if !IsKnownCode(c) {
			t.Fatalf("expected known code: %q", c)
		}
	}
	if IsKnownCode("E_NOT_DEFINED") {
		t.Fatalf("expected unknown code rejected")
	}
}

func TestFacingOffset(t *testing.T) {
	cases := map[Facing][2]int{
		North: {0, -1},
		South: {0, 1},
		East:  {1, 0},
		West:  {-1, 0},
		"UP":  {0, 0},
	}
	for f, want := range cases {
		dx, dz := f.Offset()
		if dx != want[0] || dz != want[1] {
			t.Fatalf("%s: got (%d,%d) want %v", f, dx, dz, want)
		}
	}
}

func TestBlockCenter(t *testing.T) {
	got := BlockPos{World: "w", X: -1, Y: 64, Z: 2}.Center()
	if got != (link.Point{World: "w", X: -0.5, Y: 64.5, Z: 2.5}) {
		t.Fatalf("center: %+v", got)
	}
}

func TestEventsCarryOperator(t *testing.T) {
	evs := []Event{
		EntityInteract{Operator: "op"},
		BlockInteract{Operator: "op"},
		BedEnter{Operator: "op", Held: Held{Main: catalogs.Item{Type: "STICK"}}},
	}
	want := []string{TypeEntityInteract, TypeBlockInteract, TypeBedEnter}
	for i, ev := range evs {
		if ev.OperatorID() != "op" || ev.EventType() != want[i] {
			t.Fatalf("event %d: %s %s", i, ev.OperatorID(), ev.EventType())
		}
	}
}

func TestOperatorText(t *testing.T) {
	id := link.AgentID("1234567890abcdef")
	if got := catalogs.StripFormatting(SelectedText(id)); got != "Selected agent 12345678" {
		t.Fatalf("selected text: %q", got)
	}
	if got := catalogs.StripFormatting(LinkedText(link.Job, id)); !strings.HasPrefix(got, "JOB linked") {
		t.Fatalf("linked text: %q", got)
	}
}
