package link

import "testing"

func TestValueEquality(t *testing.T) {
	a := At(Point{World: "overworld", X: 1.5, Y: 64.5, Z: -2.5})
	b := At(Point{World: "overworld", X: 1.5, Y: 64.5, Z: -2.5})
	if a != b {
		t.Fatalf("structurally equal points must compare equal")
	}
	if a == Absent || !a.Present() {
		t.Fatalf("point value must be present")
	}
	if Absent.Present() {
		t.Fatalf("absent value reported present")
	}
	if Descriptor("  ") != Absent {
		t.Fatalf("blank descriptor should collapse to absent")
	}
	if Descriptor("x") == At(Point{}) {
		t.Fatalf("descriptor and point must differ")
	}
}

func TestResolve(t *testing.T) {
	cases := []struct {
		name  string
		v     Value
		want  Point
		valid bool
	}{
		{"point", At(Point{World: "w", X: 1, Y: 2, Z: 3}), Point{World: "w", X: 1, Y: 2, Z: 3}, true},
		{"global_pos", Descriptor("GlobalPos{dimension=minecraft:the_nether, pos=(10, 64, -3)}"), Point{World: "fallback", X: 10.5, Y: 64.5, Z: -2.5}, true},
		{"bare_dimension", Descriptor("GlobalPos{dimension=overworld, pos=(0, 0, 0)}"), Point{World: "fallback", X: 0.5, Y: 0.5, Z: 0.5}, true},
		{"bare_triple", Descriptor("BlockPos(4,5,6)"), Point{World: "fallback", X: 4.5, Y: 5.5, Z: 6.5}, true},
		{"too_few", Descriptor("pos=(1, 2)"), Point{}, false},
		{"garbage", Descriptor("pos=(a, b, c)"), Point{}, false},
		{"no_parens", Descriptor("home somewhere"), Point{}, false},
		{"absent", Absent, Point{}, false},
	}
	for _, tc := range cases {
		got, ok := Resolve(tc.v, "fallback")
		if ok != tc.valid {
			t.Fatalf("%s: ok=%v want %v", tc.name, ok, tc.valid)
		}
		if ok && got != tc.want {
			t.Fatalf("%s: got %+v want %+v", tc.name, got, tc.want)
		}
	}
}

func TestPointCenter(t *testing.T) {
	got := Point{World: "w", X: -0.2, Y: 64.9, Z: 3}.Center()
	want := Point{World: "w", X: -0.5, Y: 64.5, Z: 3.5}
	if got != want {
		t.Fatalf("center: got %+v want %+v", got, want)
	}
}

func TestAgentIDShort(t *testing.T) {
	if got := AgentID("0123456789ab").Short(); got != "01234567" {
		t.Fatalf("unexpected short id %q", got)
	}
	if got := AgentID("A1").Short(); got != "A1" {
		t.Fatalf("unexpected short id %q", got)
	}
}

type recordingAudit struct{ n int }

func (r *recordingAudit) WriteAudit(AuditEntry) error { r.n++; return nil }

func TestMultiAuditSkipsNil(t *testing.T) {
	a, b := &recordingAudit{}, &recordingAudit{}
	m := MultiAudit{a, nil, b}
	if err := m.WriteAudit(AuditEntry{Action: AuditSelect}); err != nil {
		t.Fatalf("WriteAudit: %v", err)
	}
	if a.n != 1 || b.n != 1 {
		t.Fatalf("fan-out mismatch a=%d b=%d", a.n, b.n)
	}
}
