package link

import (
	"math"
	"strconv"
	"strings"
)

type Point struct {
	World   string
	X, Y, Z float64
}

func (p Point) Add(dx, dy, dz float64) Point {
	return Point{World: p.World, X: p.X + dx, Y: p.Y + dy, Z: p.Z + dz}
}

// Center snaps the point to the middle of the block cell containing it.
func (p Point) Center() Point {
	return Point{
		World: p.World,
		X:     math.Floor(p.X) + 0.5,
		Y:     math.Floor(p.Y) + 0.5,
		Z:     math.Floor(p.Z) + 0.5,
	}
}

type valueKind uint8

const (
	valueAbsent valueKind = iota
	valuePoint
	valueDescriptor
)

// Value is an anchor slot as read from the store. It is comparable with ==,
// and the zero Value is the absent anchor.
type Value struct {
	kind  valueKind
	point Point
	desc  string
}

var Absent = Value{}

func At(p Point) Value { return Value{kind: valuePoint, point: p} }

// Descriptor wraps an opaque engine representation (for example
// "GlobalPos{dimension=minecraft:overworld, pos=(10, 64, -3)}").
func Descriptor(s string) Value {
	if strings.TrimSpace(s) == "" {
		return Absent
	}
	return Value{kind: valueDescriptor, desc: s}
}

func (v Value) Present() bool { return v.kind != valueAbsent }

func (v Value) String() string {
	switch v.kind {
	case valuePoint:
		return "(" + v.point.World + " " + ftoa(v.point.X) + ", " + ftoa(v.point.Y) + ", " + ftoa(v.point.Z) + ")"
	case valueDescriptor:
		return v.desc
	default:
		return "empty"
	}
}

// Resolve converts a stored anchor into a concrete point. Descriptors are parsed
// from their string form: the first "(x, y, z)" group is taken as block
// coordinates and centered. Any "dimension=" text is ignored and the point is
// placed in agentWorld, the world of the agent that owns the anchor.
func Resolve(v Value, agentWorld string) (Point, bool) {
	switch v.kind {
	case valuePoint:
		return v.point, true
	case valueDescriptor:
		return parseDescriptor(v.desc, agentWorld)
	default:
		return Point{}, false
	}
}

func parseDescriptor(s, world string) (Point, bool) {
	i := strings.IndexByte(s, '(')
	if i < 0 {
		return Point{}, false
	}
	j := strings.IndexByte(s[i:], ')')
	if j < 0 {
		return Point{}, false
	}
	parts := strings.Split(s[i+1:i+j], ",")
	if len(parts) < 3 {
		return Point{}, false
	}
	var xyz [3]float64
	for n := 0; n < 3; n++ {
		f, err := strconv.ParseFloat(strings.TrimSpace(parts[n]), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return Point{}, false
		}
		xyz[n] = f
	}
	return Point{World: world, X: xyz[0] + 0.5, Y: xyz[1] + 0.5, Z: xyz[2] + 0.5}, true
}

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
