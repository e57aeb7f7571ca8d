// Package link holds the contracts shared by the selection protocol, the change
// scanner and the engine that hosts them.
package link

type AgentID string

type OperatorID string

// Short returns the first 8 characters of the id, as shown to operators.
func (id AgentID) Short() string {
	s := string(id)
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

type Kind int

const (
	Home Kind = iota + 1
	Job
)

// Kinds lists every anchor slot in scan order.
var Kinds = [...]Kind{Home, Job}

func (k Kind) String() string {
	switch k {
	case Home:
		return "HOME"
	case Job:
		return "JOB"
	default:
		return "UNKNOWN"
	}
}

// AgentHandle is a live reference to an agent owned by the engine.
// Valid reports false once the agent has been removed or unloaded.
type AgentHandle interface {
	ID() AgentID
	Valid() bool
	Location() Point
}

// AgentQuery is the read-only view of every agent across every world.
type AgentQuery interface {
	FindAgent(id AgentID) (AgentHandle, bool)
	// EachAgent visits agents in a stable order until fn returns false.
	EachAgent(fn func(AgentHandle) bool)
	// AgentCount and AgentAt index the EachAgent order.
	AgentCount() int
	AgentAt(i int) (AgentHandle, bool)
}

// Store is the per-agent anchor memory. A zero Value means the slot is empty.
type Store interface {
	Anchor(agent AgentID, kind Kind) Value
	SetAnchor(agent AgentID, kind Kind, v Value)
}

type Vec3 struct{ X, Y, Z float64 }

// Effects plays particles and sounds in the world.
type Effects interface {
	SpawnParticle(at Point, particle string, count int, spread Vec3, extra float64)
	PlaySound(at Point, sound string, volume, pitch float64)
}

// Messenger delivers short transient text to an operator.
type Messenger interface {
	SendActionBar(op OperatorID, text string)
}
