// Package protocol defines the operator input events consumed by the linker
// and the outcome reported back to the engine for each of them.
package protocol

import (
	"villagerlink.ai/internal/sim/catalogs"
	"villagerlink.ai/internal/sim/link"
)

// Event types.
const (
	TypeEntityInteract = "ENTITY_INTERACT"
	TypeBlockInteract  = "BLOCK_INTERACT"
	TypeBedEnter       = "BED_ENTER"
)

const ActionRightClickBlock = "RIGHT_CLICK_BLOCK"

type Hand int

const (
	HandMain Hand = iota
	HandOff
)

func (h Hand) String() string {
	if h == HandOff {
		return "OFF_HAND"
	}
	return "MAIN_HAND"
}

// Channel names the engine hook an entity interaction arrived through. Some
// engine builds report the same click on both.
type Channel string

const (
	ChannelEntity   Channel = "ENTITY"
	ChannelAtEntity Channel = "AT_ENTITY"
)

type Held struct {
	Main catalogs.Item `json:"main"`
	Off  catalogs.Item `json:"off"`
}

type Event interface {
	EventType() string
	OperatorID() link.OperatorID
}

type EntityInteract struct {
	Operator link.OperatorID `json:"operator"`
	Agent    link.AgentID    `json:"agent"`
	Hand     Hand            `json:"hand"`
	Channel  Channel         `json:"channel"`
	Sneaking bool            `json:"sneaking"`
	Held     Held            `json:"held"`
}

type BlockInteract struct {
	Operator link.OperatorID `json:"operator"`
	Action   string          `json:"action"`
	Hand     Hand            `json:"hand"`
	Block    Block           `json:"block"`
	Held     Held            `json:"held"`
}

type BedEnter struct {
	Operator link.OperatorID `json:"operator"`
	Block    Block           `json:"block"`
	Held     Held            `json:"held"`
}

func (EntityInteract) EventType() string { return TypeEntityInteract }
func (BlockInteract) EventType() string  { return TypeBlockInteract }
func (BedEnter) EventType() string       { return TypeBedEnter }

func (e EntityInteract) OperatorID() link.OperatorID { return e.Operator }
func (e BlockInteract) OperatorID() link.OperatorID  { return e.Operator }
func (e BedEnter) OperatorID() link.OperatorID       { return e.Operator }

type BlockPos struct {
	World   string
	X, Y, Z int
}

func (p BlockPos) Center() link.Point {
	return link.Point{World: p.World, X: float64(p.X) + 0.5, Y: float64(p.Y) + 0.5, Z: float64(p.Z) + 0.5}
}

type Block struct {
	Pos  BlockPos `json:"pos"`
	Type string   `json:"type"`
	// Bed is set for two-cell bed blocks.
	Bed *BedData `json:"bed,omitempty"`
}

type BedPart string

const (
	BedHead BedPart = "HEAD"
	BedFoot BedPart = "FOOT"
)

// Facing points from a bed's foot cell to its head cell.
type Facing string

const (
	North Facing = "NORTH"
	South Facing = "SOUTH"
	East  Facing = "EAST"
	West  Facing = "WEST"
)

// Offset returns the x/z step one cell along the facing.
func (f Facing) Offset() (dx, dz int) {
	switch f {
	case North:
		return 0, -1
	case South:
		return 0, 1
	case East:
		return 1, 0
	case West:
		return -1, 0
	default:
		return 0, 0
	}
}

type BedData struct {
	Part   BedPart `json:"part"`
	Facing Facing  `json:"facing"`
}

// Outcome tells the engine what to do with the original interaction.
type Outcome struct {
	// Suppress cancels the event outright.
	Suppress bool
	// DenyBlock and DenyItem deny the clicked block's and the held item's default use.
	DenyBlock bool
	DenyItem  bool
	Code      string
}

// Suppressed is the outcome of every interaction the linker consumes.
func Suppressed(code string) Outcome {
	return Outcome{Suppress: true, DenyBlock: true, DenyItem: true, Code: code}
}

// Ignored lets the engine process the interaction normally.
var Ignored = Outcome{}
