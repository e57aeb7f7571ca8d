package assign

import (
	"strconv"

	"villagerlink.ai/internal/protocol"
	"villagerlink.ai/internal/sim/link"
)

// BedHead returns the center of the bed's head cell. A click on the foot cell
// steps one cell along the bed's facing first.
func BedHead(b protocol.Block) link.Point {
	pos := b.Pos
	if b.Bed != nil && b.Bed.Part != protocol.BedHead {
		dx, dz := b.Bed.Facing.Offset()
		pos.X += dx
		pos.Z += dz
	}
	return pos.Center()
}

func blockKey(p protocol.BlockPos) string {
	return p.World + ":" + strconv.Itoa(p.X) + "," + strconv.Itoa(p.Y) + "," + strconv.Itoa(p.Z)
}
