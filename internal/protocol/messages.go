package protocol

import "villagerlink.ai/internal/sim/link"

// Operator-facing action bar text.
const (
	MsgNoSelection = "§eNo agent selected. Sneak-right-click an agent first."
	MsgStale       = "§cSelected agent is gone."
)

func SelectedText(agent link.AgentID) string {
	return "§aSelected agent §f" + agent.Short()
}

func LinkedText(kind link.Kind, agent link.AgentID) string {
	color := "§b"
	if kind == link.Job {
		color = "§d"
	}
	return "§a" + color + kind.String() + " linked §7for §f" + agent.Short()
}
