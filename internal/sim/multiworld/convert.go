package multiworld

import (
	"villagerlink.ai/internal/sim/catalogs"
	"villagerlink.ai/internal/sim/link"
	"villagerlink.ai/internal/sim/link/assign"
	"villagerlink.ai/internal/sim/link/effects"
	"villagerlink.ai/internal/sim/link/scan"
	"villagerlink.ai/internal/sim/tuning"
)

func burstFrom(b tuning.BurstConfig) effects.Burst {
	return effects.Burst{
		Particle: b.Particle,
		Count:    b.Count,
		Spread:   link.Vec3{X: b.Spread[0], Y: b.Spread[1], Z: b.Spread[2]},
		Extra:    b.Extra,
		YOffset:  b.YOffset,
		Sound:    b.Sound,
		Volume:   b.SoundVolume,
		Pitch:    b.SoundPitch,
	}
}

func pulseFrom(p tuning.PulseConfig) effects.Pulse {
	return effects.Pulse{
		Burst:         burstFrom(p.BurstConfig),
		EveryTicks:    p.EveryTicks,
		DurationTicks: p.DurationTicks,
	}
}

func effectsConfig(t tuning.Tuning) effects.Config {
	return effects.Config{Agent: pulseFrom(t.Effects.Agent), Anchor: pulseFrom(t.Effects.Anchor)}
}

func assignConfig(t tuning.Tuning) assign.Config {
	return assign.Config{
		Tool: catalogs.ToolSpec{Item: t.Tool.Item, Label: t.Tool.Label},
		Feedback: assign.Feedback{
			Select: burstFrom(t.Feedback.Select),
			Link:   burstFrom(t.Feedback.Link),
		},
	}
}

func scanConfig(t tuning.Tuning) scan.Config {
	return scan.Config{
		MaxAgentsPerRun:  t.Scan.MaxAgentsPerRun,
		SilentFirstSight: t.Scan.SilentFirstSight,
		Debug:            t.Debug,
	}
}

func scanInterval(t tuning.Tuning) uint64 {
	if t.Scan.IntervalTicks <= 0 {
		return 1
	}
	return uint64(t.Scan.IntervalTicks)
}

func cooldownTicks(t tuning.Tuning) uint64 {
	if t.Cooldowns.PerAgentTicks <= 0 {
		return 0
	}
	return uint64(t.Cooldowns.PerAgentTicks)
}
