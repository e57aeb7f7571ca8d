package tuning

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"villagerlink.ai/internal/sim/catalogs"
)

type Tuning struct {
	TickRateHz int `yaml:"tick_rate_hz" json:"tick_rate_hz"`

	Scan      ScanConfig     `yaml:"scan" json:"scan"`
	Cooldowns CooldownConfig `yaml:"cooldowns" json:"cooldowns"`
	Effects   EffectsConfig  `yaml:"effects" json:"effects"`
	Feedback  FeedbackConfig `yaml:"feedback" json:"feedback"`
	Tool      ToolConfig     `yaml:"tool" json:"tool"`

	Debug bool `yaml:"debug" json:"debug"`
}

// ScanConfig.MaxAgentsPerRun of 0 means no cap.
type ScanConfig struct {
	IntervalTicks    int  `yaml:"interval_ticks" json:"interval_ticks"`
	MaxAgentsPerRun  int  `yaml:"max_agents_per_run" json:"max_agents_per_run"`
	SilentFirstSight bool `yaml:"silent_first_sight" json:"silent_first_sight"`
}

type CooldownConfig struct {
	PerAgentTicks int `yaml:"per_agent_ticks" json:"per_agent_ticks"`
}

type EffectsConfig struct {
	Agent  PulseConfig `yaml:"agent" json:"agent"`
	Anchor PulseConfig `yaml:"anchor" json:"anchor"`
}

type FeedbackConfig struct {
	Select BurstConfig `yaml:"select" json:"select"`
	Link   BurstConfig `yaml:"link" json:"link"`
}

// BurstConfig is a single particle burst plus an optional sound.
type BurstConfig struct {
	Particle    string     `yaml:"particle" json:"particle"`
	Count       int        `yaml:"count" json:"count"`
	Spread      [3]float64 `yaml:"spread" json:"spread"`
	Extra       float64    `yaml:"extra" json:"extra"`
	YOffset     float64    `yaml:"y_offset" json:"y_offset"`
	Sound       string     `yaml:"sound" json:"sound"`
	SoundVolume float64    `yaml:"sound_volume" json:"sound_volume"`
	SoundPitch  float64    `yaml:"sound_pitch" json:"sound_pitch"`
}

// PulseConfig repeats a burst every EveryTicks for DurationTicks.
type PulseConfig struct {
	BurstConfig   `yaml:",inline"`
	DurationTicks int `yaml:"duration_ticks" json:"duration_ticks"`
	EveryTicks    int `yaml:"every_ticks" json:"every_ticks"`
}

type ToolConfig struct {
	Item  string `yaml:"item" json:"item"`
	Label string `yaml:"label" json:"label"`
}

func Defaults() Tuning {
	return Tuning{
		TickRateHz: 20,
		Scan: ScanConfig{
			IntervalTicks:   10,
			MaxAgentsPerRun: 200,
		},
		Cooldowns: CooldownConfig{PerAgentTicks: 40},
		Effects: EffectsConfig{
			Agent: PulseConfig{
				BurstConfig: BurstConfig{
					Particle:    "HAPPY_VILLAGER",
					Count:       30,
					Spread:      [3]float64{0.4, 0.7, 0.4},
					Extra:       0.1,
					YOffset:     1.0,
					Sound:       "ENTITY_VILLAGER_YES",
					SoundVolume: 0.9,
					SoundPitch:  1.2,
				},
				DurationTicks: 60,
				EveryTicks:    5,
			},
			Anchor: PulseConfig{
				BurstConfig: BurstConfig{
					Particle:    "ENCHANT",
					Count:       40,
					Spread:      [3]float64{0.3, 0.5, 0.3},
					Extra:       0.0,
					Sound:       "BLOCK_BEACON_ACTIVATE",
					SoundVolume: 0.6,
					SoundPitch:  1.0,
				},
				DurationTicks: 60,
				EveryTicks:    5,
			},
		},
		Feedback: FeedbackConfig{
			Select: BurstConfig{
				Particle:    "HAPPY_VILLAGER",
				Count:       25,
				Spread:      [3]float64{0.3, 0.6, 0.3},
				Extra:       0.05,
				YOffset:     1.3,
				Sound:       "ENTITY_VILLAGER_YES",
				SoundVolume: 0.9,
				SoundPitch:  1.2,
			},
			Link: BurstConfig{
				Particle:    "ENCHANT",
				Count:       40,
				Spread:      [3]float64{0.3, 0.5, 0.3},
				Sound:       "BLOCK_BEACON_ACTIVATE",
				SoundVolume: 0.7,
				SoundPitch:  1.0,
			},
		},
		Tool: ToolConfig{Item: "STICK", Label: "Villager Linker"},
	}
}

// Load reads a tuning file on top of Defaults. Missing keys keep their default.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("linker.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("linker.yaml: %w", err)
	}
	return t, nil
}

// Normalize replaces unknown particle/sound names with the catalog fallbacks
// and clamps non-positive periods. It returns one warning per substitution.
func (t *Tuning) Normalize(cats *catalogs.Catalogs) []string {
	var warns []string
	if t.TickRateHz <= 0 {
		t.TickRateHz = 20
	}
	if t.Scan.IntervalTicks <= 0 {
		t.Scan.IntervalTicks = 1
	}
	if t.Cooldowns.PerAgentTicks < 0 {
		t.Cooldowns.PerAgentTicks = 0
	}
	if strings.TrimSpace(t.Tool.Item) == "" {
		t.Tool.Item = "STICK"
	}
	if strings.TrimSpace(t.Tool.Label) == "" {
		t.Tool.Label = "Villager Linker"
	}
	t.Tool.Item = strings.ToUpper(strings.TrimSpace(t.Tool.Item))

	fixPulse := func(p *PulseConfig) {
		if p.EveryTicks <= 0 {
			p.EveryTicks = 1
		}
		if p.DurationTicks < 0 {
			p.DurationTicks = 0
		}
	}
	fixPulse(&t.Effects.Agent)
	fixPulse(&t.Effects.Anchor)

	bursts := []struct {
		name string
		b    *BurstConfig
	}{
		{"effects.agent", &t.Effects.Agent.BurstConfig},
		{"effects.anchor", &t.Effects.Anchor.BurstConfig},
		{"feedback.select", &t.Feedback.Select},
		{"feedback.link", &t.Feedback.Link},
	}
	for _, it := range bursts {
		if cats == nil {
			break
		}
		if name, ok := cats.Particles.Resolve(it.b.Particle); !ok {
			warns = append(warns, fmt.Sprintf("%s.particle: unknown %q, using %s", it.name, it.b.Particle, name))
			it.b.Particle = name
		} else {
			it.b.Particle = name
		}
		if strings.TrimSpace(it.b.Sound) == "" {
			continue
		}
		if name, ok := cats.Sounds.Resolve(it.b.Sound); !ok {
			warns = append(warns, fmt.Sprintf("%s.sound: unknown %q, using %s", it.name, it.b.Sound, name))
			it.b.Sound = name
		} else {
			it.b.Sound = name
		}
	}
	return warns
}

func (t Tuning) Validate() error {
	if t.TickRateHz < 0 || t.TickRateHz > 1000 {
		return fmt.Errorf("tick_rate_hz must be in [0, 1000]")
	}
	if t.Scan.MaxAgentsPerRun < 0 {
		return fmt.Errorf("scan.max_agents_per_run must be >= 0")
	}
	for name, p := range map[string]PulseConfig{"effects.agent": t.Effects.Agent, "effects.anchor": t.Effects.Anchor} {
		if p.Count < 0 {
			return fmt.Errorf("%s.count must be >= 0", name)
		}
		if p.SoundVolume < 0 {
			return fmt.Errorf("%s.sound_volume must be >= 0", name)
		}
	}
	return nil
}
