package multiworld

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DefaultWorldID string      `yaml:"default_world_id"`
	Worlds         []WorldSpec `yaml:"worlds"`
}

type WorldSpec struct {
	ID     string      `yaml:"id"`
	Agents []AgentSpec `yaml:"agents,omitempty"`
}

// AgentSpec seeds one agent at startup. An empty ID gets a fresh UUID.
// Home and Job hold anchor descriptors in their string form.
type AgentSpec struct {
	ID   string     `yaml:"id,omitempty"`
	Pos  [3]float64 `yaml:"pos"`
	Home string     `yaml:"home,omitempty"`
	Job  string     `yaml:"job,omitempty"`
}

func Load(path string) (Config, error) {
	cfg := defaults()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	cfg = Config{}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("worlds.yaml: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("worlds.yaml: %w", err)
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		DefaultWorldID: "overworld",
		Worlds: []WorldSpec{
			{ID: "overworld"},
			{ID: "the_nether"},
		},
	}
}

func (c *Config) Normalize() {
	if c == nil {
		return
	}
	for i := range c.Worlds {
		c.Worlds[i].ID = strings.TrimSpace(c.Worlds[i].ID)
		for j := range c.Worlds[i].Agents {
			a := &c.Worlds[i].Agents[j]
			a.ID = strings.TrimSpace(a.ID)
			a.Home = strings.TrimSpace(a.Home)
			a.Job = strings.TrimSpace(a.Job)
		}
	}
	c.DefaultWorldID = strings.TrimSpace(c.DefaultWorldID)
	if c.DefaultWorldID == "" && len(c.Worlds) > 0 {
		c.DefaultWorldID = c.Worlds[0].ID
	}
}

func (c Config) Validate() error {
	if len(c.Worlds) == 0 {
		return fmt.Errorf("no worlds configured")
	}
	seen := map[string]bool{}
	agents := map[string]bool{}
	for _, w := range c.Worlds {
		if w.ID == "" {
			return fmt.Errorf("world id is required")
		}
		if seen[w.ID] {
			return fmt.Errorf("duplicate world id: %s", w.ID)
		}
		seen[w.ID] = true
		for _, a := range w.Agents {
			if a.ID == "" {
				continue
			}
			if agents[a.ID] {
				return fmt.Errorf("duplicate agent id: %s", a.ID)
			}
			agents[a.ID] = true
		}
	}
	if !seen[c.DefaultWorldID] {
		return fmt.Errorf("default_world_id not found: %s", c.DefaultWorldID)
	}
	return nil
}

// WorldIDs returns the configured ids in scan order.
func (c Config) WorldIDs() []string {
	out := make([]string, 0, len(c.Worlds))
	for _, w := range c.Worlds {
		out = append(out, w.ID)
	}
	sort.Strings(out)
	return out
}
