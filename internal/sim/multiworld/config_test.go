package multiworld

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadShippedWorlds(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "..", "configs", "worlds.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DefaultWorldID != "overworld" {
		t.Fatalf("default world: %q", cfg.DefaultWorldID)
	}
	if len(cfg.Worlds) < 2 {
		t.Fatalf("expected at least two worlds, got %d", len(cfg.Worlds))
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"no worlds", "worlds: []\n", "no worlds"},
		{"dup world", "worlds:\n  - id: a\n  - id: a\n", "duplicate world id"},
		{"bad default", "default_world_id: b\nworlds:\n  - id: a\n", "default_world_id"},
		{"dup agent", "worlds:\n  - id: a\n    agents:\n      - id: x\n  - id: b\n    agents:\n      - id: x\n", "duplicate agent id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "worlds.yaml")
			if err := os.WriteFile(path, []byte(tc.yaml), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err=%v want %q", err, tc.want)
			}
			if !strings.HasPrefix(err.Error(), "worlds.yaml: ") {
				t.Fatalf("error not wrapped: %v", err)
			}
		})
	}
}
