package app

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/qscasino/bolosspirita/pkg/config"
	"github.com/qscasino/bolosspirita/pkg/embedded"
)

func TestLoadLaneConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lane.yaml")
	if err := os.WriteFile(path, []byte("reward:\n  maxAttempts: 3\nthrow:\n  baseSpeed: 20\n"), 0644); err != nil {
		t.Fatal(err)
	}
	embedded.Init(nil, fstest.MapFS{
		"data/lane.yaml": {Data: []byte("profile: desktop\nthrow:\n  powerSpeed: 9\n")},
	})
	defer embedded.Reset()

	tests := []struct {
		name        string
		path        string
		profile     string
		wantProfile string
		check       func(*config.LaneConfig) bool
	}{
		{"explicit file", path, "", config.ProfileDesktop, func(c *config.LaneConfig) bool { return c.Throw.BaseSpeed == 20 }},
		{"explicit file wins over profile", path, config.ProfileMobile, config.ProfileDesktop, func(c *config.LaneConfig) bool { return c.Throw.BaseSpeed == 20 }},
		{"mobile profile", "", config.ProfileMobile, config.ProfileMobile, func(c *config.LaneConfig) bool { return c.Physics.MaxSubsteps == 2 }},
		{"embedded file", "", "", config.ProfileDesktop, func(c *config.LaneConfig) bool { return c.Throw.PowerSpeed == 9 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadLaneConfig(tt.path, tt.profile)
			if err != nil {
				t.Fatalf("LoadLaneConfig failed: %v", err)
			}
			if cfg.Profile != tt.wantProfile {
				t.Errorf("profile = %s, want %s", cfg.Profile, tt.wantProfile)
			}
			if !tt.check(cfg) {
				t.Errorf("config not applied: %+v", cfg.Throw)
			}
		})
	}
}

func TestLoadLaneConfig_Defaults(t *testing.T) {
	embedded.Reset()
	wd, _ := os.Getwd()
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	cfg, err := LoadLaneConfig("", "")
	if err != nil {
		t.Fatalf("LoadLaneConfig failed: %v", err)
	}
	if cfg.Throw.BaseSpeed != config.DefaultLaneConfig().Throw.BaseSpeed {
		t.Error("expected default config without any file")
	}
}

func TestLoadLaneConfig_MissingExplicitFile(t *testing.T) {
	if _, err := LoadLaneConfig(filepath.Join(t.TempDir(), "nope.yaml"), ""); err == nil {
		t.Error("expected an error for a missing explicit file")
	}
}
