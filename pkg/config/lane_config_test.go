package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultLaneConfig_Valid(t *testing.T) {
	for _, cfg := range []*LaneConfig{DefaultLaneConfig(), MobileLaneConfig()} {
		if err := cfg.Validate(); err != nil {
			t.Errorf("profile %s: unexpected validation error: %v", cfg.Profile, err)
		}
	}
}

func TestDefaultLaneConfig_Values(t *testing.T) {
	cfg := DefaultLaneConfig()

	if len(cfg.Lane.PinPositions) != PinCount {
		t.Fatalf("expected %d pins, got %d", PinCount, len(cfg.Lane.PinPositions))
	}
	// 头瓶在最前方，最后一排四个瓶
	if cfg.Lane.PinPositions[0][2] != -15.0 {
		t.Errorf("expected head pin at z=-15, got %v", cfg.Lane.PinPositions[0][2])
	}
	for i := 6; i < 10; i++ {
		if cfg.Lane.PinPositions[i][2] != -16.26 {
			t.Errorf("pin %d: expected back row z=-16.26, got %v", i, cfg.Lane.PinPositions[i][2])
		}
	}
	if got := cfg.Reward.BonusTiers; len(got) != 3 || got[0] != 200 || got[1] != 150 || got[2] != 100 {
		t.Errorf("unexpected bonus tiers: %v", got)
	}
	if cfg.Reward.MaxAttempts != 3 {
		t.Errorf("expected 3 attempts, got %d", cfg.Reward.MaxAttempts)
	}
	if cfg.Clamp.VelZ.Max != 1.6 {
		t.Errorf("expected toward-bowler clamp 1.6, got %v", cfg.Clamp.VelZ.Max)
	}
}

func TestMobileLaneConfig(t *testing.T) {
	cfg := MobileLaneConfig()
	if cfg.Physics.FixedDt != 1.0/40.0 {
		t.Errorf("expected mobile fixedDt 1/40, got %v", cfg.Physics.FixedDt)
	}
	if cfg.Physics.MaxSubsteps != 2 || cfg.Physics.SolverIterations != 10 {
		t.Errorf("unexpected mobile solver settings: substeps=%d iterations=%d",
			cfg.Physics.MaxSubsteps, cfg.Physics.SolverIterations)
	}
}

func TestLoadLaneConfig(t *testing.T) {
	tests := []struct {
		name        string
		yamlContent string
		wantErr     bool
		errContains string
		validate    func(*testing.T, *LaneConfig)
	}{
		{
			name: "partial override keeps defaults",
			yamlContent: `
reward:
  maxAttempts: 5
knock:
  tilt: 0.6
`,
			validate: func(t *testing.T, cfg *LaneConfig) {
				if cfg.Reward.MaxAttempts != 5 {
					t.Errorf("expected maxAttempts = 5, got %d", cfg.Reward.MaxAttempts)
				}
				if cfg.Knock.Tilt != 0.6 {
					t.Errorf("expected tilt = 0.6, got %v", cfg.Knock.Tilt)
				}
				if cfg.Knock.Height != 0.18 {
					t.Errorf("expected default height 0.18, got %v", cfg.Knock.Height)
				}
				if len(cfg.Reward.BonusTiers) != 3 {
					t.Errorf("expected default bonus tiers, got %v", cfg.Reward.BonusTiers)
				}
			},
		},
		{
			name: "mobile profile",
			yamlContent: `
profile: mobile
`,
			validate: func(t *testing.T, cfg *LaneConfig) {
				if cfg.Physics.MaxSubsteps != 2 {
					t.Errorf("expected mobile substeps = 2, got %d", cfg.Physics.MaxSubsteps)
				}
			},
		},
		{
			name: "ball start as sequence",
			yamlContent: `
lane:
  ballStart: [0.1, 0.25, 6.5]
`,
			validate: func(t *testing.T, cfg *LaneConfig) {
				if cfg.Lane.BallStart != (Vec3{0.1, 0.25, 6.5}) {
					t.Errorf("unexpected ballStart: %v", cfg.Lane.BallStart)
				}
			},
		},
		{
			name: "unknown profile",
			yamlContent: `
profile: console
`,
			wantErr:     true,
			errContains: "unknown lane profile",
		},
		{
			name: "wrong pin count",
			yamlContent: `
lane:
  pinPositions:
    - [0, 0.41, -15]
`,
			wantErr:     true,
			errContains: "pinPositions must list 10 pins",
		},
		{
			name: "zero attempts",
			yamlContent: `
reward:
  maxAttempts: 0
`,
			wantErr:     true,
			errContains: "maxAttempts must be >= 1",
		},
		{
			name: "inverted clamp",
			yamlContent: `
clamp:
  velY:
    min: 5
    max: -5
`,
			wantErr:     true,
			errContains: "clamp.velY invalid",
		},
		{
			name: "empty bonus tiers",
			yamlContent: `
reward:
  bonusTiers: []
`,
			wantErr:     true,
			errContains: "bonusTiers must not be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			tmpFile := filepath.Join(tmpDir, "lane.yaml")
			if err := os.WriteFile(tmpFile, []byte(tt.yamlContent), 0644); err != nil {
				t.Fatalf("failed to create temp file: %v", err)
			}

			cfg, err := LoadLaneConfig(tmpFile)

			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error containing %q, got nil", tt.errContains)
				} else if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("expected error containing %q, got %q", tt.errContains, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestLoadLaneConfig_FileNotFound(t *testing.T) {
	_, err := LoadLaneConfig("/nonexistent/lane.yaml")
	if err == nil {
		t.Fatal("expected error for nonexistent file")
	}
	if !strings.Contains(err.Error(), "failed to read lane config") {
		t.Errorf("expected error about reading file, got: %v", err)
	}
}

func TestLoadLaneConfig_InvalidYAML(t *testing.T) {
	_, err := ParseLaneConfig([]byte("invalid: yaml: content:"))
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "failed to parse lane config") {
		t.Errorf("expected YAML parse error, got: %v", err)
	}
}
