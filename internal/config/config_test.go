package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Layout.Gap != 3 {
		t.Errorf("default gap = %d, want 3", cfg.Layout.Gap)
	}
	if cfg.Connector.Duration != 600*time.Millisecond {
		t.Errorf("default duration = %v, want %v", cfg.Connector.Duration, 600*time.Millisecond)
	}
	if cfg.Content.Tree != "" {
		t.Errorf("default tree = %q, want embedded (empty)", cfg.Content.Tree)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_ValidFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
content:
  tree: trees/hosting.yaml
layout:
  gap: 2
  settle_delay: 40ms
connector:
  duration: 1s
effects:
  celebrate: false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Content.Tree != "trees/hosting.yaml" {
		t.Errorf("tree = %q, want %q", cfg.Content.Tree, "trees/hosting.yaml")
	}
	if cfg.Layout.Gap != 2 {
		t.Errorf("gap = %d, want 2", cfg.Layout.Gap)
	}
	if cfg.Layout.SettleDelay != 40*time.Millisecond {
		t.Errorf("settle delay = %v, want 40ms", cfg.Layout.SettleDelay)
	}
	if cfg.Connector.Duration != time.Second {
		t.Errorf("duration = %v, want 1s", cfg.Connector.Duration)
	}
	if cfg.Effects.Celebrate {
		t.Error("celebrate should be disabled")
	}
	// Unset fields keep defaults.
	if cfg.Connector.FrameInterval != 33*time.Millisecond {
		t.Errorf("frame interval = %v, want default", cfg.Connector.FrameInterval)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/branchwalk.yaml")
	if err != nil {
		t.Fatalf("Load() should return defaults for missing file, got error: %v", err)
	}
	if want := DefaultConfig(); *cfg != want {
		t.Errorf("Load(missing) = %+v, want defaults %+v", *cfg, want)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "{{invalid yaml")
	if _, err := Load(path); err == nil {
		t.Fatal("Load(invalid YAML) should return error")
	}
}

func TestLoad_UnknownField(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "layout:\n  gapp: 2\n")
	if _, err := Load(path); err == nil {
		t.Fatal("Load() should return error for unknown field 'gapp'")
	}
}

func TestLoad_EmptyAndCommentOnly(t *testing.T) {
	for name, body := range map[string]string{"empty": "", "comment": "# just a comment\n"} {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, t.TempDir(), body))
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if want := DefaultConfig(); *cfg != want {
				t.Errorf("Load() = %+v, want defaults %+v", *cfg, want)
			}
		})
	}
}

func TestLoadLayered_Priority(t *testing.T) {
	// Setup: user config sets tree and gap, project config overrides gap.
	user := writeConfig(t, t.TempDir(), `
content:
  tree: user-tree.yaml
layout:
  gap: 4
log:
  level: debug
`)
	project := writeConfig(t, t.TempDir(), `
layout:
  gap: 2
`)

	cfg, err := LoadLayered(user, project)
	if err != nil {
		t.Fatalf("LoadLayered() error = %v", err)
	}
	if cfg.Content.Tree != "user-tree.yaml" {
		t.Errorf("tree = %q, want %q", cfg.Content.Tree, "user-tree.yaml")
	}
	if cfg.Layout.Gap != 2 {
		t.Errorf("gap = %d, want 2 (project overrides user)", cfg.Layout.Gap)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Layout.Margin != 2 {
		t.Errorf("margin = %d, want default 2", cfg.Layout.Margin)
	}
}

func TestLoadLayered_AllMissing(t *testing.T) {
	cfg, err := LoadLayered("/no/user.yaml", "/no/project.yaml")
	if err != nil {
		t.Fatalf("LoadLayered(all missing) error = %v", err)
	}
	if want := DefaultConfig(); *cfg != want {
		t.Errorf("got %+v, want defaults %+v", *cfg, want)
	}
}

func TestLoadLayered_BadLayer(t *testing.T) {
	bad := writeConfig(t, t.TempDir(), "scroll:\n  speed: 1\n")
	if _, err := LoadLayered(bad); err == nil {
		t.Fatal("LoadLayered() should reject unknown fields")
	}
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name    string
		envs    map[string]string
		wantErr bool
		check   func(*testing.T, Config)
	}{
		{
			name: "BRANCHWALK_TREE overrides tree",
			envs: map[string]string{"BRANCHWALK_TREE": "/tmp/tree.yaml"},
			check: func(t *testing.T, c Config) {
				if c.Content.Tree != "/tmp/tree.yaml" {
					t.Errorf("tree = %q", c.Content.Tree)
				}
			},
		},
		{
			name: "log overrides",
			envs: map[string]string{"BRANCHWALK_LOG_LEVEL": "warn", "BRANCHWALK_LOG_FILE": "/tmp/bw.log"},
			check: func(t *testing.T, c Config) {
				if c.Log.Level != "warn" || c.Log.File != "/tmp/bw.log" {
					t.Errorf("log = %+v", c.Log)
				}
			},
		},
		{
			name: "BRANCHWALK_CONNECTOR_DURATION overrides duration",
			envs: map[string]string{"BRANCHWALK_CONNECTOR_DURATION": "250ms"},
			check: func(t *testing.T, c Config) {
				if c.Connector.Duration != 250*time.Millisecond {
					t.Errorf("duration = %v, want 250ms", c.Connector.Duration)
				}
			},
		},
		{
			name:    "invalid BRANCHWALK_CONNECTOR_DURATION returns error",
			envs:    map[string]string{"BRANCHWALK_CONNECTOR_DURATION": "soon"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envs {
				t.Setenv(k, v)
			}
			cfg := DefaultConfig()
			err := cfg.ApplyEnv()

			if tt.wantErr {
				if err == nil {
					t.Fatal("ApplyEnv() should return error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyEnv() error = %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", modify: func(*Config) {}},
		{name: "zero duration draws instantly", modify: func(c *Config) { c.Connector.Duration = 0 }},
		{name: "uppercase level", modify: func(c *Config) { c.Log.Level = "DEBUG" }},
		{name: "zero gap", modify: func(c *Config) { c.Layout.Gap = 0 }, wantErr: true},
		{name: "negative settle delay", modify: func(c *Config) { c.Layout.SettleDelay = -time.Millisecond }, wantErr: true},
		{name: "negative retries", modify: func(c *Config) { c.Layout.MaxRetries = -1 }, wantErr: true},
		{name: "negative margin", modify: func(c *Config) { c.Layout.Margin = -1 }, wantErr: true},
		{name: "narrow boxes", modify: func(c *Config) { c.Layout.MaxWidth = 10 }, wantErr: true},
		{name: "negative duration", modify: func(c *Config) { c.Connector.Duration = -time.Second }, wantErr: true},
		{name: "zero frame interval", modify: func(c *Config) { c.Connector.FrameInterval = 0 }, wantErr: true},
		{name: "scroll step zero", modify: func(c *Config) { c.Scroll.Step = 0 }, wantErr: true},
		{name: "scroll step above one", modify: func(c *Config) { c.Scroll.Step = 1.5 }, wantErr: true},
		{name: "unknown level", modify: func(c *Config) { c.Log.Level = "loud" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
