package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.ChunkSizeTokens != 5000 {
		t.Errorf("ChunkSizeTokens = %d, want 5000", cfg.ChunkSizeTokens)
	}
	if cfg.SurpriseThreshold != 0.7 {
		t.Errorf("SurpriseThreshold = %g, want 0.7", cfg.SurpriseThreshold)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero chunk size", func(c *Config) { c.ChunkSizeTokens = 0 }},
		{"min messages below 1", func(c *Config) { c.MinMessagesForEngram = 0 }},
		{"surprise above 1", func(c *Config) { c.SurpriseThreshold = 1.5 }},
		{"zero decay rate", func(c *Config) { c.DecayRate = 0 }},
		{"decay rate above 1", func(c *Config) { c.DecayRate = 1.1 }},
		{"negative boost", func(c *Config) { c.ReinforcementBoost = -0.1 }},
		{"relevance cap below 1", func(c *Config) { c.MaxRelevance = 0.5 }},
		{"zero context limit", func(c *Config) { c.MaxEngramsInContext = 0 }},
		{"zero lock lease", func(c *Config) { c.LockLease = 0 }},
		{"weights not summing to 1", func(c *Config) { c.WeightRelevance = 0.9 }},
		{"negative weight", func(c *Config) {
			c.WeightRelevance = 0.6
			c.WeightSurprise = -0.1
			c.WeightAccess = 0.3
			c.WeightRecency = 0.1
			c.WeightSimilarity = 0.1
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engram.yaml")
	body := `
chunk_size_tokens: 2000
surprise_threshold: 0.5
lock_lease: 10s
log_level: debug
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ChunkSizeTokens != 2000 {
		t.Errorf("ChunkSizeTokens = %d, want 2000", cfg.ChunkSizeTokens)
	}
	if cfg.SurpriseThreshold != 0.5 {
		t.Errorf("SurpriseThreshold = %g, want 0.5", cfg.SurpriseThreshold)
	}
	if cfg.LockLease != 10*time.Second {
		t.Errorf("LockLease = %s, want 10s", cfg.LockLease)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	// Untouched knobs keep their defaults.
	if cfg.DecayRate != 0.95 {
		t.Errorf("DecayRate = %g, want default 0.95", cfg.DecayRate)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() = nil error for missing file")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engram.yaml")
	if err := os.WriteFile(path, []byte("chunk_size_tokens: 2000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ENGRAM_CHUNK_SIZE_TOKENS", "3000")
	t.Setenv("ENGRAM_SURPRISE_THRESHOLD", "0.9")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ChunkSizeTokens != 3000 {
		t.Errorf("ChunkSizeTokens = %d, want env override 3000", cfg.ChunkSizeTokens)
	}
	if cfg.SurpriseThreshold != 0.9 {
		t.Errorf("SurpriseThreshold = %g, want env override 0.9", cfg.SurpriseThreshold)
	}
}

func TestLoadRejectsInvalidFileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engram.yaml")
	if err := os.WriteFile(path, []byte("decay_rate: 2.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() = nil error for invalid decay rate")
	}
}
