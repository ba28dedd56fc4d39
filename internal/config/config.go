// Package config holds the tunable surface of the memory engine.
//
// Every knob has a safe default. Values load from an optional YAML file and
// may be overridden with ENGRAM_* environment variables. Invalid thresholds
// are fatal at startup: a misconfigured engine silently misbehaving is worse
// than refusing to start.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full configuration surface of the engine.
type Config struct {
	// DBPath is the SQLite database location.
	DBPath string `yaml:"db_path"`

	// ChunkSizeTokens is the buffered token estimate that triggers
	// consolidation.
	ChunkSizeTokens int `yaml:"chunk_size_tokens"`

	// MinMessagesForEngram is the minimum buffered message count before a
	// non-forced consolidation is considered.
	MinMessagesForEngram int `yaml:"min_messages_for_engram"`

	// SurpriseThreshold triggers early consolidation when the buffered
	// batch scores at or above it.
	SurpriseThreshold float64 `yaml:"surprise_threshold"`

	// DecayRate is the per-day multiplicative relevance decay.
	DecayRate float64 `yaml:"decay_rate"`

	// ReinforcementBoost is added to base relevance on each retrieval.
	ReinforcementBoost float64 `yaml:"reinforcement_boost"`

	// MaxRelevance caps reinforced base relevance.
	MaxRelevance float64 `yaml:"max_relevance"`

	// MaxEngramsInContext is the default retrieval limit.
	MaxEngramsInContext int `yaml:"max_engrams_in_context"`

	// CleanupMaxAgeDays and CleanupMinRelevance gate the sweeper: an engram
	// is soft-deleted only when it is older than the age AND its decayed
	// relevance is below the floor.
	CleanupMaxAgeDays   int     `yaml:"cleanup_max_age_days"`
	CleanupMinRelevance float64 `yaml:"cleanup_min_relevance"`

	// LockLease bounds how long a consolidation lock may be held before a
	// stalled holder is treated as expired.
	LockLease time.Duration `yaml:"lock_lease"`

	// SummarizerTimeout bounds a single summarization call.
	SummarizerTimeout time.Duration `yaml:"summarizer_timeout"`

	// SweepInterval is the period of the background maintenance sweeper.
	SweepInterval time.Duration `yaml:"sweep_interval"`

	// Retrieval weights. They must sum to 1; the composite score is
	//   WeightRelevance*decayedRelevance/MaxRelevance +
	//   WeightSurprise*surprise + WeightAccess*log1p(accesses)/3 +
	//   WeightRecency*recency + WeightSimilarity*jaccard(query, content).
	WeightRelevance  float64 `yaml:"weight_relevance"`
	WeightSurprise   float64 `yaml:"weight_surprise"`
	WeightAccess     float64 `yaml:"weight_access"`
	WeightRecency    float64 `yaml:"weight_recency"`
	WeightSimilarity float64 `yaml:"weight_similarity"`

	// LogLevel is zap's level string (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration with every knob at its safe default.
func Default() Config {
	return Config{
		DBPath:               defaultDBPath(),
		ChunkSizeTokens:      5000,
		MinMessagesForEngram: 3,
		SurpriseThreshold:    0.7,
		DecayRate:            0.95,
		ReinforcementBoost:   0.2,
		MaxRelevance:         5.0,
		MaxEngramsInContext:  5,
		CleanupMaxAgeDays:    30,
		CleanupMinRelevance:  0.1,
		LockLease:            30 * time.Second,
		SummarizerTimeout:    30 * time.Second,
		SweepInterval:        6 * time.Hour,
		WeightRelevance:      0.4,
		WeightSurprise:       0.2,
		WeightAccess:         0.2,
		WeightRecency:        0.1,
		WeightSimilarity:     0.1,
		LogLevel:             "info",
	}
}

func defaultDBPath() string {
	if env := os.Getenv("ENGRAM_DB"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return home + "/.engram/engram.db"
}

// Load reads the config file at path (if non-empty), applies environment
// overrides, validates and returns the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ENGRAM_DB"); v != "" {
		c.DBPath = v
	}
	if v, ok := envInt("ENGRAM_CHUNK_SIZE_TOKENS"); ok {
		c.ChunkSizeTokens = v
	}
	if v, ok := envInt("ENGRAM_MIN_MESSAGES"); ok {
		c.MinMessagesForEngram = v
	}
	if v, ok := envFloat("ENGRAM_SURPRISE_THRESHOLD"); ok {
		c.SurpriseThreshold = v
	}
	if v, ok := envFloat("ENGRAM_DECAY_RATE"); ok {
		c.DecayRate = v
	}
	if v := os.Getenv("ENGRAM_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func envFloat(key string) (float64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Validate rejects thresholds the engine cannot operate with.
func (c *Config) Validate() error {
	if c.ChunkSizeTokens <= 0 {
		return fmt.Errorf("chunk_size_tokens must be positive, got %d", c.ChunkSizeTokens)
	}
	if c.MinMessagesForEngram < 1 {
		return fmt.Errorf("min_messages_for_engram must be >= 1, got %d", c.MinMessagesForEngram)
	}
	if c.SurpriseThreshold < 0 || c.SurpriseThreshold > 1 {
		return fmt.Errorf("surprise_threshold must be in [0,1], got %g", c.SurpriseThreshold)
	}
	if c.DecayRate <= 0 || c.DecayRate > 1 {
		return fmt.Errorf("decay_rate must be in (0,1], got %g", c.DecayRate)
	}
	if c.ReinforcementBoost < 0 {
		return fmt.Errorf("reinforcement_boost must be non-negative, got %g", c.ReinforcementBoost)
	}
	if c.MaxRelevance < 1 {
		return fmt.Errorf("max_relevance must be >= 1, got %g", c.MaxRelevance)
	}
	if c.MaxEngramsInContext < 1 {
		return fmt.Errorf("max_engrams_in_context must be >= 1, got %d", c.MaxEngramsInContext)
	}
	if c.CleanupMaxAgeDays < 1 {
		return fmt.Errorf("cleanup_max_age_days must be >= 1, got %d", c.CleanupMaxAgeDays)
	}
	if c.CleanupMinRelevance < 0 {
		return fmt.Errorf("cleanup_min_relevance must be non-negative, got %g", c.CleanupMinRelevance)
	}
	if c.LockLease <= 0 {
		return fmt.Errorf("lock_lease must be positive, got %s", c.LockLease)
	}
	if c.SummarizerTimeout <= 0 {
		return fmt.Errorf("summarizer_timeout must be positive, got %s", c.SummarizerTimeout)
	}

	sum := c.WeightRelevance + c.WeightSurprise + c.WeightAccess + c.WeightRecency + c.WeightSimilarity
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("retrieval weights must sum to 1, got %g", sum)
	}
	for name, w := range map[string]float64{
		"weight_relevance":  c.WeightRelevance,
		"weight_surprise":   c.WeightSurprise,
		"weight_access":     c.WeightAccess,
		"weight_recency":    c.WeightRecency,
		"weight_similarity": c.WeightSimilarity,
	} {
		if w < 0 {
			return fmt.Errorf("%s must be non-negative, got %g", name, w)
		}
	}
	return nil
}
