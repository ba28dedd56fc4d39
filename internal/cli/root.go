// Package cli implements the engram CLI commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/threadmind/engram/internal/buffer"
	"github.com/threadmind/engram/internal/config"
	"github.com/threadmind/engram/internal/engine"
	"github.com/threadmind/engram/internal/store"
	"github.com/threadmind/engram/internal/summarizer"
	"github.com/threadmind/engram/internal/surprise"
	"github.com/threadmind/engram/internal/topics"
)

var (
	dbPath     string
	configPath string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "engram",
	Short: "Conversational memory consolidation for AI agents",
	Long: "Consolidates conversation transcripts into scored, decaying memory units.\n" +
		"SQLite-backed, single binary. Text in, JSON out.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $ENGRAM_DB or ~/.engram/engram.db)")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg, nil
}

func newLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.OutputPaths = []string{"stderr"}
	logger, err := zcfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func openStore(cfg config.Config) (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(cfg.DBPath)
}

// openEngine wires an engine from the loaded config. needSummarizer commands
// fail fast when no completion oracle is configured; read-side commands run
// without one.
func openEngine(needSummarizer bool) (*engine.Engine, *store.SQLiteStore, *zap.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	summ := summarizer.NewFromEnv()
	if needSummarizer && summ == nil {
		return nil, nil, nil, fmt.Errorf("no summarizer configured: set ENGRAM_SUMMARIZER to ollama or openai")
	}

	st, err := openStore(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	logger := newLogger(cfg.LogLevel)
	eng := engine.New(cfg, st, buffer.NewMemoryStore(), surprise.NewLexicalScorer(),
		topics.NewKeywordTagger(), summ, logger)
	return eng, st, logger, nil
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
