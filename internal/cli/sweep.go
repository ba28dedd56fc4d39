package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/threadmind/engram/internal/engine"
)

func init() {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run the maintenance sweeper until interrupted",
		Long: "Run the cleanup sweep on a fixed interval until SIGINT or SIGTERM.\n" +
			"Each sweep soft-deletes engrams that are both aged out and decayed\n" +
			"below the relevance floor.",
		Run: runSweep,
	}

	cmd.Flags().Duration("interval", 0, "Sweep period (default: configured sweep_interval)")

	RootCmd.AddCommand(cmd)
}

func runSweep(cmd *cobra.Command, args []string) {
	interval, _ := cmd.Flags().GetDuration("interval")

	eng, st, logger, err := openEngine(false)
	if err != nil {
		exitErr("sweep", err)
	}
	defer st.Close()
	defer logger.Sync()

	cfg, err := loadConfig()
	if err != nil {
		exitErr("sweep", err)
	}
	if interval <= 0 {
		interval = cfg.SweepInterval
	}
	if interval <= 0 {
		interval = 6 * time.Hour
	}

	sweeper := engine.NewSweeper(eng, interval, logger)
	sweeper.Start()
	logger.Info("sweeper started", zap.Duration("interval", interval))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("shutting down")
	sweeper.Stop()
}
