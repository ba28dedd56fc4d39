package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Memory health metrics for a thread",
		Long: "Compute compression ratio, topic diversity, summary coherence and the\n" +
			"forgetting-curve fit over a thread's engrams, soft-deleted included.",
		Run: runMetrics,
	}

	cmd.Flags().StringP("thread", "t", "", "Thread id (required)")
	cmd.MarkFlagRequired("thread")

	RootCmd.AddCommand(cmd)
}

func runMetrics(cmd *cobra.Command, args []string) {
	threadID, _ := cmd.Flags().GetString("thread")

	eng, st, logger, err := openEngine(false)
	if err != nil {
		exitErr("metrics", err)
	}
	defer st.Close()
	defer logger.Sync()

	snap, err := eng.MetricsSnapshot(cmd.Context(), threadID)
	if err != nil {
		exitErr("metrics", err)
	}
	printJSON(snap)
}
