package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Soft-delete aged, irrelevant engrams",
		Long: "Soft-delete engrams older than the age limit whose decayed relevance\n" +
			"fell below the floor. Both conditions must hold; running twice is a\n" +
			"no-op.",
		Run: runCleanup,
	}

	cmd.Flags().Int("max-age-days", 0, "Age gate in days (default: configured cleanup_max_age_days)")
	cmd.Flags().Float64("min-relevance", 0, "Relevance floor (default: configured cleanup_min_relevance)")

	RootCmd.AddCommand(cmd)
}

func runCleanup(cmd *cobra.Command, args []string) {
	maxAgeDays, _ := cmd.Flags().GetInt("max-age-days")
	minRelevance, _ := cmd.Flags().GetFloat64("min-relevance")

	eng, st, logger, err := openEngine(false)
	if err != nil {
		exitErr("cleanup", err)
	}
	defer st.Close()
	defer logger.Sync()

	deleted, err := eng.Cleanup(cmd.Context(), maxAgeDays, minRelevance)
	if err != nil {
		exitErr("cleanup", err)
	}

	b, _ := json.Marshal(map[string]int{"deleted": deleted})
	fmt.Println(string(b))
}
