package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "retrieve",
		Short: "Retrieve the top-ranked engrams for a thread",
		Long: "Rank a thread's engrams by decayed relevance, surprise, access\n" +
			"frequency, recency and query similarity, and print the top ones.\n" +
			"Retrieval reinforces the returned engrams.",
		Run: runRetrieve,
	}

	cmd.Flags().StringP("thread", "t", "", "Thread id (required)")
	cmd.Flags().StringP("query", "q", "", "Rank against this query text")
	cmd.Flags().IntP("limit", "l", 0, "Max engrams (default: configured max_engrams_in_context)")
	cmd.Flags().Bool("render", false, "Print a markdown context block instead of JSON")

	cmd.MarkFlagRequired("thread")

	RootCmd.AddCommand(cmd)
}

func runRetrieve(cmd *cobra.Command, args []string) {
	threadID, _ := cmd.Flags().GetString("thread")
	query, _ := cmd.Flags().GetString("query")
	limit, _ := cmd.Flags().GetInt("limit")
	render, _ := cmd.Flags().GetBool("render")

	eng, st, logger, err := openEngine(false)
	if err != nil {
		exitErr("retrieve", err)
	}
	defer st.Close()
	defer logger.Sync()

	engrams, err := eng.Retrieve(cmd.Context(), threadID, query, limit)
	if err != nil {
		exitErr("retrieve", err)
	}

	if render {
		fmt.Print(eng.RenderContext(engrams))
		return
	}
	if engrams == nil {
		fmt.Println("[]")
		return
	}
	printJSON(engrams)
}
