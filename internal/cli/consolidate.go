package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "consolidate",
		Short: "Force-consolidate a transcript into one engram",
		Long: "Read a transcript from stdin (one JSON object or bare text line per\n" +
			"message) and consolidate it into a single engram, bypassing the token\n" +
			"and surprise triggers.",
		Run: runConsolidate,
	}

	cmd.Flags().StringP("thread", "t", "", "Thread id (required)")
	cmd.Flags().StringP("role", "r", "user", "Role for bare-text messages")

	cmd.MarkFlagRequired("thread")

	RootCmd.AddCommand(cmd)
}

func runConsolidate(cmd *cobra.Command, args []string) {
	threadID, _ := cmd.Flags().GetString("thread")
	role, _ := cmd.Flags().GetString("role")

	messages, err := readMessages(os.Stdin, role)
	if err != nil {
		exitErr("consolidate", err)
	}
	if len(messages) == 0 {
		exitErr("consolidate", errors.New("no messages on stdin"))
	}

	eng, st, logger, err := openEngine(true)
	if err != nil {
		exitErr("consolidate", err)
	}
	defer st.Close()
	defer logger.Sync()

	for _, msg := range messages {
		eng.Buffer(threadID, msg)
	}

	engram, err := eng.ForceConsolidate(cmd.Context(), threadID)
	if err != nil {
		exitErr("consolidate", err)
	}
	if engram == nil {
		exitErr("consolidate", errors.New("consolidation abandoned (summarizer failed or lock held)"))
	}
	printJSON(engram)
}
