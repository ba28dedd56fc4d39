package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/threadmind/engram/internal/engine"
	"github.com/threadmind/engram/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "observe [message]",
		Short: "Feed messages through the consolidation triggers",
		Long: "Feed a transcript through the token and surprise triggers. Messages come\n" +
			"from a positional arg or stdin (one JSON object or bare text line per\n" +
			"message). Each consolidated engram is printed as a JSON line. Buffered\n" +
			"messages that never hit a trigger are discarded at exit unless --flush\n" +
			"forces a final consolidation.",
		Run: runObserve,
	}

	cmd.Flags().StringP("thread", "t", "", "Thread id (required)")
	cmd.Flags().StringP("role", "r", "user", "Role for bare-text messages")
	cmd.Flags().Bool("flush", false, "Force-consolidate whatever remains buffered")

	cmd.MarkFlagRequired("thread")

	RootCmd.AddCommand(cmd)
}

func runObserve(cmd *cobra.Command, args []string) {
	threadID, _ := cmd.Flags().GetString("thread")
	role, _ := cmd.Flags().GetString("role")
	flush, _ := cmd.Flags().GetBool("flush")

	messages, err := collectMessages(args, role)
	if err != nil {
		exitErr("observe", err)
	}
	if len(messages) == 0 {
		exitErr("observe", errors.New("no messages (positional arg or stdin)"))
	}

	eng, st, logger, err := openEngine(true)
	if err != nil {
		exitErr("observe", err)
	}
	defer st.Close()
	defer logger.Sync()

	consolidated := 0
	for _, msg := range messages {
		engram, err := eng.OnMessage(cmd.Context(), threadID, msg)
		if err != nil {
			exitErr("observe", err)
		}
		if engram != nil {
			consolidated++
			printJSON(engram)
		}
	}

	if flush {
		engram, err := eng.ForceConsolidate(cmd.Context(), threadID)
		if err != nil && !errors.Is(err, engine.ErrNotEnoughMessages) {
			exitErr("observe", err)
		}
		if engram != nil {
			consolidated++
			printJSON(engram)
		}
	}

	if consolidated == 0 {
		// Explicit null so scripted callers can tell "ran, nothing
		// consolidated" from a failure.
		fmt.Println("null")
	}
}

// collectMessages takes the transcript from positional args or stdin.
func collectMessages(args []string, role string) ([]model.Message, error) {
	if len(args) > 0 {
		in := messageInput{Role: role, Text: strings.Join(args, " ")}
		return []model.Message{in.toModel(role)}, nil
	}

	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) != 0 {
		return nil, nil
	}
	return readMessages(os.Stdin, role)
}
