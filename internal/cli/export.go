package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export engrams as newline-delimited JSON",
		Long:  "Export engrams, soft-deleted included, oldest first. Filter by thread with -t.",
		Run:   runExport,
	}

	cmd.Flags().StringP("thread", "t", "", "Filter by thread id")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	threadID, _ := cmd.Flags().GetString("thread")

	cfg, err := loadConfig()
	if err != nil {
		exitErr("export", err)
	}
	s, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	engrams, err := s.ExportAll(cmd.Context(), threadID)
	if err != nil {
		exitErr("export", err)
	}

	for _, e := range engrams {
		b, _ := json.Marshal(e)
		fmt.Println(string(b))
	}
}
