package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"talkdocs/internal/service"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Index PDF, TXT or DOCX files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	a, err := newApp(logToStderr)
	if err != nil {
		return err
	}
	defer a.close()

	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		res, err := a.svc.IngestFile(cmd.Context(), path)
		if err != nil {
			fmt.Fprintf(out, "%s: %s\n", path, service.UserMessage(err, "ingest document"))
			failed++
			continue
		}
		fmt.Fprintf(out, "Indexed '%s' into %d chunks.\n", res.FileName, res.ChunksIndexed)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
