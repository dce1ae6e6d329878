package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"talkdocs/internal/service"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Show the chunks most similar to a query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(logToStderr)
		if err != nil {
			return err
		}
		defer a.close()

		k, _ := cmd.Flags().GetInt("top-k")
		results, err := a.svc.Search(cmd.Context(), strings.Join(args, " "), k)
		if err != nil {
			return errors.New(service.UserMessage(err, "search"))
		}
		out := cmd.OutOrStdout()
		if len(results) == 0 {
			fmt.Fprintln(out, "No chunks cleared the relevance threshold.")
			return nil
		}
		for i, r := range results {
			fmt.Fprintf(out, "%d. %s (score=%.3f)\n%s\n\n", i+1, r.SourceFile, r.Score, r.Text)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntP("top-k", "k", 0, "number of chunks to retrieve (default from config)")
	rootCmd.AddCommand(searchCmd)
}
