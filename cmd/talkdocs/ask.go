package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"talkdocs/internal/service"
)

var flagTopK int

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question from the indexed documents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(logToStderr)
		if err != nil {
			return err
		}
		defer a.close()

		question := strings.Join(args, " ")
		ans, err := a.svc.Ask(cmd.Context(), question, flagTopK)
		if err != nil {
			return errors.New(service.UserMessage(err, "answer the question"))
		}
		fmt.Fprintln(cmd.OutOrStdout(), formatAnswer(ans))
		return nil
	},
}

func init() {
	askCmd.Flags().IntVarP(&flagTopK, "top-k", "k", 0, "number of chunks to retrieve (default from config)")
	rootCmd.AddCommand(askCmd)
}
