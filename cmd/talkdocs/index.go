package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"talkdocs/internal/config"
	"talkdocs/internal/service"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active index and where it is stored",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(logToStderr)
		if err != nil {
			return err
		}
		defer a.close()

		st := a.svc.Status()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Indexed Chunks: %d\n", st.Chunks)
		fmt.Fprintf(out, "Index: %s\n", st.Name)
		fmt.Fprintf(out, "Dimension: %d\n", st.Dimension)
		fmt.Fprintf(out, "Vectors: %s\n", st.VectorPath)
		fmt.Fprintf(out, "Metadata: %s\n", st.MetadataPath)
		fmt.Fprintf(out, "Uploads: %s\n", a.cfg.Storage.UploadDir)
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the active index from memory and disk",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(logToStderr)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.svc.Clear(); err != nil {
			return errors.New(service.UserMessage(err, "clear the index"))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared index %q.\n", a.cfg.Storage.IndexName)
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		data, err := config.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(statusCmd, clearCmd, configCmd)
}
