package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abuzz-labs/intel-cli/internal/ingest"
)

var seedFilePath string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the competitor roster",
	Long:  "Loads the built-in priority roster, or the competitors listed in a YAML file. Safe to re-run.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStoreOnly(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := ingest.Seed(ctx, st, seedFilePath)
		if err != nil {
			return eris.Wrap(err, "seed")
		}

		zap.L().Info("seed complete", zap.Int("competitors", n))
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedFilePath, "file", "", "YAML roster file (default: built-in roster)")
	rootCmd.AddCommand(seedCmd)
}
