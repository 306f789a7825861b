package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abuzz-labs/intel-cli/internal/ingest"
)

var importCmd = &cobra.Command{
	Use:   "import <file.xlsx> [file.xlsx...]",
	Short: "Import intelligence feed workbooks",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStoreOnly(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		res, err := ingest.NewImporter(st).ImportFiles(ctx, args)
		if err != nil {
			return eris.Wrap(err, "import")
		}

		zap.L().Info("import finished",
			zap.Int("files", res.Files),
			zap.Int64("items", res.Items),
			zap.Int("new_competitors", res.NewCompetitors),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
