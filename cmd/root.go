package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abuzz-labs/intel-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "intel-cli",
	Short: "Competitor intelligence query and debrief tool",
	Long:  "Parses analyst questions into structured filters, retrieves matching intelligence from the corpus, and generates grounded answers and periodic debriefs via Claude.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
