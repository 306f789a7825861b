package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question against the intelligence corpus",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		question := strings.Join(args, " ")

		result, err := env.Chat.Ask(ctx, question, nil)
		if err != nil {
			return eris.Wrap(err, "ask")
		}

		if askJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		fmt.Println(result.Response)
		if len(result.Sources) > 0 {
			fmt.Println("\nSources:")
			for _, s := range result.Sources {
				line := fmt.Sprintf("  [%s] %s: %s", s.Date, s.CompetitorName, s.Title)
				if s.URL != "" {
					line += " (" + s.URL + ")"
				}
				fmt.Println(line)
			}
		}
		return nil
	},
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the full result as JSON")
	rootCmd.AddCommand(askCmd)
}
