package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var competitorsJSON bool

var competitorsCmd = &cobra.Command{
	Use:   "competitors",
	Short: "List the active competitor roster",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStoreOnly(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		active, err := st.ListActiveCompetitors(ctx)
		if err != nil {
			return err
		}

		if competitorsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(active)
		}

		for _, c := range active {
			fmt.Println(c.Name)
		}
		return nil
	},
}

func init() {
	competitorsCmd.Flags().BoolVar(&competitorsJSON, "json", false, "print the roster as JSON")
	rootCmd.AddCommand(competitorsCmd)
}
