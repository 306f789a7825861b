package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/abuzz-labs/intel-cli/internal/model"
	"github.com/abuzz-labs/intel-cli/internal/report"
	"github.com/abuzz-labs/intel-cli/internal/retrieval"
)

var (
	debriefDays  int
	debriefStart string
	debriefEnd   string
	debriefCount bool
)

var debriefCmd = &cobra.Command{
	Use:   "debrief",
	Short: "Generate an intelligence debrief for a date window",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		window, err := debriefWindow(time.Now().UTC())
		if err != nil {
			return err
		}

		if debriefCount {
			// Counting never needs the API key.
			st, err := initStoreOnly(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			n, err := report.NewAggregator(st, nil, cfg.Report, cfg.Anthropic).Count(ctx, window)
			if err != nil {
				return err
			}
			fmt.Println(n)
			return nil
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Report.Generate(ctx, window)
		if err != nil {
			return eris.Wrap(err, "debrief")
		}

		fmt.Println(result.Response)
		return nil
	},
}

// debriefWindow resolves the window flags. --start/--end take priority over
// --days; --days 0 falls back to the configured default.
func debriefWindow(now time.Time) (*model.DateRange, error) {
	if debriefStart != "" || debriefEnd != "" {
		if debriefStart == "" || debriefEnd == "" {
			return nil, eris.New("both --start and --end are required when either is set")
		}
		start, err := time.Parse("2006-01-02", debriefStart)
		if err != nil {
			return nil, eris.Wrapf(err, "parse --start %q", debriefStart)
		}
		end, err := time.Parse("2006-01-02", debriefEnd)
		if err != nil {
			return nil, eris.Wrapf(err, "parse --end %q", debriefEnd)
		}
		if end.Before(start) {
			return nil, eris.New("--end is before --start")
		}
		return &model.DateRange{Start: start, End: end}, nil
	}

	days := debriefDays
	if days <= 0 {
		days = cfg.Report.WindowDays
	}
	w := retrieval.TrailingWindow(now, days)
	return &w, nil
}

func init() {
	debriefCmd.Flags().IntVar(&debriefDays, "days", 0, "trailing window in days (default from config)")
	debriefCmd.Flags().StringVar(&debriefStart, "start", "", "window start date (YYYY-MM-DD)")
	debriefCmd.Flags().StringVar(&debriefEnd, "end", "", "window end date (YYYY-MM-DD)")
	debriefCmd.Flags().BoolVar(&debriefCount, "count", false, "print the item count instead of generating")
	rootCmd.AddCommand(debriefCmd)
}
