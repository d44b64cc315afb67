package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rpgo/asset-projector/internal/recorder"
	"github.com/rpgo/asset-projector/pkg/money"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var (
		db       string
		limit    int
		runID    string
		scenario string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs, or the scenarios of one run",
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := recorder.NewSQLiteRecorder(db)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer rec.Close()
			out := cmd.OutOrStdout()

			if scenario != "" {
				if runID == "" {
					return fmt.Errorf("--scenario requires --run")
				}
				balances, err := rec.ScenarioBalances(cmd.Context(), runID, scenario)
				if err != nil {
					return err
				}
				if len(balances) == 0 {
					return fmt.Errorf("no periods recorded for scenario %s in run %s", scenario, runID)
				}
				for _, b := range balances {
					fmt.Fprintf(out, "%4d  balance %s  principal %s  gain %s\n", b.Period,
						money.NewYenFromDecimal(b.Balance).Format(), money.NewYenFromDecimal(b.Principal).Format(),
						money.NewYenFromDecimal(b.Gain).Format())
				}
				return nil
			}

			if runID != "" {
				scenarios, err := rec.RunScenarios(cmd.Context(), runID)
				if err != nil {
					return err
				}
				if len(scenarios) == 0 {
					return fmt.Errorf("run %s not found", runID)
				}
				for _, s := range scenarios {
					fmt.Fprintf(out, "%-28s %3d %-8s final %s  gain %s\n", s.Name, s.Periods, s.Compounding,
						money.NewYenFromDecimal(s.FinalBalance).Format(), money.NewYenFromDecimal(s.Gain).Format())
				}
				return nil
			}

			runs, err := rec.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, r := range runs {
				fmt.Fprintf(out, "%s  %-5s %-14s %d scenarios, %d sweeps\n",
					r.RunID, r.Source, humanize.RelTime(r.GeneratedAt, time.Now(), "ago", "from now"), r.Scenarios, r.Sweeps)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&db, "db", "projector.db", "SQLite history database")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to list")
	cmd.Flags().StringVar(&runID, "run", "", "show the scenarios of this run")
	cmd.Flags().StringVar(&scenario, "scenario", "", "with --run, show the period balances of this scenario")
	return cmd
}
