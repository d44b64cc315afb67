package main

import (
	"fmt"

	"github.com/rpgo/asset-projector/internal/domain"
	"github.com/rpgo/asset-projector/internal/scenario"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type outputFlags struct {
	format string
	output string
	db     string
}

func (f *outputFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.format, "format", "f", "json", "report format")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "write the report to a file instead of stdout")
	cmd.Flags().StringVar(&f.db, "db", "", "SQLite database to record the run in")
}

func newRunCmd(root *rootOptions) *cobra.Command {
	var (
		deckPath string
		out      outputFlags
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Project every scenario and sweep in a deck",
		RunE: func(cmd *cobra.Command, args []string) error {
			deck, err := loadDeck(deckPath)
			if err != nil {
				return err
			}
			return runDeck(cmd, root, &out, deck)
		},
	}
	cmd.Flags().StringVarP(&deckPath, "config", "c", "", "deck file (YAML)")
	_ = cmd.MarkFlagRequired("config")
	out.bind(cmd)
	return cmd
}

func newSweepCmd(root *rootOptions) *cobra.Command {
	var (
		deckPath string
		rates    []float64
		amounts  []float64
		offsets  []int
		periods  int
		initial  float64
		monthly  bool
		out      outputFlags
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run a rate x contribution x start-offset grid",
		Long: "Runs the sweeps of a deck (--config), or a single grid described by flags:\n" +
			"  projector sweep --rates 0.03,0.05,0.07 --amounts 360000,600000 --periods 43 --monthly",
		RunE: func(cmd *cobra.Command, args []string) error {
			var deck *domain.Configuration
			if deckPath != "" {
				d, err := loadDeck(deckPath)
				if err != nil {
					return err
				}
				if len(d.Sweeps) == 0 {
					return fmt.Errorf("deck %s has no sweeps", deckPath)
				}
				d.Scenarios = nil
				deck = d
			} else {
				sw := domain.Sweep{
					Name:                "cli",
					Periods:             periods,
					InitialBalance:      decimal.NewFromFloat(initial),
					Rates:               decimals(rates),
					AnnualContributions: decimals(amounts),
					StartOffsets:        offsets,
				}
				if monthly {
					sw.Compounding = domain.CompoundingMonthly
				}
				d := &domain.Configuration{Sweeps: []domain.Sweep{sw}}
				if err := newParser().ValidateConfiguration(d); err != nil {
					return fmt.Errorf("configuration validation failed: %w", err)
				}
				deck = d
			}
			return runDeck(cmd, root, &out, deck)
		},
	}
	cmd.Flags().StringVarP(&deckPath, "config", "c", "", "deck file; runs its sweeps and ignores the grid flags")
	cmd.Flags().Float64SliceVar(&rates, "rates", nil, "annual rates of return")
	cmd.Flags().Float64SliceVar(&amounts, "amounts", nil, "annual contributions in yen")
	cmd.Flags().IntSliceVar(&offsets, "offsets", nil, "start offsets in periods")
	cmd.Flags().IntVar(&periods, "periods", 0, "horizon in periods")
	cmd.Flags().Float64Var(&initial, "initial", 0, "starting balance in yen")
	cmd.Flags().BoolVar(&monthly, "monthly", false, "compound monthly")
	out.bind(cmd)
	return cmd
}

func runDeck(cmd *cobra.Command, root *rootOptions, out *outputFlags, deck *domain.Configuration) error {
	rec, err := openRecorder(out.db)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer rec.Close()

	runner := scenario.NewRunner(rec, root.logger(cmd))
	report, err := runner.Run(cmd.Context(), deck, "cli")
	if err != nil {
		return err
	}
	return writeReport(cmd.OutOrStdout(), report, out.format, out.output)
}

func decimals(fs []float64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(fs))
	for i, f := range fs {
		out[i] = decimal.NewFromFloat(f)
	}
	return out
}
