package main

import (
	"fmt"

	"github.com/rpgo/asset-projector/internal/domain"
	"github.com/rpgo/asset-projector/internal/scenario"
	"github.com/rpgo/asset-projector/pkg/money"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newTargetCmd() *cobra.Command {
	var (
		amount, rate string
		years        int
		monthly      bool
	)
	cmd := &cobra.Command{
		Use:   "target",
		Short: "Level contribution needed to reach an amount",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := money.NewYenFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}
			r, err := decimal.NewFromString(rate)
			if err != nil {
				return fmt.Errorf("invalid rate %q: %w", rate, err)
			}
			res, err := scenario.Target(domain.TargetRequest{Amount: a.Decimal, Rate: r, Years: years, Monthly: monthly})
			if err != nil {
				return err
			}
			c := money.NewYenFromDecimal(res.Contribution)
			fmt.Fprintf(cmd.OutOrStdout(), "%s contribution: %s\n", res.Frequency, c.Format())
			if monthly {
				fmt.Fprintf(cmd.OutOrStdout(), "per year:             %s\n", c.Annual().Format())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "per month:            %s\n", c.Monthly().Format())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "principal:            %s\n", money.NewYenFromDecimal(res.Principal).Format())
			fmt.Fprintf(cmd.OutOrStdout(), "gain:                 %s\n", money.NewYenFromDecimal(res.Gain).Format())
			return nil
		},
	}
	cmd.Flags().StringVar(&amount, "amount", "", "target balance in yen")
	cmd.Flags().StringVar(&rate, "rate", "0.05", "annual rate of return")
	cmd.Flags().IntVar(&years, "years", 0, "years to reach the target")
	cmd.Flags().BoolVar(&monthly, "monthly", false, "contribute monthly instead of annually")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("years")
	return cmd
}
