package main

import (
	"fmt"

	"github.com/rpgo/asset-projector/internal/output"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "validate [deck.yaml]",
		Short: "Check a deck without running it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("a deck file is required")
			}
			deck, err := loadDeck(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d scenarios, %d sweeps OK\n", path, len(deck.Scenarios), len(deck.Sweeps))
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "config", "c", "", "deck file (YAML)")
	return cmd
}

func newExampleCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "example",
		Short: "Write the standard example deck",
		RunE: func(cmd *cobra.Command, args []string) error {
			deck := newParser().CreateExampleConfiguration()
			if err := output.SaveConfiguration(deck, path); err != nil {
				return fmt.Errorf("write example deck: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "example deck written to %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "output", "o", "deck.yaml", "where to write the deck")
	return cmd
}
