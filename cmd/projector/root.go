package main

import (
	"io"
	"os"

	"github.com/rpgo/asset-projector/internal/calculation"
	"github.com/rpgo/asset-projector/internal/config"
	"github.com/rpgo/asset-projector/internal/domain"
	"github.com/rpgo/asset-projector/internal/output"
	"github.com/rpgo/asset-projector/internal/recorder"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "projector",
		Short:         "Compound-growth asset projections for savings plans",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")

	cmd.AddCommand(
		newRunCmd(opts),
		newSweepCmd(opts),
		newTargetCmd(),
		newValidateCmd(),
		newExampleCmd(),
		newHistoryCmd(),
		newServeCmd(opts),
	)
	return cmd
}

func (o *rootOptions) logger(cmd *cobra.Command) calculation.Logger {
	return calculation.NewStdLogger(cmd.ErrOrStderr(), o.verbose)
}

// openRecorder returns a SQLite recorder for path, or a no-op recorder when path is empty.
func openRecorder(path string) (recorder.Recorder, error) {
	if path == "" {
		return recorder.NewNoopRecorder(), nil
	}
	return recorder.NewSQLiteRecorder(path)
}

func newParser() *config.InputParser { return config.NewInputParser() }

func loadDeck(path string) (*domain.Configuration, error) {
	return newParser().LoadFromFile(path)
}

// writeReport renders to outPath, or to w when outPath is empty.
func writeReport(w io.Writer, report *domain.RunReport, format, outPath string) error {
	if outPath == "" {
		return output.WriteReport(w, report, format)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := output.WriteReport(f, report, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
