// Package scheduler re-runs a projection deck on a cron schedule so run history
// tracks changes to the deck over time.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rpgo/asset-projector/internal/calculation"
	"github.com/rpgo/asset-projector/internal/domain"
	"github.com/rpgo/asset-projector/internal/scenario"
)

// DeckLoader returns the deck to project. It is called on every tick so edits
// to the deck file are picked up without a restart.
type DeckLoader func() (*domain.Configuration, error)

// Scheduler manages the periodic deck run.
type Scheduler struct {
	Cron   *cron.Cron
	Load   DeckLoader
	Runner *scenario.Runner
	Logger calculation.Logger
	Ctx    context.Context
}

// NewScheduler creates a Scheduler. Cron specs include a seconds field.
func NewScheduler(ctx context.Context, load DeckLoader, runner *scenario.Runner, logger calculation.Logger) *Scheduler {
	return &Scheduler{
		Cron:   cron.New(cron.WithSeconds()),
		Load:   load,
		Runner: runner,
		Logger: calculation.OrNop(logger),
		Ctx:    ctx,
	}
}

// Register schedules the deck run.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.tick); err != nil {
		return fmt.Errorf("register deck run: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Infof("scheduler started")
}

// Stop stops the scheduler and waits for a running deck to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Logger.Infof("scheduler stopped")
}

// RunNow runs the deck immediately.
func (s *Scheduler) RunNow() (*domain.RunReport, error) {
	config, err := s.Load()
	if err != nil {
		return nil, fmt.Errorf("load deck: %w", err)
	}
	return s.Runner.Run(s.Ctx, config, "cron")
}

func (s *Scheduler) tick() {
	s.Logger.Infof("running scheduled deck")
	report, err := s.RunNow()
	if err != nil {
		s.Logger.Errorf("scheduled run: %v", err)
		return
	}
	s.Logger.Debugf("scheduled run %s recorded", report.RunID)
}
