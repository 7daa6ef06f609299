// Package jobs runs the periodic background work of the service.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/mroshb/kudos/pkg/logger"
	"github.com/robfig/cron/v3"
)

// BudgetResetter restores every user's giving budget.
type BudgetResetter interface {
	ResetGivingBudgets(ctx context.Context) (int64, error)
}

type Scheduler struct {
	cron     *cron.Cron
	budgets  BudgetResetter
	schedule string
}

// NewScheduler evaluates schedule in UTC.
func NewScheduler(budgets BudgetResetter, schedule string) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		budgets:  budgets,
		schedule: schedule,
	}
}

// Start registers the jobs and starts the cron loop. Jobs run with ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.schedule, func() { s.ResetBudgets(ctx) }); err != nil {
		return fmt.Errorf("invalid budget reset schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	logger.Info("Job scheduler started", "budget_reset", s.schedule)
	return nil
}

// ResetBudgets runs one giving-budget reset.
func (s *Scheduler) ResetBudgets(ctx context.Context) {
	start := time.Now()
	n, err := s.budgets.ResetGivingBudgets(ctx)
	if err != nil {
		logger.Error("[CRON] Giving budget reset failed", "error", err)
		return
	}
	logger.Info("[CRON] Giving budgets reset", "users", n, "duration", time.Since(start))
}

// Next is the time of the next budget reset, zero before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Job scheduler stopped")
}
