package usecase

import (
	"context"
	"fmt"
	"time"

	"NewsRecommender/internal/ports"
)

// Scheduler wires the cron-like driver with the recommender refresh.
type Scheduler struct {
	driver      ports.Scheduler
	recommender *Recommender
	users       []string
}

// NewScheduler returns a helper to start/stop recurring refreshes for users.
func NewScheduler(driver ports.Scheduler, recommender *Recommender, users []string) *Scheduler {
	return &Scheduler{driver: driver, recommender: recommender, users: append([]string(nil), users...)}
}

// Start registers the refresh with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.recommender == nil {
		return nil
	}
	if len(s.users) == 0 {
		return fmt.Errorf("no users configured for scheduled refresh")
	}

	job := func(trigger time.Time) {
		s.recommender.logger.Info("scheduled refresh", "trigger", trigger, "users", len(s.users))
		s.recommender.RefreshAll(ctx, s.users)
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
