package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"NewsRecommender/internal/ports"
	"NewsRecommender/pkg/logger"
)

// CronScheduler runs a job on a standard five-field cron expression.
type CronScheduler struct {
	spec       string
	loc        *time.Location
	runOnStart bool
	logger     *log.Logger

	mu       sync.Mutex
	cron     *cron.Cron
	stopping chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	onStart  sync.WaitGroup
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler configured via cron expression string.
// runOnStart fires the job once immediately after Start.
func NewCronScheduler(spec string, loc *time.Location, runOnStart bool) *CronScheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &CronScheduler{
		spec:       spec,
		loc:        loc,
		runOnStart: runOnStart,
		logger:     logger.New("cron"),
	}
}

// Start registers the job and begins scheduling. Cancelling ctx stops the scheduler.
// Overlapping runs are skipped.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cron != nil {
		return nil
	}

	printf := cron.PrintfLogger(c.logger)
	runner := cron.New(
		cron.WithLocation(c.loc),
		cron.WithLogger(printf),
		cron.WithChain(cron.Recover(printf), cron.SkipIfStillRunning(printf)),
	)

	entry, err := runner.AddFunc(c.spec, func() { job(time.Now().In(c.loc)) })
	if err != nil {
		return fmt.Errorf("schedule %q: %w", c.spec, err)
	}

	runner.Start()
	c.cron = runner
	c.stopping = make(chan struct{})
	c.done = make(chan struct{})
	c.logger.Printf("scheduled %q, next run %s", c.spec, runner.Entry(entry).Next.Format(time.RFC3339))

	if c.runOnStart {
		wrapped := runner.Entry(entry).WrappedJob
		c.onStart.Add(1)
		go func() {
			defer c.onStart.Done()
			wrapped.Run()
		}()
	}

	stopping := c.stopping
	go func() {
		select {
		case <-ctx.Done():
			c.halt()
		case <-stopping:
		}
	}()

	return nil
}

// Stop halts scheduling and waits for running jobs, bounded by ctx. Every
// caller waits on the same completion, including after ctx-driven shutdown.
func (c *CronScheduler) Stop(ctx context.Context) error {
	done := c.halt()
	if done == nil {
		return nil
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// halt stops the runner once and returns a channel closed when scheduled and
// on-start runs have finished. It returns nil if Start never succeeded.
func (c *CronScheduler) halt() <-chan struct{} {
	c.mu.Lock()
	runner, stopping, done := c.cron, c.stopping, c.done
	c.mu.Unlock()

	if runner == nil {
		return nil
	}

	c.stopOnce.Do(func() {
		close(stopping)
		stopped := runner.Stop()
		go func() {
			<-stopped.Done()
			c.onStart.Wait()
			close(done)
		}()
	})
	return done
}
