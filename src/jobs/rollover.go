package jobs

import (
	"context"
	"fmt"
	"time"

	"tally-server/src/logging"

	"github.com/robfig/cron/v3"
)

// Roller creates the current month's budget from each user's recurring template.
type Roller interface {
	Rollover(ctx context.Context, now time.Time) (int, error)
}

// RolloverJob runs the monthly budget rollover on a cron schedule.
type RolloverJob struct {
	roller  Roller
	logger  *logging.Logger
	cron    *cron.Cron
	timeout time.Duration
	now     func() time.Time
}

func NewRolloverJob(roller Roller, schedule string, logger *logging.Logger) (*RolloverJob, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	j := &RolloverJob{
		roller:  roller,
		logger:  logger.WithComponent(logging.ComponentJobs),
		cron:    cron.New(cron.WithLocation(time.UTC)),
		timeout: 5 * time.Minute,
		now:     time.Now,
	}
	if _, err := j.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		defer cancel()
		j.RunOnce(ctx)
	}); err != nil {
		return nil, fmt.Errorf("schedule rollover %q: %w", schedule, err)
	}
	return j, nil
}

// RunOnce performs a single rollover and returns how many budgets it created.
func (j *RolloverJob) RunOnce(ctx context.Context) (int, error) {
	start := j.now()
	created, err := j.roller.Rollover(ctx, start)
	if err != nil {
		j.logger.Error("budget rollover finished with errors",
			"created", created,
			logging.FieldError, err,
		)
		return created, err
	}
	j.logger.Info("budget rollover complete",
		"created", created,
		logging.FieldDuration, time.Since(start).Milliseconds(),
	)
	return created, nil
}

func (j *RolloverJob) Start() {
	j.cron.Start()
	j.logger.Info("rollover scheduler started", "next_run", j.cron.Entries()[0].Next)
}

// Stop halts the scheduler and waits for a running rollover, or ctx, to finish.
func (j *RolloverJob) Stop(ctx context.Context) error {
	done := j.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
