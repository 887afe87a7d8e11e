package scheduler

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"taskq/internal/task"
	logx "taskq/pkg/logx"
)

// RunnerConfig controls the simulated execution action.
type RunnerConfig struct {
	// SimulateWork sleeps for a duration derived from the description
	// length (longer description = more work). Off means tasks complete
	// instantly, which tests rely on.
	SimulateWork bool

	// RatePerSec caps executions per second during run-all.
	// 0 disables pacing.
	RatePerSec int
}

const (
	workPerChar = time.Second / 20
	workMin     = 500 * time.Millisecond
	workMax     = 3 * time.Second
)

// Runner performs the simulated execution of a single task. The action is
// deterministic, bounded, and has no effect on other tasks or the store.
type Runner struct {
	cfg     RunnerConfig
	log     logx.Logger
	limiter *rate.Limiter

	// sleep is swappable so tests run instantly.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewRunner(cfg RunnerConfig, log logx.Logger) *Runner {
	if log.IsZero() {
		log = logx.Nop()
	}
	r := &Runner{cfg: cfg, log: log, sleep: sleepCtx}
	if cfg.RatePerSec > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1)
	}
	return r
}

func (r *Runner) Execute(ctx context.Context, t task.Task) error {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	r.log.Info("executing task",
		logx.String("id", t.ID),
		logx.Int("priority", t.Priority),
		logx.String("description", t.Description),
	)
	if !r.cfg.SimulateWork {
		return nil
	}
	return r.sleep(ctx, workDuration(t.Description))
}

// workDuration scales with description length, clamped to a band so a
// pathological description cannot stall a run.
func workDuration(description string) time.Duration {
	d := time.Duration(len(description)) * workPerChar
	if d < workMin {
		d = workMin
	}
	if d > workMax {
		d = workMax
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
