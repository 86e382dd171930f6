package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
)

// Publication sweeps run at the top of every hour; signed URL refresh
// runs once a day, off-peak. Both schedules are evaluated in UTC.
const (
	publishSpec = "0 * * * *"
	refreshSpec = "30 2 * * *"
)

type Logger interface {
	InfoWithContextf(ctx context.Context, format string, args ...interface{})
	WarningWithContextf(ctx context.Context, format string, args ...interface{})
	ErrorWithContextf(ctx context.Context, err error, format string, args ...interface{})
}

// Engine owns the cron runner and the two background sweeps.
type Engine struct {
	cron    *cron.Cron
	publish *PublishSweep
	refresh *RefreshSweep
	logger  Logger
}

func NewEngine(publish *PublishSweep, refresh *RefreshSweep, logger Logger) *Engine {
	return &Engine{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		publish: publish,
		refresh: refresh,
		logger:  logger,
	}
}

func (e *Engine) Start() error {
	if _, err := e.cron.AddFunc(publishSpec, func() {
		e.publish.Run(context.Background())
	}); err != nil {
		return err
	}
	if _, err := e.cron.AddFunc(refreshSpec, func() {
		e.refresh.Run(context.Background())
	}); err != nil {
		return err
	}

	e.cron.Start()
	e.logger.InfoWithContextf(context.Background(), "scheduler started: publish %q, refresh %q (UTC)", publishSpec, refreshSpec)
	return nil
}

// Stop halts scheduling and returns a context that is done once any
// in-flight sweep has finished.
func (e *Engine) Stop() context.Context {
	return e.cron.Stop()
}
