package worker

import (
	"context"
	"errors"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/repair-sla-service/internal/config"
	"github.com/spec-kit/repair-sla-service/internal/service"
)

// AlertRunner runs one SLA alert sweep.
type AlertRunner interface {
	Run(ctx context.Context) (service.RunResult, error)
}

// StartAlertWorker schedules the alert sweep on cfg.CronSchedule and starts the
// cron loop. It returns nil when alerting is disabled. Callers stop the
// returned scheduler on shutdown.
func StartAlertWorker(ctx context.Context, cfg config.AlertConfig, runner AlertRunner, logger *zap.Logger) (*cron.Cron, error) {
	if !cfg.Enabled {
		logger.Info("sla alert worker disabled")
		return nil, nil
	}
	if runner == nil {
		return nil, errors.New("alert worker requires a runner")
	}

	cl := newCronLogger(logger.Named("alert_worker"))
	opts := []cron.Option{cron.WithLogger(cl)}
	if cfg.SkipIfStillRunning {
		opts = append(opts, cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))
	} else {
		opts = append(opts, cron.WithChain(cron.Recover(cl)))
	}
	c := cron.New(opts...)

	if _, err := c.AddFunc(cfg.CronSchedule, func() { runAlertTick(ctx, cfg, runner, logger) }); err != nil {
		return nil, err
	}
	c.Start()
	logger.Info("sla alert worker started", zap.String("schedule", cfg.CronSchedule))
	return c, nil
}

func runAlertTick(ctx context.Context, cfg config.AlertConfig, runner AlertRunner, logger *zap.Logger) {
	if ctx.Err() != nil {
		return
	}
	if timeout := cfg.RunTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	result, err := runner.Run(ctx)
	if err != nil {
		logger.Error("scheduled sla alert run failed", zap.Error(err))
		return
	}
	logger.Debug("scheduled sla alert run done",
		zap.String("run_id", result.RunID),
		zap.Int("alerts_created", result.AlertsCreated))
}

type cronLogger struct {
	sugar *zap.SugaredLogger
}

func newCronLogger(logger *zap.Logger) cron.Logger {
	return cronLogger{sugar: logger.Sugar()}
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
