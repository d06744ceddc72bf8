package multiblog

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// warmTimeout bounds one scheduled refetch of every tenant.
const warmTimeout = 2 * time.Minute

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}

// startWarmer refetches every tenant's content on schedule so that visitors
// rarely hit a cold cache. A run still in progress skips the next tick.
func (a *App) startWarmer(schedule string) error {
	logger := cronLogger{l: a.logger.Sugar().Named("warmer")}
	c := cron.New(cron.WithChain(
		cron.Recover(logger),
		cron.SkipIfStillRunning(logger),
	), cron.WithLogger(logger))

	if _, err := c.AddFunc(schedule, a.warm); err != nil {
		return err
	}
	a.warmer = c
	c.Start()
	a.logger.Info("cache warmer scheduled", zap.String("schedule", schedule))
	return nil
}

func (a *App) warm() {
	ctx, cancel := context.WithTimeout(context.Background(), warmTimeout)
	defer cancel()
	if _, err := a.Resolver.EnumerateStaticPaths(ctx); err != nil {
		a.logger.Warn("cache warm failed", zap.Error(err))
	}
}
