package simulator

import (
	"context"
	"fmt"

	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type cronLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}

// runSnapshotSchedule queues an extra KPI snapshot on every wall-clock firing
// of Config.SnapshotSchedule until ctx is done.
func (s *Simulator) runSnapshotSchedule(ctx context.Context) error {
	c := cron.New(cron.WithLogger(cronLogger{sugar: s.logger.Sugar()}))
	_, err := c.AddFunc(s.Config.SnapshotSchedule, s.queueScheduledSnapshot)
	if err != nil {
		return fmt.Errorf("invalid snapshot schedule %q: %w", s.Config.SnapshotSchedule, err)
	}

	c.Start()
	s.logger.Info("snapshot schedule started", zap.String("schedule", s.Config.SnapshotSchedule))
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

func (s *Simulator) queueScheduledSnapshot() {
	s.EventQueue.Enqueue(&models.Event{
		Time: s.Now(),
		Type: models.EventKPISnapshot,
		Data: snapshotRequest{reschedule: false},
	})
}
