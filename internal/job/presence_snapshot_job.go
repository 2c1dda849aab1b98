package job

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"teamchat-service/internal/metrics"
	"teamchat-service/internal/websocket"
)

// StatsSource is satisfied by *websocket.Controller.
type StatsSource interface {
	Stats() websocket.Stats
}

// PresenceSnapshotJob samples the realtime state into the presence gauges.
// It only reads.
type PresenceSnapshotJob struct {
	source  StatsSource
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewPresenceSnapshotJob(source StatsSource, m *metrics.Metrics, logger *zap.Logger) *PresenceSnapshotJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PresenceSnapshotJob{source: source, metrics: m, logger: logger}
}

// Run implements cron.Job.
func (j *PresenceSnapshotJob) Run() {
	stats := j.source.Stats()
	j.metrics.SetPresence(stats.Sessions, stats.TypingMarkers)
	j.logger.Debug("Presence snapshot",
		zap.Int("connections", stats.Connections),
		zap.Int("sessions", stats.Sessions),
		zap.Int("typingMarkers", stats.TypingMarkers),
	)
}

// NewScheduler returns a stopped scheduler with the job registered on spec.
// Panics inside a run are recovered and logged.
func NewScheduler(spec string, j cron.Job, logger *zap.Logger) (*cron.Cron, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cl := cronLogger{logger.Sugar()}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := c.AddJob(spec, j); err != nil {
		return nil, fmt.Errorf("invalid job schedule %q: %w", spec, err)
	}
	return c, nil
}

// cronLogger adapts zap to cron.Logger. Scheduler chatter goes to debug.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
