package worker

import (
	"context"
	"log/slog"
	"time"

	"draftdesk/internal/usecase/autopublish"
)

// CycleRunner is the part of autopublish.Gate the job needs.
type CycleRunner interface {
	RunCycle(ctx context.Context, p autopublish.Policy) (*autopublish.CycleResult, error)
}

// CycleJob runs one auto-publish cycle per cron tick.
type CycleJob struct {
	Gate    CycleRunner
	Policy  func() autopublish.Policy
	Timeout time.Duration
	Metrics *WorkerMetrics
	Logger  *slog.Logger
}

// Run executes one cycle under Timeout. Errors are logged and counted; the
// scheduler keeps running.
func (j *CycleJob) Run() {
	start := time.Now()
	j.Metrics.RecordJobRun("started")
	j.Logger.Info("auto-publish cycle started")

	ctx, cancel := context.WithTimeout(context.Background(), j.Timeout)
	defer cancel()

	res, err := j.Gate.RunCycle(ctx, j.Policy())
	j.Metrics.RecordJobDuration(time.Since(start).Seconds())
	if err != nil {
		j.Logger.Error("auto-publish cycle failed", slog.Any("error", err))
		j.Metrics.RecordJobRun("failure")
		return
	}

	j.Metrics.RecordJobRun("success")
	j.Metrics.RecordArticles(res.Published, res.Failed, res.Skipped)
	j.Metrics.RecordLastSuccess()
	j.Logger.Info("auto-publish cycle finished",
		slog.Int("checked", res.Checked),
		slog.Int("published", res.Published),
		slog.Int("failed", res.Failed),
		slog.Int("skipped", res.Skipped),
		slog.String("note", res.Note),
		slog.Duration("duration", time.Since(start)))
}
