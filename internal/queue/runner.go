package queue

import (
	"context"
	"time"

	"go.uber.org/zap"

	"meetcrm/internal/metrics"
)

const (
	defaultPollInterval = time.Second
	defaultBatchSize    = 100
)

// DueSource is the claim side of the delay store.
type DueSource interface {
	PopDue(ctx context.Context, now time.Time, limit int) ([]DueJob, error)
	PutBack(ctx context.Context, job DueJob) error
}

// DuePublisher hands a claimed job to the delivery queue.
type DuePublisher interface {
	PublishDue(key string, payload []byte) error
}

// Runner polls the delay store and moves due jobs to the delivery
// queue. Delivery order between jobs follows due time only; nothing
// else is guaranteed.
type Runner struct {
	source    DueSource
	publisher DuePublisher
	logger    *zap.Logger
	interval  time.Duration
	batch     int
	clock     func() time.Time
}

func NewRunner(source DueSource, publisher DuePublisher, logger *zap.Logger) *Runner {
	return &Runner{
		source:    source,
		publisher: publisher,
		logger:    logger,
		interval:  defaultPollInterval,
		batch:     defaultBatchSize,
		clock:     time.Now,
	}
}

// Run blocks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("Delay queue runner started", zap.Duration("poll_interval", r.interval))

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Delay queue runner stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := r.tick(ctx); err != nil {
				r.logger.Error("Delay queue tick failed", zap.Error(err))
			}
		}
	}
}

func (r *Runner) tick(ctx context.Context) error {
	jobs, err := r.source.PopDue(ctx, r.clock(), r.batch)
	if err != nil {
		return err
	}

	for _, job := range jobs {
		if err := r.publisher.PublishDue(job.Key, job.Payload); err != nil {
			metrics.QueueHandoffFailures.Inc()
			r.logger.Error("Failed to hand off due job, putting back",
				zap.String("job_key", job.Key),
				zap.Error(err),
			)
			if err := r.source.PutBack(ctx, job); err != nil {
				r.logger.Error("Failed to put job back",
					zap.String("job_key", job.Key),
					zap.Error(err),
				)
			}
			continue
		}
		r.logger.Debug("Due job handed off", zap.String("job_key", job.Key))
	}

	return nil
}
