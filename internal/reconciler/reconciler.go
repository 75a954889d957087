package reconciler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"meetcrm/internal/model"
)

// UpcomingSource lists events that still lie in the future.
type UpcomingSource interface {
	ListUpcomingMeets(ctx context.Context, from time.Time) ([]model.Meet, error)
	ListUpcomingLectures(ctx context.Context, from time.Time) ([]model.Lecture, error)
}

// EventScheduler re-enqueues reminders; enqueues replace by key, so
// resyncing an already scheduled event is harmless.
type EventScheduler interface {
	ScheduleForMeet(ctx context.Context, id uuid.UUID) error
	ScheduleForLecture(ctx context.Context, id uuid.UUID) error
}

// TokenPurger drops expired refresh tokens.
type TokenPurger interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Reconciler periodically resyncs reminders from the database into the
// delay store. It repairs drift after Redis restarts or missed
// schedule calls, and purges stale refresh tokens nightly.
type Reconciler struct {
	source    UpcomingSource
	scheduler EventScheduler
	tokens    TokenPurger
	logger    *zap.Logger
	cron      *cron.Cron
	clock     func() time.Time
}

func New(source UpcomingSource, scheduler EventScheduler, tokens TokenPurger, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		source:    source,
		scheduler: scheduler,
		tokens:    tokens,
		logger:    logger,
		cron:      cron.New(),
		clock:     time.Now,
	}
}

// Start registers the jobs and launches the cron loop.
func (r *Reconciler) Start() error {
	if _, err := r.cron.AddFunc("@every 10m", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		r.Resync(ctx)
	}); err != nil {
		return err
	}
	if _, err := r.cron.AddFunc("0 3 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		r.purgeTokens(ctx)
	}); err != nil {
		return err
	}
	r.cron.Start()
	return nil
}

// Stop waits for running jobs to finish.
func (r *Reconciler) Stop() {
	<-r.cron.Stop().Done()
}

// Resync walks all upcoming events and reschedules their reminders.
func (r *Reconciler) Resync(ctx context.Context) {
	now := r.clock()

	meets, err := r.source.ListUpcomingMeets(ctx, now)
	if err != nil {
		r.logger.Error("Resync: failed to list upcoming meets", zap.Error(err))
	} else {
		for i := range meets {
			if err := r.scheduler.ScheduleForMeet(ctx, meets[i].ID); err != nil {
				r.logger.Error("Resync: failed to schedule meet reminder",
					zap.String("meet_id", meets[i].ID.String()),
					zap.Error(err),
				)
			}
		}
	}

	lectures, err := r.source.ListUpcomingLectures(ctx, now)
	if err != nil {
		r.logger.Error("Resync: failed to list upcoming lectures", zap.Error(err))
		return
	}
	for i := range lectures {
		if err := r.scheduler.ScheduleForLecture(ctx, lectures[i].ID); err != nil {
			r.logger.Error("Resync: failed to schedule lecture reminder",
				zap.String("lecture_id", lectures[i].ID.String()),
				zap.Error(err),
			)
		}
	}
}

func (r *Reconciler) purgeTokens(ctx context.Context) {
	n, err := r.tokens.DeleteExpired(ctx, r.clock())
	if err != nil {
		r.logger.Error("Failed to purge expired refresh tokens", zap.Error(err))
		return
	}
	if n > 0 {
		r.logger.Info("Purged expired refresh tokens", zap.Int64("count", n))
	}
}
