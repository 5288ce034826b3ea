package watch

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	ferrors "github.com/ultravioletrs/cube-docs/internal/foundation/errors"
)

// Scheduler fires periodic revalidation requests.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// NewScheduler creates a stopped scheduler.
func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, ferrors.InternalError("failed to create scheduler").WithCause(err).Build()
	}
	return &Scheduler{scheduler: s}, nil
}

// Every calls task at interval. Runs of the same job never overlap; a tick
// that arrives while the task is still running is skipped.
func (s *Scheduler) Every(interval time.Duration, name string, task func()) (string, error) {
	if interval <= 0 {
		return "", ferrors.ConfigError("schedule interval must be positive").
			WithField("interval").
			WithContext("value", interval.String()).
			Build()
	}
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", ferrors.InternalError("failed to schedule job").WithCause(err).
			WithContext("name", name).
			Build()
	}
	slog.Info("Scheduled periodic revalidation", slog.String("name", name), slog.Duration("interval", interval))
	return job.ID().String(), nil
}

// Start begins firing jobs.
func (s *Scheduler) Start() {
	s.scheduler.Start()
}

// Stop shuts the scheduler down, waiting for running jobs.
func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}
