package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// Refresher reloads station data when its source changed.
type Refresher interface {
	Refresh(ctx context.Context) (bool, error)
}

// Scheduler periodically checks the data directory for changes.
type Scheduler struct {
	scheduler *gocron.Scheduler
	cache     Refresher
	interval  time.Duration
}

// New creates a new Scheduler.
func New(interval time.Duration, cache Refresher) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		cache:     cache,
		interval:  interval,
	}
}

// Start schedules the refresh job and starts the underlying scheduler.
// A non-positive interval disables the job.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		log.Println("scheduler: refresh interval not set; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().SingletonMode().Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	changed, err := s.cache.Refresh(ctx)
	if err != nil {
		log.Printf("scheduler: refresh failed: %v", err)
		return
	}
	if changed {
		log.Println("scheduler: station data reloaded")
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
