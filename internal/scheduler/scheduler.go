package scheduler

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// DefaultInterval is used when the configured interval is not positive.
const DefaultInterval = 15 * time.Minute

// Refresher re-fetches whatever it is currently showing.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler periodically refreshes a target.
type Scheduler struct {
	scheduler *gocron.Scheduler
	target    Refresher
	interval  time.Duration
	timeout   time.Duration

	// OnRefresh, when set, is called after every run with its result.
	OnRefresh func(err error)

	// WaitForSchedule skips the immediate first run; the first refresh
	// happens one interval after Start.
	WaitForSchedule bool
}

// New creates a new Scheduler. Each run is bounded by timeout.
func New(target Refresher, interval, timeout time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if timeout <= 0 || timeout > interval {
		timeout = interval
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		target:    target,
		interval:  interval,
		timeout:   timeout,
	}
}

// Start schedules the refresh job and starts the underlying scheduler. The
// first run happens immediately unless WaitForSchedule is set.
func (s *Scheduler) Start() error {
	if s.target == nil {
		return errors.New("scheduler: no refresh target")
	}

	job := s.scheduler.Every(s.interval).SingletonMode()
	if s.WaitForSchedule {
		job = job.WaitForSchedule()
	}
	_, err := job.Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	log.Printf("INFO: scheduler: refreshing every %s", s.interval)
	return nil
}

func (s *Scheduler) run() {
	log.Println("DEBUG: scheduler: running refresh job")

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	err := s.target.Refresh(ctx)
	if err != nil {
		log.Printf("WARN: scheduler: refresh failed: %v", err)
	}
	if s.OnRefresh != nil {
		s.OnRefresh(err)
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
