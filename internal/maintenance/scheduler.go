package maintenance

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/vytor/wordflash/internal/jobs"
	"github.com/vytor/wordflash/internal/logger"
)

// TriggerCron marks reconciliation passes started by the schedule.
const TriggerCron = "cron"

// Scheduler enqueues periodic maintenance jobs. It never runs them itself;
// the worker pool behind the queue does.
type Scheduler struct {
	scheduler *gocron.Scheduler
	queue     jobs.JobQueue
	log       *logger.Logger
}

// New creates a scheduler that submits work to queue.
func New(queue jobs.JobQueue) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		queue:     queue,
		log:       logger.Default().WithPrefix("maintenance"),
	}
}

// ScheduleReconcile registers the shown_count reconciliation on a standard
// five-field cron expression. An empty expression leaves it disabled.
func (s *Scheduler) ScheduleReconcile(expr string) error {
	if expr == "" {
		s.log.Info("scheduled reconciliation disabled")
		return nil
	}

	_, err := s.scheduler.Cron(expr).Do(s.enqueueReconcile)
	if err != nil {
		return fmt.Errorf("schedule reconcile %q: %w", expr, err)
	}
	s.log.Info("scheduled reconciliation: cron=%q", expr)
	return nil
}

func (s *Scheduler) enqueueReconcile() {
	if err := s.queue.EnqueueReconcile(TriggerCron); err != nil {
		s.log.Warn("failed to enqueue scheduled reconciliation: %v", err)
	}
}

// Jobs returns the number of registered jobs.
func (s *Scheduler) Jobs() int {
	return s.scheduler.Len()
}

// Start begins running scheduled jobs without blocking.
func (s *Scheduler) Start() {
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled jobs
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}
