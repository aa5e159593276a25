// services/scheduler.go
package services

import (
	"errors"
	"sync"
	"time"

	"focargo/logger"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

// Scheduler runs delayed one-shot callbacks addressed by key.
// Scheduling a key again replaces the pending callback.
type Scheduler interface {
	After(key string, delay time.Duration, fn func()) error
	Cancel(key string)
	Shutdown() error
}

type pendingJob struct {
	jobID uuid.UUID
	token uint64
}

// CronScheduler backs Scheduler with gocron one-time jobs.
type CronScheduler struct {
	cron gocron.Scheduler
	log  *logger.Logger

	mu   sync.Mutex
	seq  uint64
	jobs map[string]pendingJob
}

func NewCronScheduler(log *logger.Logger) (*CronScheduler, error) {
	cron, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	cron.Start()
	return &CronScheduler{
		cron: cron,
		log:  log.With("service", "Scheduler"),
		jobs: make(map[string]pendingJob),
	}, nil
}

func (s *CronScheduler) After(key string, delay time.Duration, fn func()) error {
	s.mu.Lock()
	prev, hadPrev := s.jobs[key]
	s.seq++
	token := s.seq

	// Start dates in the past are rejected by gocron, so very short delays run immediately.
	start := gocron.OneTimeJobStartImmediately()
	if delay > 10*time.Millisecond {
		start = gocron.OneTimeJobStartDateTime(time.Now().Add(delay))
	}
	job, err := s.cron.NewJob(
		gocron.OneTimeJob(start),
		gocron.NewTask(func() {
			if !s.claim(key, token) {
				return
			}
			fn()
		}),
	)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.jobs[key] = pendingJob{jobID: job.ID(), token: token}
	s.mu.Unlock()

	if hadPrev {
		s.remove(prev.jobID)
	}
	return nil
}

func (s *CronScheduler) Cancel(key string) {
	s.mu.Lock()
	pending, ok := s.jobs[key]
	delete(s.jobs, key)
	s.mu.Unlock()

	if ok {
		s.remove(pending.jobID)
	}
}

func (s *CronScheduler) Shutdown() error {
	s.mu.Lock()
	s.jobs = make(map[string]pendingJob)
	s.mu.Unlock()
	return s.cron.Shutdown()
}

// claim reports whether token is still the live job for key, consuming it.
func (s *CronScheduler) claim(key string, token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending, ok := s.jobs[key]
	if !ok || pending.token != token {
		return false
	}
	delete(s.jobs, key)
	return true
}

func (s *CronScheduler) remove(id uuid.UUID) {
	// A job that already ran is gone from gocron; that is not an error here.
	if err := s.cron.RemoveJob(id); err != nil && !errors.Is(err, gocron.ErrJobNotFound) {
		s.log.Warn("failed to remove scheduled job", "job_id", id.String(), "error", err.Error())
	}
}
