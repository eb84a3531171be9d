package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sado-notes-be/internal/pkg/logger"
	"sado-notes-be/pkg/apperror"
	"sado-notes-be/pkg/metrics"

	"github.com/robfig/cron/v3"
)

const module = "SCHEDULER"

// FireFunc is invoked on a worker goroutine each time a job's trigger matches.
type FireFunc func(ctx context.Context, key JobKey)

type Options struct {
	Location    *time.Location
	Workers     int
	QueueSize   int
	FireTimeout time.Duration
	// Strict turns a broken one-job-per-key invariant into a panic.
	Strict  bool
	Logger  logger.ILogger
	Metrics *metrics.ReminderMetrics
}

type installedJob struct {
	id      cron.EntryID
	trigger Trigger
}

// Scheduler owns the table of recurring reminder jobs. All table mutations
// go through mu; cron only ever enqueues keys, and workers drain the queue.
type Scheduler struct {
	mu      sync.Mutex
	cron    *cron.Cron
	jobs    map[JobKey]installedJob
	queue   chan JobKey
	opts    Options
	logger  logger.ILogger
	metrics *metrics.ReminderMetrics

	started bool
	stopped bool
	wg      sync.WaitGroup
	cancel  context.CancelFunc
}

// keyedJob is what cron holds for every installed reminder.
type keyedJob struct {
	key JobKey
	s   *Scheduler
}

func (j keyedJob) Run() {
	j.s.enqueue(j.key)
}

func New(opts Options) *Scheduler {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.FireTimeout <= 0 {
		opts.FireTimeout = time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNopLogger()
	}

	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(opts.Location),
			cron.WithLogger(cronLogger{log: opts.Logger}),
		),
		jobs:    make(map[JobKey]installedJob),
		queue:   make(chan JobKey, opts.QueueSize),
		opts:    opts,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
}

func (s *Scheduler) Location() *time.Location {
	return s.opts.Location
}

// Install replaces whatever job is registered under key with one firing on
// trigger. Two installs for the same key always leave exactly one job.
func (s *Scheduler) Install(key JobKey, trigger Trigger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.jobs[key]; ok {
		s.cron.Remove(prev.id)
		delete(s.jobs, key)
	}

	id, err := s.cron.AddJob(trigger.Spec(), keyedJob{key: key, s: s})
	if err != nil {
		return apperror.Wrap(apperror.CodeValidation, err, fmt.Sprintf("invalid trigger %s", trigger))
	}
	s.jobs[key] = installedJob{id: id, trigger: trigger}

	if n := s.countEntries(key); n != 1 {
		msg := fmt.Sprintf("job %s has %d cron entries after install", key, n)
		s.logger.Error(module, "scheduler invariant violated", map[string]interface{}{
			"job_id": key.String(),
			"count":  n,
		})
		if s.opts.Strict {
			panic(msg)
		}
		return apperror.SchedulerInvariant(msg)
	}

	s.metrics.SetActiveJobs(len(s.jobs))
	s.logger.Info(module, "job installed", map[string]interface{}{
		"job_id":  key.String(),
		"trigger": trigger.String(),
	})
	return nil
}

// Remove drops the job under key. Reports whether a job existed.
func (s *Scheduler) Remove(key JobKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.jobs[key]
	if !ok {
		return false
	}
	s.cron.Remove(prev.id)
	delete(s.jobs, key)

	s.metrics.SetActiveJobs(len(s.jobs))
	s.logger.Info(module, "job removed", map[string]interface{}{"job_id": key.String()})
	return true
}

func (s *Scheduler) Has(key JobKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[key]
	return ok
}

func (s *Scheduler) Trigger(key JobKey) (Trigger, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[key]
	return job.trigger, ok
}

// Next returns the next fire time of key, or the zero time if unknown.
func (s *Scheduler) Next(key JobKey) time.Time {
	s.mu.Lock()
	job, ok := s.jobs[key]
	s.mu.Unlock()
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(job.id).Next
}

func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// countEntries inspects cron's own table. Caller holds mu.
func (s *Scheduler) countEntries(key JobKey) int {
	n := 0
	for _, entry := range s.cron.Entries() {
		if job, ok := entry.Job.(keyedJob); ok && job.key == key {
			n++
		}
	}
	return n
}

// Start launches the cron clock and the worker pool. handler runs once per fire.
func (s *Scheduler) Start(ctx context.Context, handler FireFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.stopped {
		return
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	for i := 0; i < s.opts.Workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx, handler)
	}
	s.cron.Start()

	s.logger.Info(module, "scheduler started", map[string]interface{}{
		"workers":  s.opts.Workers,
		"jobs":     len(s.jobs),
		"location": s.opts.Location.String(),
	})
}

// Stop halts the clock, lets queued fires finish and waits for the workers.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.stopped = true
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	close(s.queue)
	s.wg.Wait()
	s.cancel()

	s.logger.Info(module, "scheduler stopped", nil)
}

func (s *Scheduler) enqueue(key JobKey) {
	select {
	case s.queue <- key:
	default:
		// The next tick is the retry.
		s.logger.Warn(module, "fire queue full, dropping fire", map[string]interface{}{
			"job_id": key.String(),
		})
	}
}

func (s *Scheduler) worker(ctx context.Context, handler FireFunc) {
	defer s.wg.Done()
	for key := range s.queue {
		s.fire(ctx, handler, key)
	}
}

func (s *Scheduler) fire(ctx context.Context, handler FireFunc, key JobKey) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(module, "reminder fire panicked", map[string]interface{}{
				"job_id": key.String(),
				"panic":  fmt.Sprint(r),
			})
		}
	}()

	fireCtx, cancel := context.WithTimeout(ctx, s.opts.FireTimeout)
	defer cancel()
	handler(fireCtx, key)
}

// cronLogger routes cron's internal logging into ILogger.
type cronLogger struct {
	log logger.ILogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(module, msg, kvToMap(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	details := kvToMap(keysAndValues)
	details["error"] = err.Error()
	l.log.Error(module, msg, details)
}

func kvToMap(keysAndValues []interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(keysAndValues)/2+1)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		out[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return out
}
