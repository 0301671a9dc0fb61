package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// RunObserver is told about every finished job run, successful or not.
type RunObserver func(job string, d time.Duration, err error)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithRunObserver reports each job run to fn, typically a metrics sink.
func WithRunObserver(fn RunObserver) Option {
	return func(s *Scheduler) { s.observe = fn }
}

// Scheduler runs registered jobs on 5-field cron expressions or
// descriptors such as "@daily". A tick is skipped while the previous run
// of the same job is still going, and a panicking job is logged instead of
// taking the process down.
type Scheduler struct {
	mu      sync.Mutex
	cron    *cron.Cron
	jobs    map[string]*entry
	order   []string
	logger  *slog.Logger
	observe RunObserver
	cancel  context.CancelFunc
}

type entry struct {
	job  Job
	busy sync.Mutex
}

// scheduleParser accepts 5-field expressions and descriptors.
var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ValidateSchedule reports whether expr is a schedule the Scheduler accepts.
func ValidateSchedule(expr string) error {
	if _, err := scheduleParser.Parse(expr); err != nil {
		return fmt.Errorf("cron: invalid schedule %q: %w", expr, err)
	}
	return nil
}

// NewScheduler creates a scheduler. Jobs must be registered before Start().
func NewScheduler(logger *slog.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		jobs:   make(map[string]*entry),
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterJob adds a job. Names must be unique.
func (s *Scheduler) RegisterJob(j Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := j.Name()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("cron: duplicate job name %q", name)
	}
	s.jobs[name] = &entry{job: j}
	s.order = append(s.order, name)
	return nil
}

// Jobs returns the registered job names in registration order.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

// Start schedules every registered job. An invalid schedule aborts Start
// before anything runs.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	c := cron.New(
		cron.WithParser(scheduleParser),
		cron.WithChain(cron.Recover(cronLogger{s.logger})),
	)

	for _, name := range s.order {
		e := s.jobs[name]
		if _, err := c.AddFunc(e.job.Schedule(), func() { s.run(ctx, e) }); err != nil {
			cancel()
			return fmt.Errorf("cron: invalid schedule for job %q: %w", name, err)
		}
	}

	s.cron, s.cancel = c, cancel
	c.Start()
	s.logger.Info("cron: scheduler started", "jobs", len(s.order))
	return nil
}

func (s *Scheduler) run(ctx context.Context, e *entry) {
	name := e.job.Name()
	if !e.busy.TryLock() {
		s.logger.Warn("cron: job still running, skipping tick", "job", name)
		return
	}
	defer e.busy.Unlock()

	start := time.Now()
	err := e.job.Run(ctx)
	d := time.Since(start)
	if s.observe != nil {
		s.observe(name, d, err)
	}
	if err != nil {
		s.logger.Error("cron: job failed", "job", name, "duration", d, "error", err)
		return
	}
	s.logger.Debug("cron: job completed", "job", name, "duration", d)
}

// Stop cancels running jobs and waits for them to return, or for ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return nil
	}
	s.cancel()
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("cron: scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("cron: waiting for running jobs: %w", ctx.Err())
	}
}

// cronLogger adapts slog to the logger robfig/cron expects.
type cronLogger struct{ l *slog.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
