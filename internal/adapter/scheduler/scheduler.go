package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one unit of scheduled work.
type Job func(ctx context.Context) error

// EntryID identifies a cron entry.
type EntryID = cron.EntryID

// OverlapPolicy controls what happens when a run is due while the previous
// one is still going.
type OverlapPolicy int

const (
	// AllowOverlap starts the new run regardless.
	AllowOverlap OverlapPolicy = iota
	// SkipIfRunning drops the new run.
	SkipIfRunning
	// DelayIfRunning starts the new run once the previous one finishes.
	DelayIfRunning
)

// JobOptions tune a single job.
type JobOptions struct {
	Name    string
	Timeout time.Duration
	Overlap OverlapPolicy
}

// Hooks observe job runs.
type Hooks struct {
	OnStart  func(name string)
	OnFinish func(name string, took time.Duration, err error)
}

// Config configures a Scheduler.
type Config struct {
	Logger *slog.Logger
	// Location interprets cron specs. Defaults to time.Local.
	Location *time.Location
	Hooks    Hooks
}

// Parser accepts standard five-field specs, an optional leading seconds
// field, and descriptors such as @daily or @every 1h.
var Parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Validate reports whether spec parses.
func Validate(spec string) error {
	_, err := Parser.Parse(spec)
	return err
}

// Scheduler runs jobs on cron specs or fixed intervals until stopped.
type Scheduler struct {
	cron   *cron.Cron
	log    *slog.Logger
	hooks  Hooks
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	startOnce sync.Once
	started   chan struct{}
	stopOnce  sync.Once
	stopped   chan struct{}
}

// New creates a Scheduler whose jobs are canceled together with parent.
func New(parent context.Context, cfg Config) *Scheduler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	ctx, cancel := context.WithCancel(parent)
	return &Scheduler{
		cron: cron.New(
			cron.WithParser(Parser),
			cron.WithLocation(loc),
			cron.WithLogger(cronLogger{log.With(slog.String("component", "cron"))}),
		),
		log:     log,
		hooks:   cfg.Hooks,
		ctx:     ctx,
		cancel:  cancel,
		started: make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Add schedules job on a cron spec.
func (s *Scheduler) Add(spec string, job Job, opts JobOptions) (EntryID, error) {
	var wrappers []cron.JobWrapper
	switch opts.Overlap {
	case SkipIfRunning:
		wrappers = append(wrappers, cron.SkipIfStillRunning(cronLogger{s.log}))
	case DelayIfRunning:
		wrappers = append(wrappers, cron.DelayIfStillRunning(cronLogger{s.log}))
	}

	id, err := s.cron.AddJob(spec, cron.NewChain(wrappers...).Then(cron.FuncJob(func() {
		s.run(job, opts)
	})))
	if err != nil {
		return 0, fmt.Errorf("scheduler: add %q: %w", spec, err)
	}
	s.log.Debug("cron job added", slog.String("name", opts.Name), slog.String("spec", spec))
	return id, nil
}

// Every runs job at a fixed interval, which may be shorter than a second,
// once the scheduler is started. Ticks that arrive while a run is still
// active are dropped, so interval jobs never overlap.
func (s *Scheduler) Every(interval time.Duration, job Job, opts JobOptions) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		select {
		case <-s.started:
		case <-s.ctx.Done():
			return
		}
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-s.ctx.Done():
				return
			case <-t.C:
				s.run(job, opts)
			}
		}
	}()
}

// Remove unschedules a cron entry.
func (s *Scheduler) Remove(id EntryID) { s.cron.Remove(id) }

// Next returns the next activation of a cron entry, or the zero time.
func (s *Scheduler) Next(id EntryID) time.Time {
	return s.cron.Entry(id).Next
}

// Start begins running jobs. Later calls are no-ops.
func (s *Scheduler) Start() {
	s.startOnce.Do(func() {
		s.cron.Start()
		close(s.started)
		go func() {
			<-s.ctx.Done()
			s.stopOnce.Do(s.stop)
		}()
	})
}

// Done is closed once the scheduler has fully stopped.
func (s *Scheduler) Done() <-chan struct{} { return s.stopped }

// Stop cancels running jobs and waits for them until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	go s.stopOnce.Do(s.stop)
	select {
	case <-s.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
	close(s.stopped)
	s.log.Debug("scheduler stopped")
}

func (s *Scheduler) run(job Job, opts JobOptions) {
	name := opts.Name
	if name == "" {
		name = "unnamed"
	}
	if s.ctx.Err() != nil {
		return
	}
	if s.hooks.OnStart != nil {
		s.hooks.OnStart(name)
	}

	ctx := s.ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	err := safeRun(ctx, job)
	took := time.Since(start)

	if s.hooks.OnFinish != nil {
		s.hooks.OnFinish(name, took, err)
	}
	if err != nil {
		s.log.Error("job failed", slog.String("name", name), slog.Duration("took", took), slog.Any("error", err))
		return
	}
	s.log.Debug("job done", slog.String("name", name), slog.Duration("took", took))
}

func safeRun(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return job(ctx)
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct{ log *slog.Logger }

func (l cronLogger) Info(msg string, kv ...any) {
	l.log.Debug(msg, kv...)
}

func (l cronLogger) Error(err error, msg string, kv ...any) {
	l.log.Error(msg, append([]any{slog.Any("error", err)}, kv...)...)
}
