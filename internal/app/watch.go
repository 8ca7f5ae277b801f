package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PandaWhoCodes/youversion/internal/adapter/scheduler"
	"github.com/PandaWhoCodes/youversion/pkg/result"
	"github.com/PandaWhoCodes/youversion/pkg/youversion"
)

func init() {
	register(command{
		name:    "watch",
		usage:   "[-schedule cron | -every d] [-version id] [-now] [-count n]",
		summary: "print the verse of the day on a schedule",
		run:     runWatch,
	})
}

const shutdownTimeout = 5 * time.Second

// dailyVerse is what watch prints on every run.
type dailyVerse struct {
	Day     int                `json:"day"`
	Version int                `json:"version_id"`
	Passage youversion.Passage `json:"passage"`
}

func runWatch(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet("watch")
	spec := fs.String("schedule", a.cfg.Defaults.Watch.Schedule, "cron spec, e.g. \"0 7 * * *\" or @daily")
	every := fs.Duration("every", 0, "fixed interval instead of -schedule")
	defVersion := a.cfg.Defaults.Watch.VersionID
	if defVersion == 0 {
		defVersion = a.cfg.Defaults.VersionID
	}
	version := fs.Int("version", defVersion, "Bible version id")
	now := fs.Bool("now", false, "also run once immediately")
	count := fs.Int("count", 0, "stop after n verses, 0 runs until interrupted")
	if _, err := parse(fs, args, 0); err != nil {
		return err
	}
	if *every < 0 || *count < 0 {
		return fmt.Errorf("%w: -every and -count cannot be negative", ErrUsage)
	}
	if *every == 0 {
		if err := scheduler.Validate(*spec); err != nil {
			return fmt.Errorf("%w: -schedule: %v", ErrUsage, err)
		}
	}

	return a.withClient(ctx, func(ctx context.Context, c *youversion.Client) error {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		var (
			mu      sync.Mutex
			printed atomic.Int64
		)
		job := func(ctx context.Context) error {
			v, err := a.dailyVerse(ctx, c, *version)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			if err := a.emit(v, func(w io.Writer) {
				fmt.Fprintf(w, "Day %d\n", v.Day)
				writePassage(w, v.Passage)
			}); err != nil {
				return err
			}
			if n := printed.Add(1); *count > 0 && n >= int64(*count) {
				cancel()
			}
			return nil
		}

		s := scheduler.New(ctx, scheduler.Config{Logger: a.log.With(slog.String("component", "watch"))})
		opts := scheduler.JobOptions{Name: "votd", Timeout: a.cfg.API.Timeout + time.Second, Overlap: scheduler.SkipIfRunning}
		if *every > 0 {
			s.Every(*every, job, opts)
		} else if _, err := s.Add(*spec, job, opts); err != nil {
			return err
		}

		if *now {
			if err := job(ctx); err != nil {
				a.log.Error("first run failed", slog.Any("error", err))
			}
		}
		if ctx.Err() == nil {
			s.Start()
			a.log.Info("watching", slog.String("schedule", scheduleLabel(*spec, *every)), slog.Int("version", *version))
			<-ctx.Done()
		}

		stopCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
		defer stop()
		return s.Stop(stopCtx)
	})
}

func scheduleLabel(spec string, every time.Duration) string {
	if every > 0 {
		return "@every " + every.String()
	}
	return spec
}

// dailyVerse resolves today's selection and fetches its text.
func (a *App) dailyVerse(ctx context.Context, c *youversion.Client, version int) (dailyVerse, error) {
	day := a.now().YearDay()
	sel, err := fetch(ctx, a, func(ctx context.Context) (result.Result[youversion.DailySelection], error) {
		return c.GetDailySelection(ctx, day)
	})
	if err != nil {
		return dailyVerse{}, fmt.Errorf("day %d: %w", day, err)
	}
	p, err := fetch(ctx, a, func(ctx context.Context) (result.Result[youversion.Passage], error) {
		return c.GetPassage(ctx, version, sel.PassageID, nil)
	})
	if err != nil {
		return dailyVerse{}, fmt.Errorf("day %d: %s: %w", day, sel.PassageID, err)
	}
	return dailyVerse{Day: day, Version: version, Passage: p}, nil
}
