package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newScheduler(t *testing.T, cfg Config) *Scheduler {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = discard()
	}
	s := New(context.Background(), cfg)
	t.Cleanup(func() { _ = s.Stop(context.Background()) })
	return s
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("0 7 * * *"))
	assert.NoError(t, Validate("*/5 0 7 * * *"))
	assert.NoError(t, Validate("@daily"))
	assert.NoError(t, Validate("@every 1h"))
	assert.Error(t, Validate("whenever"))
	assert.Error(t, Validate("61 * * * *"))
}

func TestScheduler_Add(t *testing.T) {
	s := newScheduler(t, Config{})

	var n atomic.Int64
	id, err := s.Add("@every 1s", func(context.Context) error {
		n.Add(1)
		return nil
	}, JobOptions{Name: "tick"})
	require.NoError(t, err)

	s.Start()
	assert.False(t, s.Next(id).IsZero())
	require.Eventually(t, func() bool { return n.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
}

func TestScheduler_AddInvalid(t *testing.T) {
	s := newScheduler(t, Config{})
	_, err := s.Add("invalid schedule", func(context.Context) error { return nil }, JobOptions{})
	assert.ErrorContains(t, err, "invalid schedule")
}

func TestScheduler_Remove(t *testing.T) {
	s := newScheduler(t, Config{})
	id, err := s.Add("@daily", func(context.Context) error { return nil }, JobOptions{})
	require.NoError(t, err)

	s.Start()
	s.Remove(id)
	assert.True(t, s.Next(id).IsZero())
}

func TestScheduler_EveryKeepsRunningAfterFailures(t *testing.T) {
	var mu sync.Mutex
	var errs []error
	s := newScheduler(t, Config{Hooks: Hooks{
		OnFinish: func(name string, _ time.Duration, err error) {
			mu.Lock()
			defer mu.Unlock()
			assert.Equal(t, "flaky", name)
			errs = append(errs, err)
		},
	}})

	var n atomic.Int64
	s.Every(20*time.Millisecond, func(context.Context) error {
		switch n.Add(1) {
		case 1:
			panic("boom")
		case 2:
			return errors.New("failed")
		}
		return nil
	}, JobOptions{Name: "flaky"})
	s.Start()

	require.Eventually(t, func() bool { return n.Load() >= 3 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(errs), 3)
	assert.EqualError(t, errs[0], "panic: boom")
	assert.EqualError(t, errs[1], "failed")
	assert.NoError(t, errs[2])
}

func TestScheduler_EverySkipsOverlap(t *testing.T) {
	s := newScheduler(t, Config{})

	var active, maxActive atomic.Int64
	s.Every(5*time.Millisecond, func(context.Context) error {
		cur := active.Add(1)
		defer active.Add(-1)
		if cur > maxActive.Load() {
			maxActive.Store(cur)
		}
		time.Sleep(30 * time.Millisecond)
		return nil
	}, JobOptions{})
	s.Start()

	time.Sleep(150 * time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))
	assert.Equal(t, int64(1), maxActive.Load())
}

func TestScheduler_Timeout(t *testing.T) {
	done := make(chan error, 1)
	s := newScheduler(t, Config{Hooks: Hooks{
		OnFinish: func(_ string, _ time.Duration, err error) {
			select {
			case done <- err:
			default:
			}
		},
	}})

	s.Every(10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, JobOptions{Timeout: 20 * time.Millisecond})
	s.Start()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(2 * time.Second):
		t.Fatal("job did not time out")
	}
}

func TestScheduler_ParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New(ctx, Config{Logger: discard()})

	var n atomic.Int64
	s.Every(10*time.Millisecond, func(context.Context) error { n.Add(1); return nil }, JobOptions{})
	s.Start()
	require.Eventually(t, func() bool { return n.Load() >= 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after parent cancel")
	}
	after := n.Load()
	assert.Never(t, func() bool { return n.Load() > after }, 100*time.Millisecond, 10*time.Millisecond)
}

func TestScheduler_StopIdempotent(t *testing.T) {
	s := newScheduler(t, Config{})
	s.Start()
	s.Start()

	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
}

func TestScheduler_StopDeadline(t *testing.T) {
	s := newScheduler(t, Config{})

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	s.Every(5*time.Millisecond, func(context.Context) error {
		once.Do(func() { close(started) })
		<-release
		return nil
	}, JobOptions{})
	s.Start()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Stop(ctx), context.DeadlineExceeded)

	close(release)
	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not finish stopping")
	}
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	s := New(context.Background(), Config{Logger: discard()})
	assert.NoError(t, s.Stop(context.Background()))
}
