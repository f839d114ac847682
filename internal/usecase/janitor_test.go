package usecase

import (
	"context"
	"errors"
	"testing"
	"time"
)

type immediateScheduler struct {
	started bool
	stopped bool
}

func (s *immediateScheduler) Start(_ context.Context, job func(time.Time)) error {
	s.started = true
	job(time.Now())
	job(time.Now())
	return nil
}

func (s *immediateScheduler) Stop(context.Context) error {
	s.stopped = true
	return nil
}

type countingStore struct {
	calls int
	err   error
}

func (c *countingStore) PurgeExpired(context.Context) (int, error) {
	c.calls++
	return 3, c.err
}

func TestJanitorRunsPurgeOnEveryTick(t *testing.T) {
	t.Parallel()

	driver := &immediateScheduler{}
	store := &countingStore{}
	j := NewJanitor(driver, store, nil)

	if err := j.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if store.calls != 2 {
		t.Fatalf("expected 2 purges, got %d", store.calls)
	}
	if err := j.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !driver.stopped {
		t.Fatalf("driver was not stopped")
	}
}

func TestJanitorToleratesPurgeErrors(t *testing.T) {
	t.Parallel()

	store := &countingStore{err: errors.New("disk I/O error")}
	j := NewJanitor(&immediateScheduler{}, store, nil)

	if err := j.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if store.calls != 2 {
		t.Fatalf("expected purges to continue after errors, got %d", store.calls)
	}
}

func TestJanitorWithoutStoreIsNoop(t *testing.T) {
	t.Parallel()

	driver := &immediateScheduler{}
	j := NewJanitor(driver, nil, nil)
	if err := j.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if driver.started {
		t.Fatalf("driver should not start without a store")
	}
}
