package notifications

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"streamwatch/internal/logging"
)

func TestDesktopServiceNeverOverlaps(t *testing.T) {
	const duration = 20 * time.Millisecond
	var mu sync.Mutex
	var starts []time.Time

	slot := make(chan struct{}, 1)
	svc := newDesktopService(func(string, string, string) error {
		mu.Lock()
		starts = append(starts, time.Now())
		mu.Unlock()
		return nil
	}, slot, logging.NewNop())

	var wg sync.WaitGroup
	for _, title := range []string{"a", "b", "c", "d"} {
		wg.Add(1)
		go func(title string) {
			defer wg.Done()
			_ = svc.Notify(context.Background(), Notification{Title: title, Duration: duration})
		}(title)
	}
	wg.Wait()

	if len(starts) != 4 {
		t.Fatalf("expected 4 presentations, got %d", len(starts))
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })
	for i := 1; i < len(starts); i++ {
		if gap := starts[i].Sub(starts[i-1]); gap < duration {
			t.Fatalf("presentation %d started %s after the previous one; expected at least %s", i, gap, duration)
		}
	}
}

func TestDesktopServiceHoldsSlotForDuration(t *testing.T) {
	slot := make(chan struct{}, 1)
	svc := newDesktopService(func(string, string, string) error { return nil }, slot, logging.NewNop())

	start := time.Now()
	if err := svc.Notify(context.Background(), Notification{Title: "x", Duration: 30 * time.Millisecond}); err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Fatalf("expected Notify to block for the duration, returned after %s", elapsed)
	}
	if len(slot) != 0 {
		t.Fatal("expected slot released after Notify")
	}
}

func TestDesktopServiceCancellationReleasesSlot(t *testing.T) {
	slot := make(chan struct{}, 1)
	svc := newDesktopService(func(string, string, string) error { return nil }, slot, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- svc.Notify(ctx, Notification{Title: "long", Duration: time.Hour})
	}()

	deadline := time.Now().Add(time.Second)
	for len(slot) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Notify did not return after cancellation")
	}
	if len(slot) != 0 {
		t.Fatal("expected slot released after cancellation")
	}
}

func TestDesktopServiceWaitsForSlotUntilCancelled(t *testing.T) {
	slot := make(chan struct{}, 1)
	slot <- struct{}{}
	var presented atomic.Bool
	svc := newDesktopService(func(string, string, string) error {
		presented.Store(true)
		return nil
	}, slot, logging.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := svc.Notify(ctx, Notification{Title: "blocked"}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded while slot busy, got %v", err)
	}
	if presented.Load() {
		t.Fatal("expected no presentation while another notification holds the slot")
	}
}

func TestDesktopServicePresenterError(t *testing.T) {
	slot := make(chan struct{}, 1)
	svc := newDesktopService(func(string, string, string) error { return errors.New("no dbus") }, slot, logging.NewNop())
	if err := svc.Notify(context.Background(), Notification{Title: "x", Duration: time.Hour}); err == nil {
		t.Fatal("expected presenter error")
	}
	if len(slot) != 0 {
		t.Fatal("expected slot released after presenter error")
	}
}
