package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestDebouncer_LastQueryWins(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	results := make(map[string]error)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, q := range []string{"j", "ja", "jan"} {
		wg.Add(1)
		go func(q string) {
			defer wg.Done()
			err := d.Wait(context.Background(), q)
			mu.Lock()
			results[q] = err
			mu.Unlock()
		}(q)
		time.Sleep(10 * time.Millisecond)
	}
	wg.Wait()

	if results["jan"] != nil {
		t.Errorf("expected latest query to run, got %v", results["jan"])
	}
	for _, q := range []string{"j", "ja"} {
		if !errors.Is(results[q], ErrSuperseded) {
			t.Errorf("expected %q to be superseded, got %v", q, results[q])
		}
	}
	if _, ok := d.Pending(); ok {
		t.Errorf("expected nothing pending after settling")
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(time.Second)

	errCh := make(chan error, 1)
	go func() {
		errCh <- d.Wait(context.Background(), "0712")
	}()

	deadline := time.Now().Add(time.Second)
	for {
		if q, ok := d.Pending(); ok && q == "0712" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("query never became pending")
		}
		time.Sleep(time.Millisecond)
	}

	d.Cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrCancelled) {
			t.Errorf("expected ErrCancelled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Cancel did not release the pending query")
	}
}

func TestDebouncer_ContextCancelled(t *testing.T) {
	d := NewDebouncer(time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := d.Wait(ctx, "x"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if _, ok := d.Pending(); ok {
		t.Errorf("an abandoned query must not stay pending")
	}
}

func TestDebouncer_ZeroDelay(t *testing.T) {
	d := NewDebouncer(0)
	if err := d.Wait(context.Background(), "x"); err != nil {
		t.Errorf("expected immediate success, got %v", err)
	}
}
