// Package search debounces free-text searches so that a burst of keystrokes
// runs only the last query.
package search

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrSuperseded = errors.New("search superseded by a newer query")

	ErrCancelled = errors.New("search cancelled")
)

type pendingQuery struct {
	query string
	done  chan error
}

// Debouncer holds at most one pending query. A new query supersedes the
// pending one, which resolves with ErrSuperseded.
type Debouncer struct {
	delay   time.Duration
	mu      sync.Mutex
	pending *pendingQuery
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Wait blocks for the debounce delay. It returns nil if query is still the
// latest when the delay elapses.
func (d *Debouncer) Wait(ctx context.Context, query string) error {
	p := &pendingQuery{query: query, done: make(chan error, 1)}

	d.mu.Lock()
	if d.pending != nil {
		d.pending.done <- ErrSuperseded
	}
	d.pending = p
	d.mu.Unlock()

	if d.delay <= 0 {
		return d.settle(p)
	}

	timer := time.NewTimer(d.delay)
	defer timer.Stop()

	select {
	case err := <-p.done:
		return err
	case <-ctx.Done():
		d.release(p)
		return ctx.Err()
	case <-timer.C:
		return d.settle(p)
	}
}

// Cancel resolves the pending query, if any, with ErrCancelled.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending != nil {
		d.pending.done <- ErrCancelled
		d.pending = nil
	}
}

// Pending reports the query currently waiting out the delay.
func (d *Debouncer) Pending() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending == nil {
		return "", false
	}
	return d.pending.query, true
}

func (d *Debouncer) settle(p *pendingQuery) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending != p {
		// lost a race with a newer query or Cancel
		return <-p.done
	}
	d.pending = nil
	return nil
}

func (d *Debouncer) release(p *pendingQuery) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending == p {
		d.pending = nil
	}
}
