// Package exec implements the execution engine: it walks the
// Command Tree against an Input Cursor, drives parsers, fills a typed
// Context, and invokes the matched handler, under one of the three
// scheduling contracts.
package exec

import "sync"

// Coordinator selects which goroutine continues an execution at each
// suspension point: the dispatch walk and the terminal handler
// invocation. Go has no first-class futures, so "suspension" is
// modelled as a synchronous call that a Coordinator may choose to run
// on a pooled goroutine instead of the caller's; the caller still
// blocks until Run returns, same as awaiting a future would.
type Coordinator interface {
	// Run executes fn and returns its result, on whichever goroutine
	// this Coordinator selects.
	Run(fn func() error) error
}

// Simple runs every step on the calling goroutine; no suspension point
// is ever observable.
type Simple struct{}

func (Simple) Run(fn func() error) error { return fn() }

// NonScheduling preserves the caller's goroutine, identically to
// Simple, but is offered as a distinct contract so callers that
// construct a Manager around future-returning parsers (e.g. ones that
// themselves block on I/O) have a name for "no pool, but suspension
// points are still meaningful". The command core
// does not define blocking parsers itself, so today this behaves the
// same as Simple; the distinction exists for API fidelity and
// for platform adapters that do have a notion of "current thread".
type NonScheduling struct{}

func (NonScheduling) Run(fn func() error) error { return fn() }

// Async dispatches onto a bounded worker pool, chaining the result back
// to the calling goroutine through a channel, the Go rendition of a
// future boundary. A zero Pool size means unbounded.
type Async struct {
	Pool int

	once sync.Once
	sem  chan struct{}
}

func (a *Async) init() {
	a.once.Do(func() {
		if a.Pool > 0 {
			a.sem = make(chan struct{}, a.Pool)
		}
	})
}

func (a *Async) Run(fn func() error) error {
	a.init()
	if a.sem != nil {
		a.sem <- struct{}{}
		defer func() { <-a.sem }()
	}
	done := make(chan error, 1)
	go func() { done <- fn() }()
	return <-done
}
