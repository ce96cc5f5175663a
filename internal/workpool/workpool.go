package workpool

import (
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/vudodov/aws.s3/errors"
)

// DefaultConcurrency is used when a non-positive limit is requested.
const DefaultConcurrency = 5

// Pool runs submitted functions with a fixed upper bound on concurrency.
type Pool struct {
	maxConcurrency int
	semaphore      chan struct{}
	wg             sync.WaitGroup

	launched atomic.Int64
	peak     atomic.Int64
}

// New creates a pool allowing at most maxConcurrency functions to run at once.
func New(maxConcurrency int) *Pool {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultConcurrency
	}
	return &Pool{
		maxConcurrency: maxConcurrency,
		semaphore:      make(chan struct{}, maxConcurrency),
	}
}

// Go blocks until a slot is free, then runs fn on its own goroutine.
// done, if non-nil, receives fn's result once fn returns or panics; it runs
// before the slot is released.
func (p *Pool) Go(fn func() error, done func(error)) {
	p.semaphore <- struct{}{}
	p.wg.Add(1)
	p.launched.Add(1)
	p.observePeak(int64(len(p.semaphore)))

	go func() {
		defer func() {
			<-p.semaphore
			p.wg.Done()
		}()

		err := run(fn)
		if done != nil {
			done(err)
		}
	}()
}

// Wait blocks until every function started with Go has finished.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Stats returns current pool statistics.
func (p *Pool) Stats() Stats {
	running := len(p.semaphore)
	return Stats{
		MaxConcurrency:     p.maxConcurrency,
		CurrentConcurrency: running,
		AvailableSlots:     cap(p.semaphore) - running,
		Launched:           int(p.launched.Load()),
		PeakConcurrency:    int(p.peak.Load()),
	}
}

func (p *Pool) observePeak(n int64) {
	for {
		cur := p.peak.Load()
		if n <= cur || p.peak.CompareAndSwap(cur, n) {
			return
		}
	}
}

func run(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.NewError("operate", errors.ErrOperationPanic).
				WithMessage(fmt.Sprintf("panic: %v\n%s", r, debug.Stack()))
		}
	}()
	return fn()
}

// Stats contains statistics about the pool's current state.
type Stats struct {
	// MaxConcurrency is the maximum allowed concurrent functions
	MaxConcurrency int

	// CurrentConcurrency is the number of slots currently held
	CurrentConcurrency int

	// AvailableSlots is the number of free slots
	AvailableSlots int

	// Launched is the total number of functions started
	Launched int

	// PeakConcurrency is the highest number of slots held at once
	PeakConcurrency int
}
