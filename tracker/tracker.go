// Package tracker runs slow, blocking operations (SPARQL queries,
// file imports) on a fixed-size worker pool and delivers their
// results through a single dispatch goroutine. Callbacks registered
// with Track therefore never run concurrently with each other, which
// is the only ordering guarantee the tracker provides: completion
// order across workers is not FIFO with submission order.
package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/plantworks/leantwin/errors"
	"github.com/plantworks/leantwin/logger"
)

// DefaultWorkers is the pool size when the config does not say
// otherwise.
const DefaultWorkers = 4

// memoryPressureThreshold is the used-memory percentage above which
// Submit logs a warning. Submissions are never refused.
const memoryPressureThreshold = 90.0

// Handle identifies a submitted task.
type Handle string

// Result is what a tracked callback receives. Exactly one of Value
// and Err is meaningful; errors raised by the work function are
// captured as values, never propagated as panics.
type Result struct {
	Handle   Handle
	Name     string
	Value    any
	Err      error
	Duration time.Duration
}

// Work is a unit of background work. It must honor ctx and return
// promptly once the context is canceled.
type Work func(ctx context.Context) (any, error)

type job struct {
	handle Handle
	name   string
	work   Work
}

// op is one message to the dispatch goroutine: either a completed
// result or a callback registration. The dispatcher owns the pending
// maps, so no lock guards them.
type op struct {
	result   *Result
	handle   Handle
	callback func(Result)
}

// Tracker is the pool plus its dispatch loop. Create with New, then
// Start before the first Submit.
type Tracker struct {
	workers int

	jobs chan job
	ops  chan op

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	dispatchDone chan struct{}

	mu      sync.Mutex
	started bool
	stopped bool
}

// New builds a tracker with the given pool size. Sizes below one fall
// back to DefaultWorkers.
func New(workers int) *Tracker {
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &Tracker{
		workers:      workers,
		jobs:         make(chan job, 64),
		ops:          make(chan op, 64),
		dispatchDone: make(chan struct{}),
	}
}

// Start launches the workers and the dispatch goroutine.
func (t *Tracker) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started {
		return
	}
	t.started = true

	t.ctx, t.cancel = context.WithCancel(ctx)
	for i := 0; i < t.workers; i++ {
		t.wg.Add(1)
		go t.worker(i)
	}
	go t.dispatch()

	logger.Debugw("task tracker started", "workers", t.workers)
}

// Stop drains the pool: no new submissions are accepted, running work
// is canceled via its context, and the dispatch loop exits once all
// workers have finished.
func (t *Tracker) Stop() {
	t.mu.Lock()
	if !t.started || t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	t.mu.Unlock()

	t.cancel()
	close(t.jobs)
	t.wg.Wait()
	close(t.ops)
	<-t.dispatchDone

	logger.Debugw("task tracker stopped")
}

// Submit enqueues work and returns its handle. Fails when the tracker
// is not running or the queue is full.
func (t *Tracker) Submit(name string, work Work) (Handle, error) {
	if pct, err := memoryUsedPercent(); err == nil && pct > memoryPressureThreshold {
		logger.Warnw("submitting task under memory pressure",
			"task", name, "used_percent", pct)
	}

	// The lock is held through the send so Stop cannot close the jobs
	// channel between the state check and the enqueue.
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.started || t.stopped {
		return "", errors.Wrap(errors.ErrServiceUnavailable, "task tracker not running")
	}

	h := Handle(uuid.NewString())
	select {
	case t.jobs <- job{handle: h, name: name, work: work}:
		return h, nil
	default:
		return "", errors.Wrapf(errors.ErrServiceUnavailable,
			"task queue full, cannot submit %q", name)
	}
}

// Track registers callback for the task behind h. Safe to call before
// or after the task completes; the callback runs exactly once, on the
// dispatch goroutine. Tracking an unknown handle is a silent no-op,
// matching the fire-and-forget nature of stale UI requests.
func (t *Tracker) Track(h Handle, callback func(Result)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.started || t.stopped {
		return
	}
	t.ops <- op{handle: h, callback: callback}
}

func (t *Tracker) worker(id int) {
	defer t.wg.Done()
	for j := range t.jobs {
		t.run(id, j)
	}
}

func (t *Tracker) run(id int, j job) {
	start := time.Now()
	res := Result{Handle: j.handle, Name: j.name}

	func() {
		defer func() {
			if r := recover(); r != nil {
				res.Err = errors.Newf("task %q panicked: %v", j.name, r)
				logger.Errorw("recovered task panic", "task", j.name, "panic", r)
			}
		}()
		res.Value, res.Err = j.work(t.ctx)
	}()

	res.Duration = time.Since(start)
	logger.Debugw("task finished",
		"task", j.name, "worker", id, "duration", res.Duration, "error", res.Err)

	// The dispatcher drains ops until every worker has exited, so this
	// send cannot deadlock even during shutdown.
	t.ops <- op{result: &res}
}

// dispatch owns the two pending maps. Results arriving before their
// callback are parked; callbacks arriving before their result are
// parked. Either way the callback fires exactly once.
func (t *Tracker) dispatch() {
	defer close(t.dispatchDone)

	results := make(map[Handle]Result)
	callbacks := make(map[Handle]func(Result))

	for o := range t.ops {
		switch {
		case o.result != nil:
			h := o.result.Handle
			if cb, ok := callbacks[h]; ok {
				delete(callbacks, h)
				cb(*o.result)
			} else {
				results[h] = *o.result
			}
		case o.callback != nil:
			if res, ok := results[o.handle]; ok {
				delete(results, o.handle)
				o.callback(res)
			} else {
				callbacks[o.handle] = o.callback
			}
		}
	}
}
