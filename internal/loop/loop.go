// Package loop provides the single-goroutine scheduler that owns shared host
// state. External goroutines marshal work onto it instead of locking.
package loop

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/rs/zerolog"
)

// ErrStopped is returned when work is submitted to a loop that has been stopped.
var ErrStopped = errors.New("loop stopped")

type loopKey struct{}

// Loop is a single-goroutine scheduler. Jobs submitted with CallSoon or Call
// run one at a time, in submission order, on the loop goroutine. Tasks created
// with CreateTask run on their own goroutines and are tracked so Wait and Stop
// can drain them.
type Loop struct {
	mu      sync.Mutex
	queue   []func(context.Context)
	pending int
	idle    chan struct{}
	stopped bool

	wake      chan struct{}
	quit      chan struct{}
	done      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once

	base    context.Context
	cancel  context.CancelFunc
	loopCtx context.Context

	log zerolog.Logger
}

// New constructs a loop. Call Start before expecting jobs to run.
func New(opts ...Option) *Loop {
	base, cancel := context.WithCancel(context.Background())
	l := &Loop{
		wake:   make(chan struct{}, 1),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
		base:   base,
		cancel: cancel,
		log:    zerolog.Nop(),
	}
	l.loopCtx = context.WithValue(base, loopKey{}, l)
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start launches the loop goroutine. It is safe to call more than once.
func (l *Loop) Start() {
	l.startOnce.Do(func() { go l.run() })
}

// InLoop reports whether ctx was handed to a job by this loop, i.e. the caller
// is running on the loop goroutine.
func (l *Loop) InLoop(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	owner, _ := ctx.Value(loopKey{}).(*Loop)
	return owner == l
}

// CallSoon enqueues fn to run on the loop and returns immediately.
func (l *Loop) CallSoon(fn func(ctx context.Context)) error {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return ErrStopped
	}
	l.queue = append(l.queue, fn)
	l.addPendingLocked()
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

// Call runs fn on the loop and blocks until it has returned. If ctx already
// belongs to the loop, fn runs inline. A panic inside fn is returned as an error.
func (l *Loop) Call(ctx context.Context, fn func(ctx context.Context)) error {
	if l.InLoop(ctx) {
		fn(ctx)
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	done := make(chan error, 1)
	err := l.CallSoon(func(lctx context.Context) {
		var perr error
		defer func() {
			if r := recover(); r != nil {
				perr = fmt.Errorf("loop job panicked: %v", r)
			}
			done <- perr
		}()
		fn(lctx)
	})
	if err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CreateTask runs fn on a new goroutine as an independent unit of work. The
// context passed to fn is canceled when the loop is stopped.
func (l *Loop) CreateTask(fn func(ctx context.Context)) {
	l.mu.Lock()
	l.addPendingLocked()
	l.mu.Unlock()
	go func() {
		defer l.donePending()
		defer l.recoverJob("task")
		fn(l.base)
	}()
}

// Wait blocks until no jobs are queued and no tasks are running.
func (l *Loop) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		if l.pending == 0 {
			l.mu.Unlock()
			return nil
		}
		idle := l.idle
		l.mu.Unlock()
		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Stop rejects new jobs, runs the ones already queued and waits for running
// tasks until ctx expires. Task contexts are canceled on return.
func (l *Loop) Stop(ctx context.Context) error {
	var err error
	l.stopOnce.Do(func() {
		l.mu.Lock()
		l.stopped = true
		l.mu.Unlock()
		l.Start()
		close(l.quit)
		select {
		case <-l.done:
		case <-ctx.Done():
			err = ctx.Err()
		}
		if err == nil {
			err = l.Wait(ctx)
		}
		l.cancel()
	})
	return err
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		select {
		case <-l.wake:
			l.drain()
		case <-l.quit:
			l.drain()
			return
		}
	}
}

func (l *Loop) drain() {
	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()
		if len(batch) == 0 {
			return
		}
		for _, fn := range batch {
			l.runJob(fn)
		}
	}
}

func (l *Loop) runJob(fn func(context.Context)) {
	defer l.donePending()
	defer l.recoverJob("job")
	fn(l.loopCtx)
}

func (l *Loop) recoverJob(kind string) {
	if r := recover(); r != nil {
		l.log.Error().Str("kind", kind).Interface("panic", r).Bytes("stack", debug.Stack()).Msg("loop event=job_panic")
	}
}

func (l *Loop) addPendingLocked() {
	if l.pending == 0 {
		l.idle = make(chan struct{})
	}
	l.pending++
}

func (l *Loop) donePending() {
	l.mu.Lock()
	l.pending--
	if l.pending == 0 {
		close(l.idle)
	}
	l.mu.Unlock()
}
