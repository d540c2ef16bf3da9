package webapp

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// Promise is a Result that is computed on its own goroutine. It settles exactly once, either
// with a Result or with an error; a panic in the computation settles it with an error that
// carries the panic value and a stack trace.
type Promise struct {
	done   chan struct{}
	result Result
	err    error
	cancel context.CancelFunc
	once   sync.Once

	immediate bool
}

// NewPromise starts fn on a new goroutine. The context passed to fn is cancelled if Cancel is
// called or if ctx is cancelled.
func NewPromise(ctx context.Context, fn func(ctx context.Context) (Result, error)) *Promise {
	pctx, cancel := context.WithCancel(ctx)
	p := &Promise{done: make(chan struct{}), cancel: cancel}
	go func() {
		defer cancel()
		var (
			result Result
			err    error
		)
		func() {
			defer func() {
				if r := recover(); r != nil {
					err = recoveredError(r)
				}
			}()
			result, err = fn(pctx)
		}()
		p.settle(result, err)
	}()
	return p
}

// Resolved returns a Promise that has already succeeded.
func Resolved(result Result) *Promise {
	p := &Promise{done: make(chan struct{}), cancel: func() {}, immediate: true}
	p.settle(result, nil)
	return p
}

// Failed returns a Promise that has already failed.
func Failed(err error) *Promise {
	p := &Promise{done: make(chan struct{}), cancel: func() {}, immediate: true}
	p.settle(Result{}, err)
	return p
}

func (p *Promise) settle(result Result, err error) {
	p.once.Do(func() {
		p.result, p.err = result, err
		close(p.done)
	})
}

// IsImmediate returns true for a promise created by Resolved or Failed, that is, one that never
// represented deferred work.
func (p *Promise) IsImmediate() bool { return p.immediate }

// Done returns a channel that is closed when the promise has settled.
func (p *Promise) Done() <-chan struct{} { return p.done }

// IsDone returns true if the promise has settled.
func (p *Promise) IsDone() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Value returns the outcome of a settled promise. It must not be called before Done is closed.
func (p *Promise) Value() (Result, error) {
	<-p.done
	return p.result, p.err
}

// Await blocks until the promise settles or ctx is done. In the latter case it returns the
// context's error and leaves the computation running.
func (p *Promise) Await(ctx context.Context) (Result, error) {
	select {
	case <-p.done:
		return p.result, p.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Cancel asks the computation to stop by cancelling its context. This has no effect on a promise
// that has already settled, and a computation that ignores its context will still run to the end.
func (p *Promise) Cancel() { p.cancel() }

// Finally returns a new Promise that settles with fn applied to this promise's outcome, whether
// it succeeded or failed. Cancelling the new promise cancels this one.
func (p *Promise) Finally(fn func(Result, error) (Result, error)) *Promise {
	next := &Promise{done: make(chan struct{}), cancel: p.cancel}
	go func() {
		result, err := p.Value()
		func() {
			defer func() {
				if r := recover(); r != nil {
					result, err = Result{}, recoveredError(r)
				}
			}()
			result, err = fn(result, err)
		}()
		next.settle(result, err)
	}()
	return next
}

func recoveredError(r interface{}) error {
	if err, ok := r.(error); ok {
		return errors.WithStack(err)
	}
	return errors.Errorf("panic: %v", r)
}
