package tempo

import (
	"context"
	"sync"
)

// Future is an awaitable handle that settles exactly once. It may be awaited,
// chained with Then, or left unobserved; an unobserved rejection is simply
// dropped with the future.
type Future[T any] struct {
	mu       sync.Mutex
	done     chan struct{}
	outcome  Outcome[T]
	settled  bool
	handlers []func(Outcome[T])
}

// Promise is the settling side of a Future.
type Promise[T any] struct {
	f *Future[T]
}

func NewPromise[T any]() *Promise[T] {
	return &Promise[T]{f: &Future[T]{done: make(chan struct{})}}
}

func (p *Promise[T]) Future() *Future[T] {
	return p.f
}

// Resolve settles the future with v. It returns false if it was already
// settled.
func (p *Promise[T]) Resolve(v T) bool {
	return p.f.settle(Resolved(v))
}

// Reject settles the future with err, classified as cancel or failure.
func (p *Promise[T]) Reject(err error) bool {
	return p.f.settle(Rejected[T](err))
}

func (p *Promise[T]) Settle(o Outcome[T]) bool {
	return p.f.settle(o)
}

func (f *Future[T]) settle(o Outcome[T]) bool {
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		return false
	}
	f.settled = true
	f.outcome = o
	handlers := f.handlers
	f.handlers = nil
	close(f.done)
	f.mu.Unlock()

	if len(handlers) > 0 {
		go func() {
			for _, h := range handlers {
				h(o)
			}
		}()
	}
	return true
}

// Done is closed once the future has settled.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

func (f *Future[T]) Settled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settled
}

// Outcome returns the settled outcome; ok is false while still pending.
func (f *Future[T]) Outcome() (o Outcome[T], ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.outcome, f.settled
}

// Await blocks until the future settles or ctx is done. A finished ctx does
// not affect the future itself.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		o, _ := f.Outcome()
		return o.Value(), o.Err()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then registers h to run after settlement. Handlers never run on the
// settling goroutine.
func (f *Future[T]) Then(h func(Outcome[T])) *Future[T] {
	f.mu.Lock()
	if !f.settled {
		f.handlers = append(f.handlers, h)
		f.mu.Unlock()
		return f
	}
	o := f.outcome
	f.mu.Unlock()
	go h(o)
	return f
}

// Go runs fn on its own goroutine. A panic inside fn rejects the future with
// an UnknownFailure instead of crashing the process.
func Go[T any](fn func() (T, error)) *Future[T] {
	p := NewPromise[T]()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				p.Reject(&UnknownFailure{Err: &PanicError{Value: r}})
			}
		}()
		v, err := fn()
		if err != nil {
			p.Reject(err)
			return
		}
		p.Resolve(v)
	}()
	return p.Future()
}

// Chain derives a new future from the outcome of f.
func Chain[T, U any](f *Future[T], fn func(Outcome[T]) (U, error)) *Future[U] {
	p := NewPromise[U]()
	f.Then(func(o Outcome[T]) {
		defer func() {
			if r := recover(); r != nil {
				p.Reject(&UnknownFailure{Err: &PanicError{Value: r}})
			}
		}()
		v, err := fn(o)
		if err != nil {
			p.Reject(err)
			return
		}
		p.Resolve(v)
	})
	return p.Future()
}

func ResolvedFuture[T any](v T) *Future[T] {
	p := NewPromise[T]()
	p.Resolve(v)
	return p.Future()
}

func RejectedFuture[T any](err error) *Future[T] {
	p := NewPromise[T]()
	p.Reject(err)
	return p.Future()
}
