// Package admission bounds the number of concurrently in-flight connections
// accepted by the server, and supports a hard shutdown that fails every
// blocked and future acquire rather than draining them.
package admission

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/semaphore"
)

// ErrClosed is returned by Acquire once the Permits pool has been closed.
var ErrClosed = errors.New("admission: permit pool closed")

// Permits is a closable counting semaphore: an analogue of a Tokio
// semaphore whose close_permits call causes every pending and future
// acquire to fail immediately, rather than Go's semaphore.Weighted alone
// which has no such lifecycle. It wraps semaphore.Weighted with a
// cancelable context that Close cancels.
type Permits struct {
	sem    *semaphore.Weighted
	ctx    context.Context
	cancel context.CancelFunc

	closeOnce sync.Once
}

// New creates a Permits pool allowing up to max concurrently held permits.
func New(max int64) *Permits {
	ctx, cancel := context.WithCancel(context.Background())
	return &Permits{
		sem:    semaphore.NewWeighted(max),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Acquire blocks until a permit is available, ctx is canceled, or the pool
// is closed, whichever happens first.
func (p *Permits) Acquire(ctx context.Context) error {
	if p.ctx.Err() != nil {
		return ErrClosed
	}
	merged, stop := mergeContexts(ctx, p.ctx)
	defer stop()

	if err := p.sem.Acquire(merged, 1); err != nil {
		if p.ctx.Err() != nil {
			return ErrClosed
		}
		return err
	}
	return nil
}

// Release returns a previously acquired permit to the pool. Safe to call
// after Close; a released permit after close is simply discarded since
// nothing can ever acquire it again.
func (p *Permits) Release() {
	p.sem.Release(1)
}

// Close cancels every blocked Acquire and causes all future Acquire calls
// to fail with ErrClosed. Idempotent.
func (p *Permits) Close() {
	p.closeOnce.Do(p.cancel)
}

// mergeContexts returns a context canceled when either input is canceled,
// along with a stop function that must be called to release resources.
func mergeContexts(a, b context.Context) (context.Context, context.CancelFunc) {
	merged, cancel := context.WithCancel(a)
	stop := make(chan struct{})
	go func() {
		select {
		case <-b.Done():
			cancel()
		case <-stop:
		case <-merged.Done():
		}
	}()
	return merged, func() {
		close(stop)
		cancel()
	}
}
