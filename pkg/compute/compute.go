package compute

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dd0wney/cluso-graphviewer/pkg/logging"
)

// safeCall runs h and converts a panic into ErrWorkerPanic.
func safeCall[Req, Resp any](ctx context.Context, h Handler[Req, Resp], req Req, logger logging.Logger) (resp Resp, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("handler panic recovered", logging.String("panic", fmt.Sprint(r)))
			var zero Resp
			resp, err = zero, fmt.Errorf("%w: %v", ErrWorkerPanic, r)
		}
	}()
	return h(ctx, req)
}

// Inline runs the handler on the calling goroutine before Call returns.
type Inline[Req, Resp any] struct {
	handler Handler[Req, Resp]
	opts    options
	mu      sync.Mutex
	closed  atomic.Bool
}

// NewInline creates a synchronous backend. Only WithLogger applies.
func NewInline[Req, Resp any](h Handler[Req, Resp], opts ...Option) *Inline[Req, Resp] {
	return &Inline[Req, Resp]{handler: h, opts: buildOptions(opts)}
}

// Call runs the handler and invokes cb before returning.
func (b *Inline[Req, Resp]) Call(req Req, cb Callback[Resp]) {
	if b.closed.Load() {
		var zero Resp
		cb(zero, ErrClosed)
		return
	}
	b.mu.Lock()
	resp, err := safeCall(context.Background(), b.handler, req, b.opts.logger)
	b.mu.Unlock()
	cb(resp, err)
}

// Close makes later calls fail with ErrClosed.
func (b *Inline[Req, Resp]) Close() {
	b.closed.Store(true)
}

// Worker runs the handler on a dedicated goroutine. Calls are processed one
// at a time in submission order and results are handed to the dispatcher.
type Worker[Req, Resp any] struct {
	handler Handler[Req, Resp]
	opts    options
	pool    *WorkerPool
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewWorker starts a worker backend.
func NewWorker[Req, Resp any](h Handler[Req, Resp], opts ...Option) *Worker[Req, Resp] {
	o := buildOptions(opts)
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker[Req, Resp]{
		handler: h,
		opts:    o,
		pool:    NewWorkerPool(1, o.queue, o.logger),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Call queues req. cb is always invoked exactly once, through the
// dispatcher, with ErrClosed if the worker has been closed.
func (w *Worker[Req, Resp]) Call(req Req, cb Callback[Resp]) {
	submitted := w.pool.Submit(func() {
		resp, err := safeCall(w.ctx, w.handler, req, w.opts.logger)
		w.opts.dispatch(func() { cb(resp, err) })
	})
	if !submitted {
		var zero Resp
		w.opts.dispatch(func() { cb(zero, ErrClosed) })
	}
}

// Close cancels in-flight work and waits for the queue to drain. Queued
// calls complete with the handler's response to a cancelled context.
func (w *Worker[Req, Resp]) Close() {
	w.cancel()
	w.pool.Close()
}
