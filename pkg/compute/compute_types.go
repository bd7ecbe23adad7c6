package compute

import (
	"context"
	"errors"

	"github.com/dd0wney/cluso-graphviewer/pkg/logging"
)

// Common sentinel errors
var (
	ErrClosed      = errors.New("compute backend is closed")
	ErrWorkerPanic = errors.New("compute handler panicked")
)

// Handler processes one request. It owns whatever state it closes over;
// backends never call it concurrently.
type Handler[Req, Resp any] func(ctx context.Context, req Req) (Resp, error)

// Callback receives the result of a Call.
type Callback[Resp any] func(Resp, error)

// Backend runs a Handler and reports results through callbacks. Callers
// must not depend on whether results arrive synchronously.
type Backend[Req, Resp any] interface {
	Call(req Req, cb Callback[Resp])
	Close()
}

// Dispatcher delivers a result callback, typically by posting it onto the
// caller's own event loop.
type Dispatcher func(func())

type options struct {
	dispatch Dispatcher
	logger   logging.Logger
	queue    int
}

// Option configures a backend.
type Option func(*options)

// WithDispatcher routes result callbacks through d. By default the worker
// invokes callbacks on its own goroutine.
func WithDispatcher(d Dispatcher) Option {
	return func(o *options) { o.dispatch = d }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithQueueSize sets how many calls may wait before Call blocks.
func WithQueueSize(n int) Option {
	return func(o *options) { o.queue = n }
}

func buildOptions(opts []Option) options {
	o := options{queue: 256}
	for _, opt := range opts {
		opt(&o)
	}
	if o.dispatch == nil {
		o.dispatch = func(fn func()) { fn() }
	}
	o.logger = logging.OrNop(o.logger).With(logging.Component("compute"))
	return o
}
