package api

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/dd0wney/cluso-graphviewer/pkg/adapter"
	"github.com/dd0wney/cluso-graphviewer/pkg/graph"
	"github.com/dd0wney/cluso-graphviewer/pkg/graphql"
	"github.com/dd0wney/cluso-graphviewer/pkg/shaper"
	"github.com/dd0wney/cluso-graphviewer/pkg/viewer"
)

var ErrBadRequest = errors.New("bad request")

// viewerBackend runs every call on the viewer loop, so handlers on any
// goroutine can use it.
type viewerBackend struct {
	v *viewer.GraphViewer
}

var _ graphql.Backend = viewerBackend{}

type stats struct {
	nodes, edges, communities, nodeLimit int
}

// await starts an operation on the loop and waits for its callback, which
// may fire within the same loop task or in a later one.
func await[T any](ctx context.Context, v *viewer.GraphViewer, start func(done func(T))) (T, error) {
	ch := make(chan T, 1)
	var zero T
	if err := v.Do(func() { start(func(r T) { ch <- r }) }); err != nil {
		return zero, err
	}
	select {
	case r := <-ch:
		return r, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

type loadOutcome struct {
	res adapter.LoadResult
	err error
}

func (b viewerBackend) load(ctx context.Context, start func(adapter.LoadCallback)) (bool, error) {
	out, err := await(ctx, b.v, func(done func(loadOutcome)) {
		start(func(res adapter.LoadResult, err error) { done(loadOutcome{res, err}) })
	})
	if err != nil {
		return false, err
	}
	if out.err != nil {
		return false, out.err
	}
	return !out.res.NotFound(), nil
}

func (b viewerBackend) Load(ctx context.Context, id string) (bool, error) {
	return b.load(ctx, func(cb adapter.LoadCallback) { b.v.LoadGraph(id, cb) })
}

func (b viewerBackend) LoadByAttribute(ctx context.Context, attr, value string) (bool, error) {
	return b.load(ctx, func(cb adapter.LoadCallback) { b.v.LoadGraphWithAttributeValue(attr, value, cb) })
}

func (b viewerBackend) LoadRandom(ctx context.Context) (bool, error) {
	return b.load(ctx, b.v.LoadGraphWithRandomStart)
}

func (b viewerBackend) Explore(ctx context.Context, id string) error {
	err, werr := await(ctx, b.v, func(done func(error)) {
		b.v.Explore(id, done)
	})
	if werr != nil {
		return werr
	}
	return err
}

func (b viewerBackend) Dissolve(ctx context.Context, id string) error {
	var err error
	if qerr := b.v.Query(ctx, func() { err = b.v.Dissolve(id) }); qerr != nil {
		return qerr
	}
	if errors.Is(err, graph.ErrNotCommunity) {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return err
}

func (b viewerBackend) Zoom(ctx context.Context, scale float64) error {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return fmt.Errorf("%w: scale %v", ErrBadRequest, scale)
	}
	return b.v.Query(ctx, func() { b.v.Zoom(scale) })
}

func (b viewerBackend) ChangeWidth(ctx context.Context, w float64) error {
	var err error
	if qerr := b.v.Query(ctx, func() { err = b.v.ChangeWidth(w) }); qerr != nil {
		return qerr
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}

func (b viewerBackend) Scene(ctx context.Context) (shaper.Scene, error) {
	var sc shaper.Scene
	err := b.v.Query(ctx, func() { sc = b.v.Scene() })
	return sc, err
}

func (b viewerBackend) Stats(ctx context.Context) (stats, error) {
	var st stats
	err := b.v.Query(ctx, func() {
		core := b.v.Source().Core()
		st = stats{
			nodes:       b.v.Store().NodeCount(),
			edges:       b.v.Store().EdgeCount(),
			communities: len(core.Communities()),
			nodeLimit:   core.NodeLimit(),
		}
	})
	return st, err
}
