// Package viewer ties the live graph, a data source, the layouter, the
// shapers and the zoom manager together behind one event loop.
package viewer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dd0wney/cluso-graphviewer/pkg/adapter"
	"github.com/dd0wney/cluso-graphviewer/pkg/colour"
	"github.com/dd0wney/cluso-graphviewer/pkg/compute"
	"github.com/dd0wney/cluso-graphviewer/pkg/graph"
	"github.com/dd0wney/cluso-graphviewer/pkg/joiner"
	"github.com/dd0wney/cluso-graphviewer/pkg/layout"
	"github.com/dd0wney/cluso-graphviewer/pkg/logging"
	"github.com/dd0wney/cluso-graphviewer/pkg/metrics"
	"github.com/dd0wney/cluso-graphviewer/pkg/shaper"
	"github.com/dd0wney/cluso-graphviewer/pkg/zoom"
)

// GraphViewer owns the live graph and every component working on it.
//
// Apart from Run, Do, Query and Close, methods must be called from a single
// goroutine: the one running Run when the loop is in use, or the caller's
// own otherwise.
type GraphViewer struct {
	store  *graph.Store
	source adapter.Source
	layout *layout.Layouter
	nodes  *shaper.NodeShaper
	edges  *shaper.EdgeShaper
	zoom   *zoom.Manager
	worker *compute.Worker[joiner.Request, joiner.Response]

	width, height float64
	adapterOpts   []adapter.Option

	tasks chan func()
	done  chan struct{}
	once  sync.Once
	tick  time.Duration
	queue int

	// Worker results queue here without bound; post never blocks.
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}

	base    logging.Logger
	logger  logging.Logger
	metrics *metrics.Registry
}

// New builds a viewer. The source is created by factory with the viewer's
// adapter settings; a configured zoom manager reports its first node budget
// before New returns.
func New(factory Factory, cfg Config, opts ...Option) (*GraphViewer, error) {
	if factory == nil {
		return nil, &graph.Error{Op: "NewViewer", Entity: "factory", Cause: ErrNoFactory}
	}
	v := &GraphViewer{
		width:  cfg.Width,
		height: cfg.Height,
		tick:   DefaultTickInterval,
		queue:  256,
		done:   make(chan struct{}),
		wake:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.width <= 0 {
		v.width = adapter.DefaultWidth
	}
	if v.height <= 0 {
		v.height = adapter.DefaultHeight
	}
	v.base = logging.OrNop(v.logger)
	v.logger = v.base.With(logging.Component("viewer"))
	v.tasks = make(chan func(), v.queue)
	if v.store == nil {
		v.store = graph.NewStore()
	}

	lcfg := cfg.Layouter
	lcfg.Width, lcfg.Height = v.width, v.height
	v.layout = layout.New(v.store, lcfg, layout.WithLogger(v.base), layout.WithMetrics(v.metrics))

	mapper := colour.NewMapper()
	var err error
	if v.nodes, err = shaper.NewNodeShaper(v.store, mapper, cfg.NodeShaper); err != nil {
		return nil, fmt.Errorf("node shaper: %w", err)
	}
	if v.edges, err = shaper.NewEdgeShaper(v.store, mapper, cfg.EdgeShaper); err != nil {
		return nil, fmt.Errorf("edge shaper: %w", err)
	}

	source, err := factory(v.store, v, v.sourceOptions(cfg)...)
	if err != nil {
		v.closeWorker()
		return nil, fmt.Errorf("create source: %w", err)
	}
	v.source = source

	if cfg.Zoom != nil {
		zc := *cfg.Zoom
		zc.Width, zc.Height = v.width, v.height
		v.zoom, err = zoom.New(zc, v.onLimit, zoom.WithLogger(v.base), zoom.WithMetrics(v.metrics))
		if err != nil {
			source.Core().Close()
			return nil, err
		}
	}

	v.logger.Info("viewer created",
		logging.Float64("width", v.width),
		logging.Float64("height", v.height),
		logging.Bool("async", cfg.Adapter.Async),
		logging.Bool("zoom", cfg.Zoom != nil))
	return v, nil
}

func (v *GraphViewer) sourceOptions(cfg Config) []adapter.Option {
	ac := cfg.Adapter
	opts := []adapter.Option{
		adapter.WithSize(v.width, v.height),
		adapter.WithChildLimit(ac.ChildLimit),
		adapter.WithLogger(v.base),
		adapter.WithMetrics(v.metrics),
	}
	if len(ac.PrioList) > 0 {
		opts = append(opts, adapter.WithPrioList(ac.PrioList...))
	}
	if cfg.Zoom == nil {
		opts = append(opts, adapter.WithNodeLimit(ac.NodeLimit))
	}
	if ac.Async {
		j := joiner.New(joiner.WithLogger(v.base), joiner.WithMetrics(v.metrics))
		v.worker = compute.NewWorker(j.Handle, compute.WithDispatcher(v.post), compute.WithLogger(v.base))
		opts = append(opts, adapter.WithJoiner(v.worker))
	}
	return append(opts, v.adapterOpts...)
}

func (v *GraphViewer) closeWorker() {
	if v.worker != nil {
		v.worker.Close()
	}
}

func (v *GraphViewer) onLimit(limit int) {
	v.source.SetNodeLimit(limit, v.Start)
}

// Store returns the live graph.
func (v *GraphViewer) Store() *graph.Store { return v.store }

// Source returns the data source.
func (v *GraphViewer) Source() adapter.Source { return v.source }

// Layouter returns the force layouter.
func (v *GraphViewer) Layouter() *layout.Layouter { return v.layout }

// NodeShaper returns the node shaper.
func (v *GraphViewer) NodeShaper() *shaper.NodeShaper { return v.nodes }

// EdgeShaper returns the edge shaper.
func (v *GraphViewer) EdgeShaper() *shaper.EdgeShaper { return v.edges }

// ZoomManager returns the zoom manager, or nil when zoom is disabled.
func (v *GraphViewer) ZoomManager() *zoom.Manager { return v.zoom }

// Size returns the canvas size.
func (v *GraphViewer) Size() (width, height float64) { return v.width, v.height }

// OnTick registers fn to run whenever the layout moved enough to redraw.
func (v *GraphViewer) OnTick(fn func()) { v.layout.OnTick(fn) }

// Start restarts the layout.
func (v *GraphViewer) Start() { v.layout.Start() }

func (v *GraphViewer) loaded(op string, cb adapter.LoadCallback) adapter.LoadCallback {
	timer := logging.StartTimer(v.logger, "graph loaded", logging.Operation(op))
	return func(res adapter.LoadResult, err error) {
		switch {
		case err != nil:
			timer.EndError(err)
		case res.NotFound():
			v.logger.Info("start node not found", logging.Operation(op))
		default:
			timer.End(logging.Count(v.store.NodeCount()))
			v.Start()
		}
		if cb != nil {
			cb(res, err)
		}
	}
}

// LoadGraph starts a new exploration at the node id.
func (v *GraphViewer) LoadGraph(id string, cb adapter.LoadCallback) {
	v.source.LoadInitialNode(id, v.loaded("LoadGraph", cb))
}

// LoadGraphWithRandomStart starts a new exploration at a random node.
func (v *GraphViewer) LoadGraphWithRandomStart(cb adapter.LoadCallback) {
	v.source.LoadRandomNode(v.loaded("LoadGraphWithRandomStart", cb))
}

// LoadGraphWithAttributeValue starts a new exploration at the first node
// whose attr equals value.
func (v *GraphViewer) LoadGraphWithAttributeValue(attr, value string, cb adapter.LoadCallback) {
	v.source.LoadInitialNodeByAttributeValue(attr, value, v.loaded("LoadGraphWithAttributeValue", cb))
}

// Explore toggles the node or community id.
func (v *GraphViewer) Explore(id string, cb func(error)) {
	n := v.store.FindNode(id)
	if n == nil {
		if cb != nil {
			cb(graph.NewError("Explore").Node(id).Cause(graph.ErrNodeNotFound).Err())
		}
		return
	}
	v.source.Explore(n, cb)
}

// Dissolve puts the members of community id back into the live graph.
func (v *GraphViewer) Dissolve(id string) error {
	switch n := v.store.FindNode(id).(type) {
	case nil:
		return graph.NewError("Dissolve").Node(id).Cause(graph.ErrNodeNotFound).Err()
	case *graph.CommunityNode:
		v.source.Core().DissolveCommunity(n)
		v.Start()
		return nil
	default:
		return graph.NewError("Dissolve").Node(id).Cause(graph.ErrNotCommunity).Err()
	}
}

// CleanUp stops the layout and empties the live graph and the legend.
func (v *GraphViewer) CleanUp() {
	v.layout.Stop()
	v.source.Core().Reset()
	v.nodes.Mapper().Reset()
}

// ChangeWidth resizes the canvas, keeping its aspect ratio.
func (v *GraphViewer) ChangeWidth(w float64) error {
	if w <= 0 {
		return fmt.Errorf("%w: width %v", zoom.ErrInvalidSize, w)
	}
	h := v.height * w / v.width
	if v.zoom != nil {
		if err := v.zoom.ChangeWidth(w); err != nil {
			return err
		}
		_, h = v.zoom.Size()
	}
	v.width, v.height = w, h
	v.layout.SetSize(w, h)
	v.source.SetWidth(w)
	v.source.Core().SetHeight(h)
	return nil
}

// Zoom sets the zoom scale. It does nothing when zoom is disabled.
func (v *GraphViewer) Zoom(scale float64) {
	if v.zoom != nil {
		v.zoom.Zoom(scale)
	}
}

// Focus centres the fisheye on (x, y) and applies it to node positions.
func (v *GraphViewer) Focus(x, y float64) {
	if v.zoom == nil {
		return
	}
	v.zoom.Focus(x, y)
	v.nodes.SetDistortion(v.zoom.Distortion())
}

// Unfocus removes the fisheye.
func (v *GraphViewer) Unfocus() {
	v.nodes.SetDistortion(shaper.Identity)
}

// Scene renders the current frame. Labels are dropped below the zoom
// manager's label threshold.
func (v *GraphViewer) Scene() shaper.Scene {
	sc := shaper.Render(v.nodes, v.edges)
	sc.Width, sc.Height, sc.Scale = v.width, v.height, 1
	if v.zoom != nil {
		sc.Scale = v.zoom.Scale()
		if !v.zoom.ShowLabels() {
			hideLabels(sc.Nodes)
		}
	}
	return sc
}

func hideLabels(nodes []shaper.NodeVisual) {
	for i := range nodes {
		nodes[i].Label = ""
		hideLabels(nodes[i].Members)
	}
}

// Run processes posted tasks and advances the layout once per tick until
// ctx is done or the viewer is closed.
func (v *GraphViewer) Run(ctx context.Context) error {
	ticker := time.NewTicker(v.tick)
	defer ticker.Stop()

	v.logger.Info("viewer loop started", logging.Duration("tick", v.tick))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-v.done:
			return ErrStopped
		case fn := <-v.tasks:
			fn()
		case <-v.wake:
			v.drain()
		case <-ticker.C:
			v.layout.Tick()
		}
	}
}

// post hands fn to the loop without blocking. It is the joiner worker's
// dispatcher.
func (v *GraphViewer) post(fn func()) {
	v.mu.Lock()
	v.pending = append(v.pending, fn)
	v.mu.Unlock()
	select {
	case v.wake <- struct{}{}:
	default:
	}
}

// drain runs the callbacks posted so far. Callbacks posted while draining
// wait for the next wake-up.
func (v *GraphViewer) drain() {
	v.mu.Lock()
	batch := v.pending
	v.pending = nil
	v.mu.Unlock()
	for _, fn := range batch {
		fn()
	}
}

// Do queues fn to run on the loop goroutine.
func (v *GraphViewer) Do(fn func()) error {
	select {
	case <-v.done:
		return ErrStopped
	default:
	}
	select {
	case v.tasks <- fn:
		return nil
	case <-v.done:
		return ErrStopped
	}
}

// Query runs fn on the loop goroutine and waits for it to finish.
func (v *GraphViewer) Query(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if err := v.Do(func() {
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-v.done:
		return ErrStopped
	}
}

// Close stops the loop and releases the joiner. It is safe to call more
// than once.
func (v *GraphViewer) Close() {
	v.once.Do(func() {
		close(v.done)
		v.source.Core().Close()
		v.store.Close()
		v.logger.Info("viewer closed")
	})
}
