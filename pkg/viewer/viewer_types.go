package viewer

import (
	"errors"
	"time"

	"github.com/dd0wney/cluso-graphviewer/pkg/adapter"
	"github.com/dd0wney/cluso-graphviewer/pkg/adapter/jsonadapter"
	"github.com/dd0wney/cluso-graphviewer/pkg/graph"
	"github.com/dd0wney/cluso-graphviewer/pkg/layout"
	"github.com/dd0wney/cluso-graphviewer/pkg/logging"
	"github.com/dd0wney/cluso-graphviewer/pkg/metrics"
	"github.com/dd0wney/cluso-graphviewer/pkg/shaper"
	"github.com/dd0wney/cluso-graphviewer/pkg/zoom"
)

var (
	ErrNoFactory = errors.New("no source factory")
	ErrStopped   = errors.New("viewer loop stopped")
)

// DefaultTickInterval is the layout frame interval of Run.
const DefaultTickInterval = 30 * time.Millisecond

// Factory builds the data source once the store and the viewer exist. opts
// carry the viewer's adapter settings and must be passed on to the source's
// Abstract.
type Factory func(store *graph.Store, v adapter.Viewer, opts ...adapter.Option) (adapter.Source, error)

// JSONSource returns a factory over an in-memory document.
func JSONSource(doc *jsonadapter.Document, opts ...jsonadapter.Option) Factory {
	return func(store *graph.Store, v adapter.Viewer, aopts ...adapter.Option) (adapter.Source, error) {
		all := append([]jsonadapter.Option{jsonadapter.WithDocument(doc), jsonadapter.WithAdapterOptions(aopts...)}, opts...)
		return jsonadapter.New(store, v, all...)
	}
}

// JSONFile returns a factory that reads a document from path, plain or
// snappy compressed.
func JSONFile(path string, opts ...jsonadapter.Option) Factory {
	return func(store *graph.Store, v adapter.Viewer, aopts ...adapter.Option) (adapter.Source, error) {
		all := append([]jsonadapter.Option{jsonadapter.WithAdapterOptions(aopts...)}, opts...)
		return jsonadapter.NewFromFile(path, store, v, all...)
	}
}

// AdapterConfig holds the settings handed to the data source.
type AdapterConfig struct {
	NodeLimit  int      `yaml:"node_limit" validate:"gte=0"`
	ChildLimit int      `yaml:"child_limit" validate:"gte=0"`
	PrioList   []string `yaml:"prio_list"`
	// Async runs the modularity joiner on a worker goroutine.
	Async bool `yaml:"async"`
}

// Config configures a GraphViewer. A nil Zoom disables zoom driven node
// limits; the adapter's NodeLimit applies instead.
type Config struct {
	Width      float64
	Height     float64
	NodeShaper shaper.NodeConfig
	EdgeShaper shaper.EdgeConfig
	Layouter   layout.Config
	Zoom       *zoom.Config
	Adapter    AdapterConfig
}

// Option configures a GraphViewer.
type Option func(*GraphViewer)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(v *GraphViewer) { v.logger = l }
}

// WithMetrics sets the metrics registry shared by every component.
func WithMetrics(r *metrics.Registry) Option {
	return func(v *GraphViewer) { v.metrics = r }
}

// WithTickInterval sets the layout frame interval of Run.
func WithTickInterval(d time.Duration) Option {
	return func(v *GraphViewer) { v.tick = d }
}

// WithQueueSize sets how many posted tasks may wait for the loop.
func WithQueueSize(n int) Option {
	return func(v *GraphViewer) { v.queue = n }
}

// WithStore uses store instead of a fresh one.
func WithStore(store *graph.Store) Option {
	return func(v *GraphViewer) { v.store = store }
}

// WithAdapterOptions appends options for the source's Abstract. They are
// applied after the ones derived from Config.
func WithAdapterOptions(opts ...adapter.Option) Option {
	return func(v *GraphViewer) { v.adapterOpts = append(v.adapterOpts, opts...) }
}
