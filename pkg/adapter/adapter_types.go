package adapter

import (
	"errors"
	"math/rand"

	"github.com/dd0wney/cluso-graphviewer/pkg/compute"
	"github.com/dd0wney/cluso-graphviewer/pkg/graph"
	"github.com/dd0wney/cluso-graphviewer/pkg/joiner"
	"github.com/dd0wney/cluso-graphviewer/pkg/logging"
	"github.com/dd0wney/cluso-graphviewer/pkg/metrics"
	"github.com/dd0wney/cluso-graphviewer/pkg/reducer"
)

// Common sentinel errors
var (
	ErrMissingArgument = errors.New("missing required argument")
	ErrReadOnly        = errors.New("read-only adapter")
	ErrTooFewMembers   = errors.New("community needs at least two live nodes")
	ErrNotFound        = errors.New("not found")
	ErrLimitBusy       = errors.New("a collapse request is already in flight")
)

// NotFoundCode is the error code carried by a LoadResult when nothing matched.
const NotFoundCode = 404

// LoadResult is the outcome of a load. A not-found result is not an error:
// it carries ErrorCode 404 and a nil Node.
type LoadResult struct {
	Node      graph.GraphNode
	ErrorCode int
}

// NotFound reports whether the load matched nothing.
func (r LoadResult) NotFound() bool {
	return r.ErrorCode == NotFoundCode
}

// LoadCallback receives the result of a load.
type LoadCallback func(LoadResult, error)

// Descendant is the data source built on top of an Abstract. It fetches a
// node's immediate neighbourhood and feeds it back through InsertNeighbourhood.
type Descendant interface {
	LoadNode(id string, cb LoadCallback)
}

// Viewer is restarted after every structural change.
type Viewer interface {
	Start()
}

// Bucketer groups freshly inserted nodes.
type Bucketer interface {
	BucketNodes(nodes []*graph.Node, numBuckets int) []reducer.Bucket
	SetPrioList(list []string)
	PrioList() []string
}

// JoinerBackend runs the modularity joiner.
type JoinerBackend = compute.Backend[joiner.Request, joiner.Response]

// Settings are source specific options passed to ChangeTo.
type Settings map[string]string

// Source is the contract every data source satisfies.
type Source interface {
	LoadNode(id string, cb LoadCallback)
	LoadInitialNode(id string, cb LoadCallback)
	LoadNodeFromTreeByAttributeValue(attr, value string, cb LoadCallback)
	LoadInitialNodeByAttributeValue(attr, value string, cb LoadCallback)
	LoadRandomNode(cb LoadCallback)
	RequestCentralityChildren(id string, cb func(int, error))

	CreateNode(data graph.Data, cb func(*graph.Node, error)) error
	DeleteNode(id string, cb func(error)) error
	PatchNode(id string, patch graph.Data, cb func(*graph.Node, error)) error
	CreateEdge(data graph.Data, cb func(*graph.Edge, error)) error
	DeleteEdge(id string, cb func(error)) error
	PatchEdge(id string, patch graph.Data, cb func(*graph.Edge, error)) error

	SetNodeLimit(limit int, cb func())
	SetChildLimit(limit int)
	ExpandCommunity(c *graph.CommunityNode, cb func())
	SetWidth(w float64)
	ChangeTo(s Settings) error
	Explore(n graph.GraphNode, cb func(error))
	GetPrioList() []string

	// Core returns the shared coordinator behind the source.
	Core() *Abstract
}

// Option configures an Abstract.
type Option func(*Abstract)

// WithSize sets the rectangle new nodes are placed in.
func WithSize(width, height float64) Option {
	return func(a *Abstract) {
		a.width, a.height = width, height
	}
}

// WithNodeLimit sets the rendered node budget. 0 disables it.
func WithNodeLimit(limit int) Option {
	return func(a *Abstract) { a.nodeLimit = clampLimit(limit) }
}

// WithChildLimit sets how many children one expansion may add before they
// are bucketed into communities. 0 disables bucketing.
func WithChildLimit(limit int) Option {
	return func(a *Abstract) { a.childLimit = limit }
}

// WithPrioList sets the attribute priority list of the default reducer.
func WithPrioList(list ...string) Option {
	return func(a *Abstract) { a.prioList = list }
}

// WithReducer replaces the node reducer.
func WithReducer(r Bucketer) Option {
	return func(a *Abstract) { a.reducer = r }
}

// WithJoiner replaces the joiner backend. The default runs a joiner inline.
func WithJoiner(b JoinerBackend) Option {
	return func(a *Abstract) { a.joiner = b }
}

// WithIDGenerator sets the community id generator.
func WithIDGenerator(fn func() string) Option {
	return func(a *Abstract) { a.newID = fn }
}

// WithRand sets the source of randomness for node placement.
func WithRand(r *rand.Rand) Option {
	return func(a *Abstract) { a.rand = r }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(a *Abstract) { a.logger = l }
}

// WithMetrics sets the metrics registry.
func WithMetrics(r *metrics.Registry) Option {
	return func(a *Abstract) { a.metrics = r }
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 0
	}
	if limit < 2 {
		return 2
	}
	return limit
}
