// Package jsonadapter is a read-only data source over a graph document held
// in memory, loaded from a JSON file or a snappy compressed one.
package jsonadapter

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/dd0wney/cluso-graphviewer/pkg/adapter"
	"github.com/dd0wney/cluso-graphviewer/pkg/graph"
	"github.com/dd0wney/cluso-graphviewer/pkg/logging"
)

// Direction selects which edges count as a node's neighbourhood.
type Direction string

const (
	Outbound Direction = "outbound"
	Any      Direction = "any"
)

// Setting keys understood by ChangeTo.
const (
	SettingFile      = "file"
	SettingDirection = "direction"
	SettingPrioList  = "prioList"
)

var (
	ErrUnknownDirection = errors.New("unknown direction")
	ErrUnknownSetting   = errors.New("unknown setting")
)

// Adapter serves neighbourhoods out of a Document.
type Adapter struct {
	*adapter.Abstract

	doc       *Document
	index     map[string]graph.Data
	direction Direction
	rand      *rand.Rand
	logger    logging.Logger
}

var _ adapter.Source = (*Adapter)(nil)

// Option configures an Adapter.
type Option func(*config)

type config struct {
	doc       *Document
	direction Direction
	rand      *rand.Rand
	logger    logging.Logger
	abstract  []adapter.Option
}

// WithDocument sets the document to serve.
func WithDocument(doc *Document) Option {
	return func(c *config) { c.doc = doc }
}

// WithDirection sets the neighbourhood direction. Default Outbound.
func WithDirection(d Direction) Option {
	return func(c *config) { c.direction = d }
}

// WithRand sets the source used by LoadRandomNode.
func WithRand(r *rand.Rand) Option {
	return func(c *config) { c.rand = r }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithAdapterOptions passes options through to the shared coordinator.
func WithAdapterOptions(opts ...adapter.Option) Option {
	return func(c *config) { c.abstract = append(c.abstract, opts...) }
}

// New creates an adapter over an empty document unless WithDocument is given.
func New(store *graph.Store, viewer adapter.Viewer, opts ...Option) (*Adapter, error) {
	cfg := config{direction: Outbound}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := validDirection(cfg.direction); err != nil {
		return nil, err
	}
	if cfg.doc == nil {
		cfg.doc = &Document{}
	}
	if cfg.rand == nil {
		cfg.rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	logger := logging.OrNop(cfg.logger)

	a := &Adapter{
		direction: cfg.direction,
		rand:      cfg.rand,
		logger:    logger.With(logging.Component("jsonadapter")),
	}
	abstract, err := adapter.New(store, a, viewer, append([]adapter.Option{adapter.WithLogger(logger)}, cfg.abstract...)...)
	if err != nil {
		return nil, err
	}
	a.Abstract = abstract
	a.setDocument(cfg.doc)
	return a, nil
}

// NewFromFile creates an adapter serving the document at path.
func NewFromFile(path string, store *graph.Store, viewer adapter.Viewer, opts ...Option) (*Adapter, error) {
	doc, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return New(store, viewer, append(opts, WithDocument(doc))...)
}

func validDirection(d Direction) error {
	switch d {
	case Outbound, Any:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownDirection, d)
}

func (a *Adapter) setDocument(doc *Document) {
	a.doc = doc
	a.index = make(map[string]graph.Data, len(doc.Nodes))
	for _, n := range doc.Nodes {
		a.index[n.ID()] = n
	}
	a.logger.Info("document loaded", logging.Count(len(doc.Nodes)), logging.Int("edges", len(doc.Edges)))
}

// Core returns the shared coordinator.
func (a *Adapter) Core() *adapter.Abstract { return a.Abstract }

// Document returns the served document.
func (a *Adapter) Document() *Document { return a.doc }

// neighbourhood returns the documents adjacent to id and the edges that
// connect them to it.
func (a *Adapter) neighbourhood(id string) ([]graph.Data, []graph.Data) {
	var nodes, edges []graph.Data
	seen := map[string]bool{id: true}
	add := func(other string, e graph.Data) {
		d, ok := a.index[other]
		if !ok {
			return
		}
		edges = append(edges, e)
		if !seen[other] {
			seen[other] = true
			nodes = append(nodes, d)
		}
	}
	for _, e := range a.doc.Edges {
		switch {
		case e.From() == id:
			add(e.To(), e)
		case a.direction == Any && e.To() == id:
			add(e.From(), e)
		}
	}
	return nodes, edges
}

func notFound(cb adapter.LoadCallback) {
	if cb != nil {
		cb(adapter.LoadResult{ErrorCode: adapter.NotFoundCode}, nil)
	}
}

// LoadNode inserts id and its neighbourhood into the live graph.
func (a *Adapter) LoadNode(id string, cb adapter.LoadCallback) {
	root, ok := a.index[id]
	if !ok {
		notFound(cb)
		return
	}
	nodes, edges := a.neighbourhood(id)
	n, err := a.InsertNeighbourhood(id, append([]graph.Data{root}, nodes...), edges)
	if err != nil {
		a.logger.Error("load failed", logging.NodeID(id), logging.Error(err))
	}
	if cb != nil {
		cb(adapter.LoadResult{Node: n}, err)
	}
}

// LoadInitialNode clears the live graph and starts a new exploration at id.
func (a *Adapter) LoadInitialNode(id string, cb adapter.LoadCallback) {
	root, ok := a.index[id]
	if !ok {
		notFound(cb)
		return
	}
	a.Reset()
	nodes, edges := a.neighbourhood(id)
	n, err := a.InsertInitialNeighbourhood(root, nodes, edges)
	if err != nil {
		a.logger.Error("initial load failed", logging.NodeID(id), logging.Error(err))
	}
	if cb != nil {
		cb(adapter.LoadResult{Node: n}, err)
	}
}

func (a *Adapter) findByAttribute(attr, value string) (string, bool) {
	for _, n := range a.doc.Nodes {
		if _, ok := n[attr]; ok && n.Get(attr) == value {
			return n.ID(), true
		}
	}
	return "", false
}

// LoadNodeFromTreeByAttributeValue loads the first node whose attr equals value.
func (a *Adapter) LoadNodeFromTreeByAttributeValue(attr, value string, cb adapter.LoadCallback) {
	id, ok := a.findByAttribute(attr, value)
	if !ok {
		notFound(cb)
		return
	}
	a.LoadNode(id, cb)
}

// LoadInitialNodeByAttributeValue starts a new exploration at the first node
// whose attr equals value.
func (a *Adapter) LoadInitialNodeByAttributeValue(attr, value string, cb adapter.LoadCallback) {
	id, ok := a.findByAttribute(attr, value)
	if !ok {
		notFound(cb)
		return
	}
	a.LoadInitialNode(id, cb)
}

// LoadRandomNode starts a new exploration at a random node.
func (a *Adapter) LoadRandomNode(cb adapter.LoadCallback) {
	if len(a.doc.Nodes) == 0 {
		notFound(cb)
		return
	}
	a.LoadInitialNode(a.doc.Nodes[a.rand.Intn(len(a.doc.Nodes))].ID(), cb)
}

// RequestCentralityChildren reports the out-degree of id.
func (a *Adapter) RequestCentralityChildren(id string, cb func(int, error)) {
	if _, ok := a.index[id]; !ok {
		cb(0, graph.NewError("RequestCentralityChildren").Node(id).Cause(graph.ErrNodeNotFound).Err())
		return
	}
	n := 0
	for _, e := range a.doc.Edges {
		if e.From() == id {
			n++
		}
	}
	cb(n, nil)
}

func readOnly(op string) error {
	return graph.NewError(op).Cause(adapter.ErrReadOnly).Err()
}

// CreateNode is not supported.
func (a *Adapter) CreateNode(graph.Data, func(*graph.Node, error)) error {
	return readOnly("CreateNode")
}

// DeleteNode is not supported.
func (a *Adapter) DeleteNode(string, func(error)) error {
	return readOnly("DeleteNode")
}

// PatchNode is not supported.
func (a *Adapter) PatchNode(string, graph.Data, func(*graph.Node, error)) error {
	return readOnly("PatchNode")
}

// CreateEdge is not supported.
func (a *Adapter) CreateEdge(graph.Data, func(*graph.Edge, error)) error {
	return readOnly("CreateEdge")
}

// DeleteEdge is not supported.
func (a *Adapter) DeleteEdge(string, func(error)) error {
	return readOnly("DeleteEdge")
}

// PatchEdge is not supported.
func (a *Adapter) PatchEdge(string, graph.Data, func(*graph.Edge, error)) error {
	return readOnly("PatchEdge")
}

// ChangeTo applies source settings: a new document file, a direction or a
// comma separated attribute priority list. Switching the file or the
// direction clears the live graph. Nothing is applied if any setting is
// invalid.
func (a *Adapter) ChangeTo(s adapter.Settings) error {
	direction := a.direction
	var doc *Document
	for k, v := range s {
		switch k {
		case SettingDirection:
			direction = Direction(v)
			if err := validDirection(direction); err != nil {
				return err
			}
		case SettingFile:
			d, err := LoadFile(v)
			if err != nil {
				return err
			}
			doc = d
		case SettingPrioList:
		default:
			return fmt.Errorf("%w: %q", ErrUnknownSetting, k)
		}
	}

	if v, ok := s[SettingPrioList]; ok {
		var list []string
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				list = append(list, p)
			}
		}
		a.SetPrioList(list)
	}
	if doc == nil && direction == a.direction {
		return nil
	}
	a.direction = direction
	if doc != nil {
		a.setDocument(doc)
	}
	a.Reset()
	return nil
}
