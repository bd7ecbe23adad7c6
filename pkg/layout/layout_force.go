// Package layout positions the live graph with a verlet force simulation.
package layout

import (
	"math"

	"github.com/dd0wney/cluso-graphviewer/pkg/graph"
	"github.com/dd0wney/cluso-graphviewer/pkg/logging"
	"github.com/dd0wney/cluso-graphviewer/pkg/metrics"
)

// Layouter runs a force simulation over the live graph: edges are springs,
// every pair of nodes repels, gravity pulls towards the canvas centre and
// friction damps the motion. Expanded communities get an inner simulation
// over their internal edges, in coordinates relative to the community.
//
// Layouter is not safe for concurrent use.
type Layouter struct {
	store *graph.Store
	cfg   Config

	alpha float64
	stage Stage
	ticks int

	inner     map[string]*innerLayout
	listeners []func()

	logger  logging.Logger
	metrics *metrics.Registry
}

// New creates a stopped layouter over store.
func New(store *graph.Store, cfg Config, opts ...Option) *Layouter {
	f := &Layouter{
		store: store,
		cfg:   cfg.withDefaults(),
		inner: make(map[string]*innerLayout),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = logging.OrNop(f.logger).With(logging.Component("layout"))
	return f
}

// Config returns the effective parameters.
func (f *Layouter) Config() Config { return f.cfg }

// SetSize changes the canvas the simulation is centred on.
func (f *Layouter) SetSize(width, height float64) {
	f.cfg.Width, f.cfg.Height = width, height
}

// OnTick registers fn to run after each tick that should be redrawn.
func (f *Layouter) OnTick(fn func()) {
	f.listeners = append(f.listeners, fn)
}

// Start (re)heats the simulation.
func (f *Layouter) Start() {
	f.alpha = StartAlpha
	f.stage = Running
	f.ticks = 0
	if f.metrics != nil {
		f.metrics.RecordLayoutStart()
	}
}

// Stop halts the simulation.
func (f *Layouter) Stop() {
	f.alpha = 0
	f.stage = Stopped
}

// Running reports whether ticks still move nodes.
func (f *Layouter) Running() bool { return f.stage != Stopped }

// Stage returns the current phase.
func (f *Layouter) Stage() Stage { return f.stage }

// Alpha returns the current temperature.
func (f *Layouter) Alpha() float64 { return f.alpha }

// Tick advances the simulation by one step and reports whether it is still
// running afterwards.
func (f *Layouter) Tick() bool {
	if f.stage == Stopped {
		return false
	}
	f.alpha *= AlphaDecay
	if f.alpha < StopAlpha {
		f.Stop()
		f.logger.Debug("layout settled", logging.Count(f.ticks))
		f.notify()
		return false
	}
	if f.alpha < SlowAlpha {
		f.stage = Slow
	}
	f.ticks++

	nodes := f.store.Nodes()
	f.updateWeights(nodes)
	f.relaxLinks(f.store.Edges())
	f.applyGravity(nodes)
	f.applyCharge(nodes)
	integrate(nodes, f.cfg.Friction)
	f.tickInner()

	if f.metrics != nil {
		f.metrics.RecordLayoutTick(f.alpha)
	}
	if f.stage == Running || f.ticks%2 == 0 {
		f.notify()
	}
	return true
}

// Settle runs the simulation from a fresh start until it stops or maxTicks
// steps have run, and returns the number of steps.
func (f *Layouter) Settle(maxTicks int) int {
	f.Start()
	n := 0
	for n < maxTicks && f.Tick() {
		n++
	}
	return n
}

func (f *Layouter) notify() {
	for _, fn := range f.listeners {
		fn()
	}
}

// scale is the size factor of a node: the square root of the member count
// for expanded communities, 1 otherwise.
func scale(n graph.GraphNode) float64 {
	if c, ok := n.(*graph.CommunityNode); ok && c.Expanded && c.Size() > 1 {
		return math.Sqrt(float64(c.Size()))
	}
	return 1
}

func (f *Layouter) updateWeights(nodes []graph.GraphNode) {
	for _, n := range nodes {
		n.Base().Weight = 0
	}
	for _, e := range f.store.Edges() {
		e.Source.Base().Weight++
		e.Target.Base().Weight++
	}
}

func (f *Layouter) relaxLinks(edges []*graph.Edge) {
	for _, e := range edges {
		s, t := e.Source.Base(), e.Target.Base()
		if s == t {
			continue
		}
		distance := f.cfg.LinkDistance * (scale(e.Source) + scale(e.Target)) / 2
		spring(s, t, distance, f.alpha*f.cfg.LinkStrength)
	}
}

// spring moves both endpoints towards the rest distance, the lighter node
// moving further.
func spring(s, t *graph.Vertex, distance, k float64) {
	dx, dy := t.X-s.X, t.Y-s.Y
	l := dx*dx + dy*dy
	if l == 0 {
		return
	}
	l = math.Sqrt(l)
	l = k * (l - distance) / l
	dx *= l
	dy *= l
	w := 0.5
	if s.Weight+t.Weight > 0 {
		w = s.Weight / (s.Weight + t.Weight)
	}
	t.X -= dx * w
	t.Y -= dy * w
	w = 1 - w
	s.X += dx * w
	s.Y += dy * w
}

func (f *Layouter) applyGravity(nodes []graph.GraphNode) {
	k := f.alpha * f.cfg.Gravity
	cx, cy := f.cfg.Width/2, f.cfg.Height/2
	for _, n := range nodes {
		v := n.Base()
		v.X += (cx - v.X) * k
		v.Y += (cy - v.Y) * k
	}
}

func (f *Layouter) applyCharge(nodes []graph.GraphNode) {
	charges := make([]float64, len(nodes))
	for i, n := range nodes {
		charges[i] = f.cfg.Charge * scale(n)
	}
	repel(nodes, charges, f.alpha)
}

// repel applies all-pairs charge by shifting previous positions, which the
// integration step turns into velocity.
func repel(nodes []graph.GraphNode, charges []float64, alpha float64) {
	for i, a := range nodes {
		va := a.Base()
		if va.Fixed {
			continue
		}
		for j, b := range nodes {
			if i == j {
				continue
			}
			vb := b.Base()
			dx, dy := vb.X-va.X, vb.Y-va.Y
			dn := dx*dx + dy*dy
			if dn < minDistance {
				dn = minDistance
			}
			k := alpha * charges[j] / dn
			va.PX -= dx * k
			va.PY -= dy * k
		}
	}
}

// integrate is the verlet step. Fixed nodes are pinned to their previous
// position.
func integrate(nodes []graph.GraphNode, friction float64) {
	for _, n := range nodes {
		v := n.Base()
		if v.Fixed {
			v.X, v.Y = v.PX, v.PY
			continue
		}
		px, py := v.PX, v.PY
		v.PX, v.PY = v.X, v.Y
		v.X -= (px - v.X) * friction
		v.Y -= (py - v.Y) * friction
	}
}
