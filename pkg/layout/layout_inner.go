package layout

import (
	"math"

	"github.com/dd0wney/cluso-graphviewer/pkg/graph"
)

// innerLayout remembers which members an inner simulation was seeded for.
type innerLayout struct {
	size int
}

// tickInner advances the inner simulation of every expanded community and
// forgets communities that are gone or collapsed.
func (f *Layouter) tickInner() {
	live := make(map[string]bool)
	for _, c := range f.store.Communities() {
		if !c.Expanded {
			continue
		}
		live[c.ID] = true
		in := f.inner[c.ID]
		if in == nil || in.size != c.Size() {
			f.seedInner(c)
			in = &innerLayout{size: c.Size()}
			f.inner[c.ID] = in
		}
		f.relaxInner(c)
	}
	for id := range f.inner {
		if !live[id] {
			delete(f.inner, id)
		}
	}
}

// seedInner places the members on a circle around the community centre.
func (f *Layouter) seedInner(c *graph.CommunityNode) {
	members := c.Members()
	radius := f.cfg.LinkDistance * innerDistance * math.Sqrt(float64(len(members))) / 2
	for i, pos := range Circle(len(members), radius) {
		v := &members[i].Vertex
		v.X, v.Y = pos.X, pos.Y
		v.PX, v.PY = pos.X, pos.Y
	}
}

func (f *Layouter) relaxInner(c *graph.CommunityNode) {
	members := c.Members()
	if len(members) < 2 {
		return
	}
	weights := make(map[*graph.Node]float64, len(members))
	internal := c.InternalEdges()
	for _, e := range internal {
		weights[e.OriginalSource()]++
		weights[e.OriginalTarget()]++
	}
	for _, m := range members {
		m.Weight = weights[m]
	}

	distance := f.cfg.LinkDistance * innerDistance
	for _, e := range internal {
		s, t := e.OriginalSource(), e.OriginalTarget()
		if s == nil || t == nil || s == t {
			continue
		}
		spring(&s.Vertex, &t.Vertex, distance, f.alpha*f.cfg.LinkStrength)
	}

	k := f.alpha * innerGravity
	nodes := make([]graph.GraphNode, len(members))
	charges := make([]float64, len(members))
	for i, m := range members {
		m.X -= m.X * k
		m.Y -= m.Y * k
		nodes[i] = m
		charges[i] = f.cfg.Charge * innerDistance
	}
	repel(nodes, charges, f.alpha)
	integrate(nodes, f.cfg.Friction)
}
