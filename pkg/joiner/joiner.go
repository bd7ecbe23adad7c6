package joiner

import (
	"sort"

	"github.com/dd0wney/cluso-graphviewer/pkg/logging"
	"github.com/dd0wney/cluso-graphviewer/pkg/metrics"
)

// Joiner finds communities by greedy directed-modularity maximisation over
// a live adjacency matrix. Edge updates are O(1); the clustering state is
// rebuilt by Setup at the start of every GetCommunity.
//
// Joiner is not safe for concurrent use; it is meant to be owned by a single
// compute goroutine.
type Joiner struct {
	matrix   map[string]map[string]int
	backward map[string]map[string]int
	degrees  map[string]*Degree
	m        int

	a     map[string]*share
	dQ    map[string]map[string]float64
	heap  map[string]string
	comms map[string]*Community

	logger  logging.Logger
	metrics *metrics.Registry
}

// New creates an empty joiner.
func New(opts ...Option) *Joiner {
	j := &Joiner{
		matrix:   make(map[string]map[string]int),
		backward: make(map[string]map[string]int),
		degrees:  make(map[string]*Degree),
	}
	for _, opt := range opts {
		opt(j)
	}
	j.logger = logging.OrNop(j.logger).With(logging.Component("joiner"))
	return j
}

// InsertEdge records a directed edge s->t.
func (j *Joiner) InsertEdge(s, t string) {
	row := j.matrix[s]
	if row == nil {
		row = make(map[string]int)
		j.matrix[s] = row
	}
	row[t]++

	back := j.backward[t]
	if back == nil {
		back = make(map[string]int)
		j.backward[t] = back
	}
	back[s]++

	j.degree(s).Out++
	j.degree(t).In++
	j.m++
}

// DeleteEdge removes one directed edge s->t. It reports false if no such
// edge was recorded.
func (j *Joiner) DeleteEdge(s, t string) bool {
	row := j.matrix[s]
	if row == nil || row[t] == 0 {
		return false
	}
	row[t]--
	if row[t] == 0 {
		delete(row, t)
		if len(row) == 0 {
			delete(j.matrix, s)
		}
	}

	back := j.backward[t]
	back[s]--
	if back[s] == 0 {
		delete(back, s)
		if len(back) == 0 {
			delete(j.backward, t)
		}
	}

	j.releaseDegree(s, func(d *Degree) { d.Out-- })
	j.releaseDegree(t, func(d *Degree) { d.In-- })
	j.m--
	return true
}

// Weight returns the multiplicity of s->t.
func (j *Joiner) Weight(s, t string) int {
	return j.matrix[s][t]
}

// BackwardWeight returns the mirrored multiplicity stored under t.
func (j *Joiner) BackwardWeight(t, s string) int {
	return j.backward[t][s]
}

// EdgeCount returns the number of live edges.
func (j *Joiner) EdgeCount() int {
	return j.m
}

// Degree returns the raw degree of id.
func (j *Joiner) Degree(id string) Degree {
	if d := j.degrees[id]; d != nil {
		return *d
	}
	return Degree{}
}

// Neighbors returns the ids adjacent to id in either direction, sorted.
func (j *Joiner) Neighbors(id string) []string {
	seen := make(map[string]struct{})
	for t := range j.matrix[id] {
		seen[t] = struct{}{}
	}
	for s := range j.backward[id] {
		seen[s] = struct{}{}
	}
	delete(seen, id)
	return sortedKeys(seen)
}

// Rows returns the sources that have outgoing edges, sorted.
func (j *Joiner) Rows() []string {
	return sortedKeys(j.matrix)
}

// Targets returns the targets of s with their multiplicity.
func (j *Joiner) Targets(s string) map[string]int {
	out := make(map[string]int, len(j.matrix[s]))
	for t, w := range j.matrix[s] {
		out[t] = w
	}
	return out
}

// Reset drops all edges and clustering state.
func (j *Joiner) Reset() {
	j.matrix = make(map[string]map[string]int)
	j.backward = make(map[string]map[string]int)
	j.degrees = make(map[string]*Degree)
	j.m = 0
	j.a, j.dQ, j.heap, j.comms = nil, nil, nil, nil
}

func (j *Joiner) degree(id string) *Degree {
	d := j.degrees[id]
	if d == nil {
		d = &Degree{}
		j.degrees[id] = d
	}
	return d
}

func (j *Joiner) releaseDegree(id string, fn func(*Degree)) {
	d := j.degrees[id]
	if d == nil {
		return
	}
	fn(d)
	if d.In <= 0 && d.Out <= 0 {
		delete(j.degrees, id)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
