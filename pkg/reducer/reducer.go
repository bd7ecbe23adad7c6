// Package reducer groups freshly loaded nodes into a bounded number of
// buckets so that a single expansion cannot flood the rendered graph.
package reducer

import (
	"reflect"

	"github.com/dd0wney/cluso-graphviewer/pkg/graph"
)

// SimilarityThreshold is the score above which a node joins an existing bucket.
const SimilarityThreshold = 0.5

// Bucket is a group of nodes and the reason they were grouped.
type Bucket struct {
	Reason graph.Reason
	Nodes  []*graph.Node
}

// Reducer buckets nodes either by a priority list of attributes or by a
// streaming similarity heuristic. Results depend on input order.
type Reducer struct {
	prioList []string
}

// New creates a reducer with an optional attribute priority list.
func New(prioList ...string) *Reducer {
	r := &Reducer{}
	r.SetPrioList(prioList)
	return r
}

// SetPrioList replaces the attribute priority list.
func (r *Reducer) SetPrioList(list []string) {
	r.prioList = append([]string(nil), list...)
}

// PrioList returns a copy of the attribute priority list.
func (r *Reducer) PrioList() []string {
	return append([]string(nil), r.prioList...)
}

// BucketNodes splits nodes into at most numBuckets groups. With no more
// nodes than buckets each node gets its own bucket. A priority list groups by
// attribute value and may exceed numBuckets.
func (r *Reducer) BucketNodes(nodes []*graph.Node, numBuckets int) []Bucket {
	if numBuckets < 1 {
		numBuckets = 1
	}
	if len(nodes) <= numBuckets {
		out := make([]Bucket, 0, len(nodes))
		for _, n := range nodes {
			out = append(out, Bucket{Reason: graph.Reason{Type: graph.ReasonSingle}, Nodes: []*graph.Node{n}})
		}
		return out
	}
	if len(r.prioList) > 0 {
		return r.byAttribute(nodes)
	}
	return bySimilarity(nodes, numBuckets)
}

func (r *Reducer) byAttribute(nodes []*graph.Node) []Bucket {
	var (
		out   []Bucket
		index = make(map[[2]string]int)
		deflt = -1
	)
	for _, n := range nodes {
		key, value, ok := r.firstMatch(n.Data)
		if !ok {
			if deflt < 0 {
				deflt = len(out)
				out = append(out, Bucket{Reason: graph.Reason{Type: graph.ReasonDefault}})
			}
			out[deflt].Nodes = append(out[deflt].Nodes, n)
			continue
		}
		k := [2]string{key, value}
		i, seen := index[k]
		if !seen {
			i = len(out)
			index[k] = i
			out = append(out, Bucket{Reason: graph.Reason{Type: graph.ReasonAttribute, Key: key, Value: value}})
		}
		out[i].Nodes = append(out[i].Nodes, n)
	}
	return out
}

func (r *Reducer) firstMatch(d graph.Data) (string, string, bool) {
	for _, key := range r.prioList {
		if v, ok := d[key]; ok && v != nil {
			return key, d.Get(key), true
		}
	}
	return "", "", false
}

func bySimilarity(nodes []*graph.Node, numBuckets int) []Bucket {
	var out []Bucket
	for _, n := range nodes {
		placed := false
		for i := range out {
			if Similarity(out[i].Reason.Example, n.Data) > SimilarityThreshold {
				out[i].Nodes = append(out[i].Nodes, n)
				placed = true
				break
			}
		}
		if placed {
			continue
		}
		if len(out) < numBuckets {
			out = append(out, Bucket{
				Reason: graph.Reason{Type: graph.ReasonSimilar, Example: n.Data},
				Nodes:  []*graph.Node{n},
			})
			continue
		}
		shortest := 0
		for i := range out {
			if len(out[i].Nodes) < len(out[shortest].Nodes) {
				shortest = i
			}
		}
		out[shortest].Nodes = append(out[shortest].Nodes, n)
	}
	return out
}

// Similarity scores two documents in [0,1]: shared attributes count once,
// shared attributes with equal values count four more times, normalised by
// five times the attribute union. System attributes are ignored.
func Similarity(a, b graph.Data) float64 {
	union, shared, exact := 0, 0, 0
	for k, va := range a {
		if isSystem(k) {
			continue
		}
		union++
		if vb, ok := b[k]; ok {
			shared++
			if reflect.DeepEqual(va, vb) {
				exact++
			}
		}
	}
	for k := range b {
		if isSystem(k) {
			continue
		}
		if _, ok := a[k]; !ok {
			union++
		}
	}
	return float64(shared+4*exact+1) / float64(5*union+1)
}

func isSystem(key string) bool {
	return key == graph.AttrID || key == graph.AttrKey || key == graph.AttrRev
}
