package joiner

import (
	"container/list"
	"context"
	"sort"
)

// GetCommunity runs greedy merging to completion and picks one community of
// at least two nodes. Without a focus the most modular community wins. With a
// focus, communities containing it or unreachable from it are dropped and the
// rest are ranked farthest first, then by modularity. It returns nil if
// nothing qualifies.
func (j *Joiner) GetCommunity(limit int, focus string) *Community {
	c, _ := j.getCommunity(context.Background(), limit, focus)
	return c
}

func (j *Joiner) getCommunity(ctx context.Context, limit int, focus string) (*Community, error) {
	j.Setup()
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		best := j.GetBest(limit)
		if best == nil {
			break
		}
		j.JoinCommunity(*best)
	}

	var candidates []*Community
	for _, id := range sortedKeys(j.comms) {
		if c := j.comms[id]; len(c.Nodes) > 1 {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	if focus == "" || j.degrees[focus] == nil {
		return clone(mostModular(candidates)), nil
	}
	return clone(farthest(candidates, j.FloatDist(focus), focus)), nil
}

// FloatDist returns the hop distance from focus to every node reachable over
// edges in either direction. focus itself is at distance 0.
func (j *Joiner) FloatDist(focus string) map[string]int {
	dist := map[string]int{focus: 0}
	queue := list.New()
	queue.PushBack(focus)

	for queue.Len() > 0 {
		id, ok := queue.Remove(queue.Front()).(string)
		if !ok {
			continue
		}
		for _, n := range j.Neighbors(id) {
			if _, seen := dist[n]; seen {
				continue
			}
			dist[n] = dist[id] + 1
			queue.PushBack(n)
		}
	}
	return dist
}

func mostModular(cs []*Community) *Community {
	best := cs[0]
	for _, c := range cs[1:] {
		if c.Q > best.Q {
			best = c
		}
	}
	return best
}

type ranked struct {
	c    *Community
	dist int
}

// farthest drops communities containing focus or unreachable from it and
// returns the one farthest away, ties broken by modularity. A community's
// distance is that of its closest member.
func farthest(cs []*Community, dist map[string]int, focus string) *Community {
	var rs []ranked
	for _, c := range cs {
		d, reachable, hasFocus := -1, false, false
		for _, id := range c.Nodes {
			if id == focus {
				hasFocus = true
				break
			}
			if nd, ok := dist[id]; ok && (!reachable || nd < d) {
				d, reachable = nd, true
			}
		}
		if hasFocus || !reachable {
			continue
		}
		rs = append(rs, ranked{c: c, dist: d})
	}
	if len(rs) == 0 {
		return nil
	}
	sort.SliceStable(rs, func(a, b int) bool {
		if rs[a].dist != rs[b].dist {
			return rs[a].dist > rs[b].dist
		}
		return rs[a].c.Q > rs[b].c.Q
	})
	return rs[0].c
}

func clone(c *Community) *Community {
	if c == nil {
		return nil
	}
	return &Community{Nodes: append([]string(nil), c.Nodes...), Q: c.Q}
}
