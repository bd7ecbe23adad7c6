package joiner

// Setup rebuilds the clustering state from the current degrees: normalised
// degree shares, the initial pairwise gains and every row's best partner.
// Each node starts in its own community.
func (j *Joiner) Setup() {
	j.a = make(map[string]*share, len(j.degrees))
	j.dQ = make(map[string]map[string]float64)
	j.heap = make(map[string]string)
	j.comms = make(map[string]*Community, len(j.degrees))

	if j.m == 0 {
		return
	}
	m := float64(j.m)
	for id, d := range j.degrees {
		j.a[id] = &share{In: float64(d.In) / m, Out: float64(d.Out) / m}
		j.comms[id] = &Community{Nodes: []string{id}}
	}

	for s, row := range j.matrix {
		for t := range row {
			if s == t {
				continue
			}
			i, k := ordered(s, t)
			if _, done := j.dQ[i][k]; done {
				continue
			}
			w := float64(j.matrix[i][k]+j.matrix[k][i]) / m
			val := w - j.expected(i, k)
			if val > 0 {
				j.setDQ(i, k, val)
			}
		}
	}

	for i := range j.dQ {
		j.refreshHeap(i)
	}
}

// GetBest returns the merge with the highest positive gain, or nil. With
// limit > 0, merges producing a community larger than limit are skipped.
func (j *Joiner) GetBest(limit int) *Pair {
	var best *Pair
	for _, s := range sortedKeys(j.heap) {
		l := j.heap[s]
		val := j.dQ[s][l]
		if limit > 0 && j.mergedSize(s, l) > limit {
			var ok bool
			if l, val, ok = j.bestWithin(s, limit); !ok {
				continue
			}
		}
		if best == nil || val > best.Val {
			best = &Pair{SID: s, LID: l, Val: val}
		}
	}
	return best
}

// JoinCommunity merges community p.LID into p.SID and updates the gains of
// every third community adjacent to either.
func (j *Joiner) JoinCommunity(p Pair) {
	s, l := p.SID, p.LID
	cs, cl := j.comms[s], j.comms[l]
	if cs == nil || cl == nil {
		return
	}
	cs.Nodes = append(cs.Nodes, cl.Nodes...)
	cs.Q += cl.Q + p.Val
	delete(j.comms, l)

	j.updateDQAndHeap(s, l)
	j.updateDegrees(s, l)
}

func (j *Joiner) updateDQAndHeap(s, l string) {
	partners := make(map[string]struct{})
	for _, x := range []string{s, l} {
		for k := range j.dQ[x] {
			partners[k] = struct{}{}
		}
		for i, row := range j.dQ {
			if _, ok := row[x]; ok {
				partners[i] = struct{}{}
			}
		}
	}
	delete(partners, s)
	delete(partners, l)

	as, al := j.a[s], j.a[l]
	for k := range partners {
		ak := j.a[k]
		dks, hasS := j.getDQ(k, s)
		dkl, hasL := j.getDQ(k, l)

		var val float64
		switch {
		case hasS && hasL:
			val = dks + dkl
		case hasS:
			val = dks - (al.Out*ak.In + al.In*ak.Out)
		default:
			val = dkl - (as.Out*ak.In + as.In*ak.Out)
		}
		if val > 0 {
			lo, hi := ordered(k, s)
			j.setDQ(lo, hi, val)
		} else {
			j.deleteDQ(k, s)
		}
		j.deleteDQ(k, l)
	}
	j.deleteDQ(s, l)
	delete(j.dQ, l)
	delete(j.heap, l)

	j.refreshHeap(s)
	for k := range partners {
		j.refreshHeap(k)
	}
}

func (j *Joiner) updateDegrees(s, l string) {
	as, al := j.a[s], j.a[l]
	if as == nil || al == nil {
		return
	}
	as.In += al.In
	as.Out += al.Out
	delete(j.a, l)
}

// expected is the null-model term for communities i and k.
func (j *Joiner) expected(i, k string) float64 {
	ai, ak := j.a[i], j.a[k]
	return ai.Out*ak.In + ai.In*ak.Out
}

func (j *Joiner) mergedSize(s, l string) int {
	return len(j.comms[s].Nodes) + len(j.comms[l].Nodes)
}

// bestWithin scans row s for the best partner that respects limit.
func (j *Joiner) bestWithin(s string, limit int) (string, float64, bool) {
	var (
		bestID  string
		bestVal float64
		found   bool
	)
	for _, k := range sortedKeys(j.dQ[s]) {
		if j.mergedSize(s, k) > limit {
			continue
		}
		if v := j.dQ[s][k]; !found || v > bestVal {
			bestID, bestVal, found = k, v, true
		}
	}
	return bestID, bestVal, found
}

func (j *Joiner) refreshHeap(i string) {
	row := j.dQ[i]
	if len(row) == 0 {
		delete(j.dQ, i)
		delete(j.heap, i)
		return
	}
	var (
		best    string
		bestVal float64
		found   bool
	)
	for _, k := range sortedKeys(row) {
		if v := row[k]; !found || v > bestVal {
			best, bestVal, found = k, v, true
		}
	}
	j.heap[i] = best
}

func (j *Joiner) getDQ(x, y string) (float64, bool) {
	i, k := ordered(x, y)
	v, ok := j.dQ[i][k]
	return v, ok
}

func (j *Joiner) setDQ(i, k string, val float64) {
	row := j.dQ[i]
	if row == nil {
		row = make(map[string]float64)
		j.dQ[i] = row
	}
	row[k] = val
}

func (j *Joiner) deleteDQ(x, y string) {
	i, k := ordered(x, y)
	if row := j.dQ[i]; row != nil {
		delete(row, k)
		if len(row) == 0 {
			delete(j.dQ, i)
		}
	}
}

// ordered returns x and y in canonical (ascending) order.
func ordered(x, y string) (string, string) {
	if x < y {
		return x, y
	}
	return y, x
}
