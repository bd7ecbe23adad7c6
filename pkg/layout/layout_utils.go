package layout

import (
	"math"

	"github.com/dd0wney/cluso-graphviewer/pkg/graph"
)

// Fit scales the live nodes into the width x height box, keeping padding
// free on every side. Previous positions move along so no velocity is
// introduced.
func (f *Layouter) Fit(width, height, padding float64) {
	Normalize(f.store.Nodes(), width, height, padding)
}

// Normalize scales node positions to fit within bounds.
func Normalize(nodes []graph.GraphNode, width, height, padding float64) {
	if len(nodes) == 0 {
		return
	}
	if padding < 0 {
		padding = defaultPadding
	}

	minX, maxX := math.MaxFloat64, -math.MaxFloat64
	minY, maxY := math.MaxFloat64, -math.MaxFloat64
	for _, n := range nodes {
		v := n.Base()
		minX = math.Min(minX, v.X)
		maxX = math.Max(maxX, v.X)
		minY = math.Min(minY, v.Y)
		maxY = math.Max(maxY, v.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	targetWidth := width - 2*padding
	targetHeight := height - 2*padding

	for _, n := range nodes {
		v := n.Base()
		x := width / 2
		if rangeX >= minDistance {
			x = padding + ((v.X-minX)/rangeX)*targetWidth
		}
		y := height / 2
		if rangeY >= minDistance {
			y = padding + ((v.Y-minY)/rangeY)*targetHeight
		}
		v.PX += x - v.X
		v.PY += y - v.Y
		v.X, v.Y = x, y
	}
}
