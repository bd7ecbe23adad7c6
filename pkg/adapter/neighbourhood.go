package adapter

import (
	"github.com/dd0wney/cluso-graphviewer/pkg/graph"
)

// InsertNeighbourhood applies the result of loading rootID: the nodes and
// edges are inserted, the root is marked expanded, an oversized batch of new
// children is bucketed into communities and the node budget is enforced.
func (a *Abstract) InsertNeighbourhood(rootID string, nodes, edges []graph.Data) (*graph.Node, error) {
	var inserted []*graph.Node
	for _, d := range nodes {
		n, created, err := a.insertNode(d, 0, 0, false)
		if err != nil {
			return nil, err
		}
		if created && n.ID != rootID {
			inserted = append(inserted, n)
		}
	}

	root := a.lookupNode(rootID)
	if root == nil {
		return nil, graph.NewError("InsertNeighbourhood").Node(rootID).Cause(graph.ErrNodeNotFound).Err()
	}
	root.Expanded = true

	for _, d := range edges {
		if _, err := a.InsertEdge(d); err != nil {
			return nil, err
		}
	}

	a.CheckSizeOfInserted(inserted)
	a.CheckNodeLimit(root)
	a.observe()
	a.viewer.Start()
	return root, nil
}

// InsertInitialNeighbourhood is InsertNeighbourhood for the first node of an
// exploration, which is pinned at the canvas centre.
func (a *Abstract) InsertInitialNeighbourhood(root graph.Data, nodes, edges []graph.Data) (*graph.Node, error) {
	if _, err := a.InsertInitialNode(root); err != nil {
		return nil, err
	}
	return a.InsertNeighbourhood(root.ID(), nodes, edges)
}
