// Package queries holds the read-side requests of the graph API and the
// laid-out view the visualization client consumes.
package queries

import (
	"versegraph/domain/core/entities"
	domainservices "versegraph/domain/services"
)

// ViewPosition is a node's place on the canvas
type ViewPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ViewNode is a node as the visualization client sees it
type ViewNode struct {
	ID       string                 `json:"id"`
	Type     string                 `json:"type"`
	Position ViewPosition           `json:"position"`
	Data     map[string]interface{} `json:"data"`
}

// ViewEdge is an edge with its presentation type
type ViewEdge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// GraphView is a laid-out graph
type GraphView struct {
	Nodes []ViewNode `json:"nodes"`
	Edges []ViewEdge `json:"edges"`
}

// BuildGraphView lays nodes out and maps edges to presentation types.
// Edges with an endpoint outside nodes are dropped.
func BuildGraphView(nodes []*entities.GraphNode, edges []*entities.GraphEdge) GraphView {
	layoutInput := make([]domainservices.LayoutNode, 0, len(nodes))
	present := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		id := n.ID().String()
		layoutInput = append(layoutInput, domainservices.LayoutNode{ID: id, NodeType: string(n.Type())})
		present[id] = struct{}{}
	}
	positions := domainservices.CalculateNodePositions(layoutInput)

	view := GraphView{
		Nodes: make([]ViewNode, 0, len(nodes)),
		Edges: make([]ViewEdge, 0, len(edges)),
	}

	for _, n := range nodes {
		id := n.ID().String()
		pos := positions[id]

		data := make(map[string]interface{})
		for k, v := range n.Metadata() {
			data[k] = v
		}
		data["label"] = n.Label()
		data["description"] = n.Description()
		data["reference_id"] = n.ReferenceID()

		view.Nodes = append(view.Nodes, ViewNode{
			ID:       id,
			Type:     string(n.Type()),
			Position: ViewPosition{X: pos.X(), Y: pos.Y()},
			Data:     data,
		})
	}

	for _, e := range edges {
		source, target := e.SourceNodeID().String(), e.TargetNodeID().String()
		if _, ok := present[source]; !ok {
			continue
		}
		if _, ok := present[target]; !ok {
			continue
		}
		view.Edges = append(view.Edges, ViewEdge{
			ID:     e.ID().String(),
			Source: source,
			Target: target,
			Type:   domainservices.MapEdgeType(string(e.Type())),
		})
	}

	return view
}
