// Package services holds the pure domain computations over graph data:
// layered node placement and the storage to presentation edge mapping.
package services

import (
	"math"

	"versegraph/domain/core/entities"
	"versegraph/domain/core/valueobjects"
)

// LayoutNode is the minimal node description the layout needs
type LayoutNode struct {
	ID       string
	NodeType string
}

type layer struct {
	y       float64
	spacing float64
}

const (
	canvasWidth     = 800.0
	canvasMargin    = 100.0
	extraRowStart   = 880.0
	extraRowStep    = 150.0
	extraRowSpacing = 150.0
)

// fixed layers, top to bottom
var layerOrder = []string{
	string(entities.NodeTypeNote),
	string(entities.NodeTypeBook),
	string(entities.NodeTypePassage),
	string(entities.NodeTypeTheme),
	string(entities.NodeTypePerson),
	string(entities.NodeTypePlace),
}

var layers = map[string]layer{
	string(entities.NodeTypeNote):    {y: 50, spacing: 200},
	string(entities.NodeTypeBook):    {y: 180, spacing: 180},
	string(entities.NodeTypePassage): {y: 320, spacing: 150},
	string(entities.NodeTypeTheme):   {y: 460, spacing: 120},
	string(entities.NodeTypePerson):  {y: 600, spacing: 150},
	string(entities.NodeTypePlace):   {y: 740, spacing: 150},
}

// CalculateNodePositions assigns every node a position in horizontal layers
// by type. The result depends only on the input order.
func CalculateNodePositions(nodes []LayoutNode) map[string]valueobjects.Position {
	positions := make(map[string]valueobjects.Position, len(nodes))
	if len(nodes) == 0 {
		return positions
	}

	groups := make(map[string][]string)
	var unknownOrder []string
	for _, n := range nodes {
		if _, known := layers[n.NodeType]; !known {
			if _, seen := groups[n.NodeType]; !seen {
				unknownOrder = append(unknownOrder, n.NodeType)
			}
		}
		groups[n.NodeType] = append(groups[n.NodeType], n.ID)
	}

	for _, nodeType := range layerOrder {
		l := layers[nodeType]
		ids := groups[nodeType]
		if len(ids) == 0 {
			continue
		}
		count := float64(len(ids))
		width := math.Max(canvasWidth, count*l.spacing)
		step := width / count
		start := (canvasWidth-width)/2 + canvasMargin
		for i, id := range ids {
			positions[id] = mustPosition(start+float64(i)*step, l.y)
		}
	}

	for row, nodeType := range unknownOrder {
		y := extraRowStart + float64(row)*extraRowStep
		for i, id := range groups[nodeType] {
			positions[id] = mustPosition(canvasMargin+float64(i)*extraRowSpacing, y)
		}
	}

	return positions
}

// Coordinates here are always finite.
func mustPosition(x, y float64) valueobjects.Position {
	p, err := valueobjects.NewPosition(x, y)
	if err != nil {
		panic(err)
	}
	return p
}
