package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateNodePositions_Empty(t *testing.T) {
	got := CalculateNodePositions(nil)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCalculateNodePositions_SingleNodePerLayer(t *testing.T) {
	nodes := []LayoutNode{
		{ID: "n", NodeType: "note"},
		{ID: "b", NodeType: "book"},
		{ID: "p", NodeType: "passage"},
		{ID: "t", NodeType: "theme"},
		{ID: "pe", NodeType: "person"},
		{ID: "pl", NodeType: "place"},
	}

	got := CalculateNodePositions(nodes)
	require.Len(t, got, 6)

	wantY := map[string]float64{"n": 50, "b": 180, "p": 320, "t": 460, "pe": 600, "pl": 740}
	for id, y := range wantY {
		assert.Equal(t, y, got[id].Y(), id)
		// width is 800 for a lone node, so x = 0 + 100 + 0
		assert.Equal(t, 100.0, got[id].X(), id)
	}
}

func TestCalculateNodePositions_Spacing(t *testing.T) {
	tests := []struct {
		name     string
		nodeType string
		count    int
		wantX    []float64
	}{
		{
			name:     "two notes fit the base width",
			nodeType: "note",
			count:    2,
			wantX:    []float64{100, 500},
		},
		{
			name:     "five notes widen the layer",
			nodeType: "note",
			count:    5,
			// width = 1000, start = -100 + 100 = 0, step = 200
			wantX: []float64{0, 200, 400, 600, 800},
		},
		{
			name:     "eight themes",
			nodeType: "theme",
			count:    8,
			// width = max(800, 960) = 960, start = -80 + 100 = 20, step = 120
			wantX: []float64{20, 140, 260, 380, 500, 620, 740, 860},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var nodes []LayoutNode
			for i := 0; i < tt.count; i++ {
				nodes = append(nodes, LayoutNode{ID: fmt.Sprintf("%s-%d", tt.nodeType, i), NodeType: tt.nodeType})
			}
			got := CalculateNodePositions(nodes)
			for i, x := range tt.wantX {
				assert.InDelta(t, x, got[nodes[i].ID].X(), 1e-9)
			}
		})
	}
}

func TestCalculateNodePositions_UnknownTypes(t *testing.T) {
	nodes := []LayoutNode{
		{ID: "v1", NodeType: "verse"},
		{ID: "n", NodeType: "note"},
		{ID: "s1", NodeType: "sermon"},
		{ID: "v2", NodeType: "verse"},
	}

	got := CalculateNodePositions(nodes)
	require.Len(t, got, 4)

	assert.Equal(t, 880.0, got["v1"].Y())
	assert.Equal(t, 100.0, got["v1"].X())
	assert.Equal(t, 880.0, got["v2"].Y())
	assert.Equal(t, 250.0, got["v2"].X())
	assert.Equal(t, 1030.0, got["s1"].Y())
	assert.Equal(t, 100.0, got["s1"].X())
	assert.Equal(t, 50.0, got["n"].Y())
}

func TestCalculateNodePositions_Deterministic(t *testing.T) {
	var nodes []LayoutNode
	types := []string{"note", "book", "passage", "theme", "person", "place", "other"}
	for i := 0; i < 40; i++ {
		nodes = append(nodes, LayoutNode{ID: fmt.Sprintf("id-%d", i), NodeType: types[i%len(types)]})
	}

	first := CalculateNodePositions(nodes)
	second := CalculateNodePositions(nodes)
	require.Len(t, first, len(nodes))
	for id, p := range first {
		assert.True(t, p.Equals(second[id]), id)
	}
}

func TestCalculateNodePositions_LayerOrdering(t *testing.T) {
	got := CalculateNodePositions([]LayoutNode{
		{ID: "person", NodeType: "person"},
		{ID: "book", NodeType: "book"},
		{ID: "note", NodeType: "note"},
	})

	assert.Less(t, got["note"].Y(), got["book"].Y())
	assert.Less(t, got["book"].Y(), got["person"].Y())
}

func TestMapEdgeType(t *testing.T) {
	tests := map[string]string{
		"references":         "contains",
		"theme_connection":   "theme_connection",
		"mentions":           "authored",
		"cross_ref":          "cross_reference",
		"unrecognized_value": "unrecognized_value",
		"":                   "",
	}

	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, MapEdgeType(in))
		})
	}
}
