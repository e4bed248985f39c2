package queries

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"versegraph/domain/core/entities"
)

func TestBuildGraphView(t *testing.T) {
	note, err := entities.NewGraphNode("u1", entities.NodeTypeNote, "n1", "Night visit", "Nicodemus came", entities.Metadata{
		"tags":  []string{"faith"},
		"label": "must not win",
	})
	require.NoError(t, err)
	book, err := entities.NewGraphNode("u1", entities.NodeTypeBook, "John", "John", "", entities.Metadata{"testament": "new"})
	require.NoError(t, err)
	stranger, err := entities.NewGraphNode("u1", entities.NodeTypePlace, "rome", "Rome", "", nil)
	require.NoError(t, err)

	kept, err := entities.NewGraphEdge("u1", note.ID(), book.ID(), entities.EdgeTypeReferences)
	require.NoError(t, err)
	dangling, err := entities.NewGraphEdge("u1", note.ID(), stranger.ID(), entities.EdgeTypeMentions)
	require.NoError(t, err)

	view := BuildGraphView([]*entities.GraphNode{note, book}, []*entities.GraphEdge{kept, dangling})

	require.Len(t, view.Nodes, 2)
	assert.Equal(t, note.ID().String(), view.Nodes[0].ID)
	assert.Equal(t, "note", view.Nodes[0].Type)
	assert.Equal(t, ViewPosition{X: 100, Y: 50}, view.Nodes[0].Position)
	assert.Equal(t, ViewPosition{X: 100, Y: 180}, view.Nodes[1].Position)

	data := view.Nodes[0].Data
	assert.Equal(t, "Night visit", data["label"])
	assert.Equal(t, "Nicodemus came", data["description"])
	assert.Equal(t, "n1", data["reference_id"])
	assert.Equal(t, []string{"faith"}, data["tags"])
	assert.Equal(t, "new", view.Nodes[1].Data["testament"])

	require.Len(t, view.Edges, 1)
	assert.Equal(t, ViewEdge{
		ID:     kept.ID().String(),
		Source: note.ID().String(),
		Target: book.ID().String(),
		Type:   "contains",
	}, view.Edges[0])
}

func TestBuildGraphView_Empty(t *testing.T) {
	view := BuildGraphView(nil, nil)
	assert.NotNil(t, view.Nodes)
	assert.NotNil(t, view.Edges)
	assert.Empty(t, view.Nodes)
}

func TestQueries_Validate(t *testing.T) {
	assert.NoError(t, GetGraphViewQuery{UserID: "u"}.Validate())
	assert.Error(t, GetGraphViewQuery{}.Validate())
	assert.Error(t, GenerateGraphQuery{}.Validate())
	assert.Error(t, HasNotesQuery{}.Validate())
}
