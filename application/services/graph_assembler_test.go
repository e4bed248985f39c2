package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"versegraph/application/ports"
	"versegraph/application/ports/mocks"
	"versegraph/domain/core/entities"
	pkgerrors "versegraph/pkg/errors"
)

func seedNotes(t *testing.T, store testStore) {
	t.Helper()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	notes := []*entities.Note{
		{
			ID: "n1", UserID: "u", Title: "Born again",
			ContentPlain:    "Nicodemus and Jesus talk at night.",
			BibleReferences: []string{"John 3:16", "John 3:3"},
			Tags:            []string{"Faith"},
			CreatedAt:       base,
		},
		{
			ID: "n2", UserID: "u", Title: "Creation",
			Content:         "<p>God made Eden and placed <b>Adam</b> there.</p>",
			BibleReferences: []string{"Genesis 1:1", "John 3:16"},
			Tags:            []string{"faith", "Creation"},
			CreatedAt:       base.Add(time.Hour),
		},
		{
			ID: "n3", UserID: "u", Title: "Old draft",
			BibleReferences: []string{"Ruth 1:16"},
			IsArchived:      true,
			CreatedAt:       base.Add(2 * time.Hour),
		},
	}
	for _, n := range notes {
		require.NoError(t, store.notes.SaveNote(context.Background(), n))
	}
}

func newTestAssembler(store testStore) *GraphAssembler {
	gen := NewGraphGenerator(store.nodes, store.edges, store.notes, nil, nil, nil, nil, nil, noLockConfig(), nil)
	return NewGraphAssembler(gen, store.notes, nil, noLockConfig(), nil)
}

func TestGraphAssembler_GenerateGraphFromNotes(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	seedNotes(t, store)
	assembler := newTestAssembler(store)

	graph, err := assembler.GenerateGraphFromNotes(ctx, "u")
	require.NoError(t, err)

	assert.Equal(t, Summary{
		Notes:       2,
		Passages:    3, // John 3:16, John 3:3, Genesis 1:1
		Books:       2, // John, Genesis
		Themes:      2, // faith, creation
		People:      3, // Jesus, Nicodemus, Adam
		Places:      1, // Eden
		Connections: 13,
	}, graph.Summary)
	assert.Len(t, graph.Edges, 13)

	// shared nodes appear once
	seen := make(map[string]bool)
	for _, n := range graph.Nodes {
		assert.False(t, seen[n.ID().String()], "duplicate node %s", n.Label())
		seen[n.ID().String()] = true
		assert.NotEqual(t, "Ruth", n.ReferenceID(), "archived notes are skipped")
	}
	assert.Len(t, graph.Nodes, 2+3+2+2+3+1)
}

func TestGraphAssembler_SecondRunCreatesNothing(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	seedNotes(t, store)
	assembler := newTestAssembler(store)

	first, err := assembler.GenerateGraphFromNotes(ctx, "u")
	require.NoError(t, err)

	second, err := assembler.GenerateGraphFromNotes(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, 0, second.Summary.Connections)
	assert.Empty(t, second.Edges)
	assert.Len(t, second.Nodes, len(first.Nodes))

	summary := second.Summary
	summary.Connections = first.Summary.Connections
	assert.Equal(t, first.Summary, summary)
}

func TestGraphAssembler_RespectsNoteLimit(t *testing.T) {
	notes := new(mocks.MockNoteRepository)
	notes.On("ListNotes", mock.Anything, "u", ports.ListNotesOptions{Archived: false, Limit: 100}).
		Return([]*entities.Note{}, nil).Once()

	gen := NewGraphGenerator(nil, nil, notes, nil, nil, nil, nil, nil, noLockConfig(), nil)
	assembler := NewGraphAssembler(gen, notes, nil, noLockConfig(), nil)

	graph, err := assembler.GenerateGraphFromNotes(context.Background(), "u")
	require.NoError(t, err)
	assert.Empty(t, graph.Nodes)
	assert.Equal(t, Summary{}, graph.Summary)
	notes.AssertExpectations(t)
}

func TestGraphAssembler_ListFailurePropagates(t *testing.T) {
	notes := new(mocks.MockNoteRepository)
	notes.On("ListNotes", mock.Anything, "u", mock.Anything).Return(nil, errors.New("table not found"))

	gen := NewGraphGenerator(nil, nil, notes, nil, nil, nil, nil, nil, noLockConfig(), nil)
	assembler := NewGraphAssembler(gen, notes, nil, noLockConfig(), nil)

	graph, err := assembler.GenerateGraphFromNotes(context.Background(), "u")
	require.Error(t, err)
	assert.Nil(t, graph)

	appErr := pkgerrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.ErrorTypeDatabase, appErr.Type)
	assert.Equal(t, pkgerrors.CodeGenerationFailed, appErr.Code)
}

func TestGraphAssembler_UserHasNotes(t *testing.T) {
	tests := []struct {
		name string
		has  bool
		err  error
		want bool
	}{
		{name: "has notes", has: true, want: true},
		{name: "no notes", has: false, want: false},
		{name: "storage error reads as false", has: true, err: errors.New("timeout"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notes := new(mocks.MockNoteRepository)
			notes.On("HasNotes", mock.Anything, "u").Return(tt.has, tt.err)
			assembler := NewGraphAssembler(nil, notes, nil, nil, nil)
			assert.Equal(t, tt.want, assembler.UserHasNotes(context.Background(), "u"))
		})
	}
}

func TestSummarize_CountsDistinctReferenceIDs(t *testing.T) {
	mk := func(nt entities.NodeType, ref string) *entities.GraphNode {
		n, err := entities.NewGraphNode("u", nt, ref, ref, "", nil)
		require.NoError(t, err)
		return n
	}
	// two differently-id'd passage nodes sharing a reference count once
	nodes := []*entities.GraphNode{
		mk(entities.NodeTypeNote, "n1"),
		mk(entities.NodeTypePassage, "John 3:16"),
		mk(entities.NodeTypePassage, "John 3:16"),
		mk(entities.NodeTypePlace, "rome"),
	}
	got := summarize(nodes, 4)
	assert.Equal(t, Summary{Notes: 1, Passages: 1, Places: 1, Connections: 4}, got)
}
