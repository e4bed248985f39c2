package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"versegraph/application/ports"
	"versegraph/application/ports/mocks"
	"versegraph/application/queries"
	"versegraph/application/queries/bus"
	"versegraph/application/services"
	"versegraph/domain/core/entities"
	pkgerrors "versegraph/pkg/errors"
)

func TestGetGraphViewHandler_Handle(t *testing.T) {
	ctx := context.Background()
	note, err := entities.NewGraphNode("u1", entities.NodeTypeNote, "n1", "Note", "", nil)
	require.NoError(t, err)
	theme, err := entities.NewGraphNode("u1", entities.NodeTypeTheme, "faith", "Faith", "", nil)
	require.NoError(t, err)
	edge, err := entities.NewGraphEdge("u1", note.ID(), theme.ID(), entities.EdgeTypeThemeConnection)
	require.NoError(t, err)

	nodeRepo := new(mocks.MockNodeRepository)
	edgeRepo := new(mocks.MockEdgeRepository)
	nodeRepo.On("ListByUser", ctx, "u1").Return([]*entities.GraphNode{note, theme}, nil)
	edgeRepo.On("ListByUser", ctx, "u1").Return([]*entities.GraphEdge{edge}, nil)

	view, err := NewGetGraphViewHandler(nodeRepo, edgeRepo, zap.NewNop()).Handle(ctx, queries.GetGraphViewQuery{UserID: "u1"})
	require.NoError(t, err)
	assert.Len(t, view.Nodes, 2)
	require.Len(t, view.Edges, 1)
	assert.Equal(t, "theme_connection", view.Edges[0].Type)
}

func TestGetGraphViewHandler_StorageError(t *testing.T) {
	ctx := context.Background()
	nodeRepo := new(mocks.MockNodeRepository)
	nodeRepo.On("ListByUser", ctx, "u1").Return(nil, errors.New("throttled"))

	_, err := NewGetGraphViewHandler(nodeRepo, new(mocks.MockEdgeRepository), zap.NewNop()).
		Handle(ctx, queries.GetGraphViewQuery{UserID: "u1"})
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeDatabase))
}

func TestGetGraphView_CachedThroughBus(t *testing.T) {
	ctx := context.Background()
	nodeRepo := new(mocks.MockNodeRepository)
	edgeRepo := new(mocks.MockEdgeRepository)
	cache := new(mocks.MockCache)

	nodeRepo.On("ListByUser", ctx, "u1").Return([]*entities.GraphNode{}, nil).Once()
	edgeRepo.On("ListByUser", ctx, "u1").Return([]*entities.GraphEdge{}, nil).Once()
	cache.On("Get", ctx, ports.GraphViewCacheKey("u1")).Return(nil, false).Once()
	cache.On("Set", ctx, ports.GraphViewCacheKey("u1"), mock.Anything, 60).Return(nil).Once()

	handler := NewGetGraphViewHandler(nodeRepo, edgeRepo, zap.NewNop())
	caching := bus.NewCachingMiddleware(cache, time.Minute, func(q bus.Query) (string, bool) {
		v, ok := q.(queries.GetGraphViewQuery)
		return ports.GraphViewCacheKey(v.UserID), ok
	}, zap.NewNop())

	qb := bus.NewQueryBus(nil)
	require.NoError(t, qb.Register(queries.GetGraphViewQuery{}, caching.Wrap(bus.QueryHandlerFunc(
		func(ctx context.Context, q bus.Query) (interface{}, error) {
			return handler.Handle(ctx, q.(queries.GetGraphViewQuery))
		}))))

	first, err := qb.Ask(ctx, queries.GetGraphViewQuery{UserID: "u1"})
	require.NoError(t, err)

	cache.On("Get", ctx, ports.GraphViewCacheKey("u1")).Return(first, true).Once()
	second, err := qb.Ask(ctx, queries.GetGraphViewQuery{UserID: "u1"})
	require.NoError(t, err)
	assert.Same(t, first, second)

	nodeRepo.AssertExpectations(t)
	cache.AssertExpectations(t)

	_, err = qb.Ask(ctx, queries.GetGraphViewQuery{})
	assert.True(t, pkgerrors.IsValidation(err))
	_, err = qb.Ask(ctx, queries.HasNotesQuery{UserID: "u1"})
	assert.ErrorIs(t, err, bus.ErrHandlerNotFound)
}

type stubAssembler struct {
	graph    *services.AssembledGraph
	err      error
	hasNotes bool
}

func (s *stubAssembler) GenerateGraphFromNotes(context.Context, string) (*services.AssembledGraph, error) {
	return s.graph, s.err
}

func (s *stubAssembler) UserHasNotes(context.Context, string) bool { return s.hasNotes }

func TestGenerateGraphHandler_Handle(t *testing.T) {
	ctx := context.Background()
	book, err := entities.NewGraphNode("u1", entities.NodeTypeBook, "John", "John", "", nil)
	require.NoError(t, err)

	asm := &stubAssembler{graph: &services.AssembledGraph{
		Nodes:   []*entities.GraphNode{book},
		Summary: services.Summary{Books: 1},
		Failures: []services.StepFailure{
			{Step: "place", Key: "rome", Err: errors.New("boom")},
		},
	}}
	result, err := NewGenerateGraphHandler(asm, zap.NewNop()).Handle(ctx, queries.GenerateGraphQuery{UserID: "u1"})
	require.NoError(t, err)
	assert.Len(t, result.Nodes, 1)
	assert.Equal(t, 1, result.Summary.Books)
	assert.Equal(t, 1, result.Failures)

	failing := &stubAssembler{err: pkgerrors.NewDatabaseError("list notes", errors.New("down"))}
	_, err = NewGenerateGraphHandler(failing, zap.NewNop()).Handle(ctx, queries.GenerateGraphQuery{UserID: "u1"})
	assert.Error(t, err)
}

func TestHasNotesHandler_Handle(t *testing.T) {
	result, err := NewHasNotesHandler(&stubAssembler{hasNotes: true}).Handle(context.Background(), queries.HasNotesQuery{UserID: "u1"})
	require.NoError(t, err)
	assert.True(t, result.HasNotes)
}
