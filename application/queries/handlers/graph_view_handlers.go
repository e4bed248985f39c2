package handlers

import (
	"context"

	"go.uber.org/zap"

	"versegraph/application/ports"
	"versegraph/application/queries"
	"versegraph/application/services"
	pkgerrors "versegraph/pkg/errors"
)

// GetGraphViewHandler serves the stored graph of a user
type GetGraphViewHandler struct {
	nodeRepo ports.NodeRepository
	edgeRepo ports.EdgeRepository
	logger   *zap.Logger
}

// NewGetGraphViewHandler creates a new graph view handler
func NewGetGraphViewHandler(nodeRepo ports.NodeRepository, edgeRepo ports.EdgeRepository, logger *zap.Logger) *GetGraphViewHandler {
	return &GetGraphViewHandler{
		nodeRepo: nodeRepo,
		edgeRepo: edgeRepo,
		logger:   logger,
	}
}

// Handle executes the graph view query
func (h *GetGraphViewHandler) Handle(ctx context.Context, query queries.GetGraphViewQuery) (*queries.GraphView, error) {
	nodes, err := h.nodeRepo.ListByUser(ctx, query.UserID)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("list graph nodes", err)
	}

	edges, err := h.edgeRepo.ListByUser(ctx, query.UserID)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("list graph edges", err)
	}

	view := queries.BuildGraphView(nodes, edges)
	if dropped := len(edges) - len(view.Edges); dropped > 0 {
		h.logger.Warn("Dropped edges with missing endpoints",
			zap.String("userID", query.UserID),
			zap.Int("dropped", dropped),
		)
	}

	return &view, nil
}

// GraphAssembly is the part of services.GraphAssembler the handlers use
type GraphAssembly interface {
	GenerateGraphFromNotes(ctx context.Context, userID string) (*services.AssembledGraph, error)
	UserHasNotes(ctx context.Context, userID string) bool
}

// GenerateGraphHandler runs full-graph generation
type GenerateGraphHandler struct {
	assembler GraphAssembly
	logger    *zap.Logger
}

// NewGenerateGraphHandler creates the handler
func NewGenerateGraphHandler(assembler GraphAssembly, logger *zap.Logger) *GenerateGraphHandler {
	return &GenerateGraphHandler{
		assembler: assembler,
		logger:    logger,
	}
}

// Handle executes the generate query
func (h *GenerateGraphHandler) Handle(ctx context.Context, query queries.GenerateGraphQuery) (*queries.GeneratedGraphView, error) {
	graph, err := h.assembler.GenerateGraphFromNotes(ctx, query.UserID)
	if err != nil {
		return nil, err
	}

	return &queries.GeneratedGraphView{
		GraphView: queries.BuildGraphView(graph.Nodes, graph.Edges),
		Summary:   graph.Summary,
		Failures:  len(graph.Failures),
	}, nil
}

// HasNotesHandler answers HasNotesQuery
type HasNotesHandler struct {
	assembler GraphAssembly
}

// NewHasNotesHandler creates the handler
func NewHasNotesHandler(assembler GraphAssembly) *HasNotesHandler {
	return &HasNotesHandler{assembler: assembler}
}

// Handle executes the query
func (h *HasNotesHandler) Handle(ctx context.Context, query queries.HasNotesQuery) (*queries.HasNotesResult, error) {
	return &queries.HasNotesResult{HasNotes: h.assembler.UserHasNotes(ctx, query.UserID)}, nil
}
