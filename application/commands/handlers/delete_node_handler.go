package handlers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"versegraph/application/commands"
	"versegraph/application/ports"
	"versegraph/domain/core/valueobjects"
	"versegraph/domain/events"
	pkgerrors "versegraph/pkg/errors"
)

// DeleteNodeHandler handles node deletion commands
type DeleteNodeHandler struct {
	nodeRepo  ports.NodeRepository
	edgeRepo  ports.EdgeRepository
	publisher ports.EventPublisher
	cache     ports.Cache
	logger    *zap.Logger
}

// NewDeleteNodeHandler creates a new delete node handler
func NewDeleteNodeHandler(
	nodeRepo ports.NodeRepository,
	edgeRepo ports.EdgeRepository,
	publisher ports.EventPublisher,
	cache ports.Cache,
	logger *zap.Logger,
) *DeleteNodeHandler {
	return &DeleteNodeHandler{
		nodeRepo:  nodeRepo,
		edgeRepo:  edgeRepo,
		publisher: publisher,
		cache:     cache,
		logger:    logger,
	}
}

// Handle removes the node's edges first so no edge outlives an endpoint
func (h *DeleteNodeHandler) Handle(ctx context.Context, cmd commands.DeleteGraphNodeCommand) error {
	nodeID, err := valueobjects.NewNodeIDFromString(cmd.NodeID)
	if err != nil {
		return pkgerrors.NewValidationError("invalid node ID").WithCause(err)
	}

	node, err := h.nodeRepo.GetByID(ctx, cmd.UserID, nodeID)
	if err != nil {
		return err
	}

	removed, err := h.edgeRepo.DeleteByNode(ctx, cmd.UserID, nodeID)
	if err != nil {
		return fmt.Errorf("failed to delete edges of node: %w", err)
	}

	if err := h.nodeRepo.Delete(ctx, cmd.UserID, nodeID); err != nil {
		return fmt.Errorf("failed to delete node: %w", err)
	}

	invalidateGraphView(ctx, h.cache, cmd.UserID, h.logger)

	if h.publisher != nil {
		event := events.NewGraphNodeDeleted(cmd.NodeID, cmd.UserID, string(node.Type()), removed, time.Now().UTC())
		if err := h.publisher.Publish(ctx, event); err != nil {
			h.logger.Warn("Failed to publish deletion event", zap.Error(err))
		}
	}

	h.logger.Info("Graph node deleted",
		zap.String("nodeID", cmd.NodeID),
		zap.String("userID", cmd.UserID),
		zap.Int("edgesRemoved", removed),
	)

	return nil
}
