package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"versegraph/application/commands"
	"versegraph/application/ports"
	"versegraph/domain/config"
	"versegraph/domain/core/valueobjects"
	pkgerrors "versegraph/pkg/errors"
)

// UpdateNodeHandler handles explicit node edits
type UpdateNodeHandler struct {
	nodeRepo  ports.NodeRepository
	publisher ports.EventPublisher
	cache     ports.Cache
	config    *config.DomainConfig
	logger    *zap.Logger
}

// NewUpdateNodeHandler creates a new update node handler
func NewUpdateNodeHandler(
	nodeRepo ports.NodeRepository,
	publisher ports.EventPublisher,
	cache ports.Cache,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *UpdateNodeHandler {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &UpdateNodeHandler{
		nodeRepo:  nodeRepo,
		publisher: publisher,
		cache:     cache,
		config:    cfg,
		logger:    logger,
	}
}

// Handle executes the update node command
func (h *UpdateNodeHandler) Handle(ctx context.Context, cmd commands.UpdateGraphNodeCommand) error {
	nodeID, err := valueobjects.NewNodeIDFromString(cmd.NodeID)
	if err != nil {
		return pkgerrors.NewValidationError("invalid node ID").WithCause(err)
	}

	node, err := h.nodeRepo.GetByID(ctx, cmd.UserID, nodeID)
	if err != nil {
		return err
	}

	if err := node.Edit(cmd.Label, cmd.Description, cmd.Metadata, h.config.MaxLabelLength); err != nil {
		return err
	}

	if err := h.nodeRepo.Update(ctx, node); err != nil {
		return fmt.Errorf("failed to update node: %w", err)
	}

	invalidateGraphView(ctx, h.cache, cmd.UserID, h.logger)

	if pending := node.GetUncommittedEvents(); len(pending) > 0 && h.publisher != nil {
		if err := h.publisher.PublishBatch(ctx, pending); err != nil {
			h.logger.Warn("Failed to publish node update events", zap.Error(err))
		}
		node.MarkEventsAsCommitted()
	}

	h.logger.Info("Graph node updated",
		zap.String("nodeID", cmd.NodeID),
		zap.String("userID", cmd.UserID),
	)

	return nil
}

func invalidateGraphView(ctx context.Context, cache ports.Cache, userID string, logger *zap.Logger) {
	if cache == nil {
		return
	}
	if err := cache.Delete(ctx, ports.GraphViewCacheKey(userID)); err != nil {
		logger.Warn("Failed to invalidate graph view", zap.String("userID", userID), zap.Error(err))
	}
}
