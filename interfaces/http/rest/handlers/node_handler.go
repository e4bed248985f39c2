package handlers

import (
	"net/http"

	"versegraph/application/commands"
	"versegraph/application/commands/bus"
	"versegraph/domain/core/entities"
	pkgerrors "versegraph/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// NodeHandler handles edits to individual graph nodes
type NodeHandler struct {
	commandBus *bus.CommandBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(commandBus *bus.CommandBus, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *NodeHandler {
	return &NodeHandler{
		commandBus: commandBus,
		errors:     errorHandler,
		logger:     logger,
	}
}

// UpdateNodeRequest represents the request body for PATCH /graph/nodes/{nodeID}.
// A null metadata value removes that key.
type UpdateNodeRequest struct {
	Label       *string           `json:"label,omitempty"`
	Description *string           `json:"description,omitempty"`
	Metadata    entities.Metadata `json:"metadata,omitempty"`
}

// UpdateNode handles PATCH /graph/nodes/{nodeID}
func (h *NodeHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFrom(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var req UpdateNodeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	nodeID := chi.URLParam(r, "nodeID")
	cmd := commands.UpdateGraphNodeCommand{
		UserID:      userID,
		NodeID:      nodeID,
		Label:       req.Label,
		Description: req.Description,
		Metadata:    req.Metadata,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"node_id": nodeID,
		"message": "Node updated successfully",
	})
}

// DeleteNode handles DELETE /graph/nodes/{nodeID}
func (h *NodeHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFrom(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	nodeID := chi.URLParam(r, "nodeID")
	if err := h.commandBus.Send(r.Context(), commands.DeleteGraphNodeCommand{UserID: userID, NodeID: nodeID}); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.logger.Info("Graph node deleted", zap.String("userID", userID), zap.String("nodeID", nodeID))
	respondJSON(w, http.StatusOK, map[string]string{
		"node_id": nodeID,
		"message": "Node deleted successfully",
	})
}
