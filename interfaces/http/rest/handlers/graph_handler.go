package handlers

import (
	"net/http"

	"versegraph/application/queries"
	querybus "versegraph/application/queries/bus"
	pkgerrors "versegraph/pkg/errors"

	"go.uber.org/zap"
)

// GraphHandler serves the user's knowledge graph
type GraphHandler struct {
	queryBus *querybus.QueryBus
	errors   *pkgerrors.ErrorHandler
	logger   *zap.Logger
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(queryBus *querybus.QueryBus, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *GraphHandler {
	return &GraphHandler{
		queryBus: queryBus,
		errors:   errorHandler,
		logger:   logger,
	}
}

// GetGraph handles GET /graph
func (h *GraphHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFrom(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetGraphViewQuery{UserID: userID})
	if err != nil {
		h.logger.Error("Failed to get graph", zap.String("userID", userID), zap.Error(err))
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GenerateGraph handles POST /graph/generate. It walks every active note of
// the caller and returns the touched nodes and the edges created by the run.
func (h *GraphHandler) GenerateGraph(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFrom(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GenerateGraphQuery{UserID: userID})
	if err != nil {
		if pkgerrors.IsValidation(err) || pkgerrors.IsConflict(err) {
			h.errors.Handle(w, r, err)
			return
		}
		h.logger.Error("Graph generation failed", zap.String("userID", userID), zap.Error(err))
		h.errors.HandleStatus(w, r, http.StatusInternalServerError, "Failed to generate graph")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
