package handlers

import (
	"net/http"

	"versegraph/application/commands"
	"versegraph/application/commands/bus"
	"versegraph/application/queries"
	querybus "versegraph/application/queries/bus"
	pkgerrors "versegraph/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// NotesHandler exposes the note-driven entry points of the graph
type NotesHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewNotesHandler creates a new notes handler
func NewNotesHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *NotesHandler {
	return &NotesHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     errorHandler,
		logger:     logger,
	}
}

// GenerateNoteGraph handles POST /notes/{noteID}/graph
func (h *NotesHandler) GenerateNoteGraph(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFrom(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	noteID := chi.URLParam(r, "noteID")
	cmd := commands.GenerateNoteGraphCommand{UserID: userID, NoteID: noteID}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{
		"note_id": noteID,
		"message": "Graph generation accepted",
	})
}

// NotesExist handles GET /notes/exists
func (h *NotesHandler) NotesExist(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFrom(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.HasNotesQuery{UserID: userID})
	if err != nil {
		h.logger.Error("Failed to check notes", zap.String("userID", userID), zap.Error(err))
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
