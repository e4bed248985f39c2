package handlers

import (
	"context"

	"go.uber.org/zap"

	"versegraph/application/commands"
	"versegraph/application/services"
)

// NoteGraphGenerator is the part of services.GraphGenerator the handler uses
type NoteGraphGenerator interface {
	GenerateForNoteID(ctx context.Context, userID, noteID string) (*services.GenerationResult, error)
}

// GenerateNoteGraphHandler runs generation for a single note
type GenerateNoteGraphHandler struct {
	generator NoteGraphGenerator
	logger    *zap.Logger
}

// NewGenerateNoteGraphHandler creates the handler
func NewGenerateNoteGraphHandler(generator NoteGraphGenerator, logger *zap.Logger) *GenerateNoteGraphHandler {
	return &GenerateNoteGraphHandler{
		generator: generator,
		logger:    logger,
	}
}

// Handle executes the command. Item failures are logged by the generator
// and do not fail the command.
func (h *GenerateNoteGraphHandler) Handle(ctx context.Context, cmd commands.GenerateNoteGraphCommand) error {
	result, err := h.generator.GenerateForNoteID(ctx, cmd.UserID, cmd.NoteID)
	if err != nil {
		return err
	}

	if len(result.Failures) > 0 {
		h.logger.Warn("Note graph generated with failures",
			zap.String("noteID", cmd.NoteID),
			zap.Int("failures", len(result.Failures)),
		)
	}
	return nil
}
