// Package main implements the Lambda that derives graph nodes and edges
// from journal notes. It consumes note.saved events from EventBridge and
// accepts direct invocations for a single note or a full rebuild.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"versegraph/application/commands"
	commandbus "versegraph/application/commands/bus"
	"versegraph/application/queries"
	querybus "versegraph/application/queries/bus"
	"versegraph/application/services"
	"versegraph/domain/events"
	"versegraph/infrastructure/config"
	"versegraph/infrastructure/di"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
)

// CommandSender dispatches commands
type CommandSender interface {
	Send(ctx context.Context, cmd commandbus.Command) error
}

// QueryAsker dispatches queries
type QueryAsker interface {
	Ask(ctx context.Context, query querybus.Query) (interface{}, error)
}

// GenerateRequest is the payload of a direct invocation. Full rebuilds the
// graph from every active note; otherwise NoteID is required.
type GenerateRequest struct {
	UserID string `json:"user_id"`
	NoteID string `json:"note_id,omitempty"`
	Full   bool   `json:"full,omitempty"`
}

// GenerateResponse reports what a full rebuild did
type GenerateResponse struct {
	UserID   string            `json:"user_id"`
	NoteID   string            `json:"note_id,omitempty"`
	Summary  *services.Summary `json:"summary,omitempty"`
	Nodes    int               `json:"nodes"`
	Edges    int               `json:"edges"`
	Failures int               `json:"failures"`
}

// Handler routes invocations to the command and query buses
type Handler struct {
	commands CommandSender
	queries  QueryAsker
	logger   *zap.Logger
}

// Handle accepts an EventBridge event or a GenerateRequest
func (h *Handler) Handle(ctx context.Context, raw json.RawMessage) (*GenerateResponse, error) {
	var envelope awsevents.CloudWatchEvent
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.DetailType != "" {
		return h.handleEvent(ctx, envelope)
	}

	var req GenerateRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("unable to parse event: %w", err)
	}
	if req.Full {
		return h.rebuild(ctx, req.UserID)
	}
	return h.generateNote(ctx, req.UserID, req.NoteID)
}

func (h *Handler) handleEvent(ctx context.Context, event awsevents.CloudWatchEvent) (*GenerateResponse, error) {
	if event.DetailType != events.TypeNoteSaved {
		h.logger.Debug("Ignoring event", zap.String("detailType", event.DetailType))
		return nil, nil
	}

	var detail struct {
		NoteID string `json:"note_id"`
		UserID string `json:"user_id"`
	}
	if err := json.Unmarshal(event.Detail, &detail); err != nil {
		return nil, fmt.Errorf("failed to parse %s detail: %w", events.TypeNoteSaved, err)
	}
	return h.generateNote(ctx, detail.UserID, detail.NoteID)
}

func (h *Handler) generateNote(ctx context.Context, userID, noteID string) (*GenerateResponse, error) {
	cmd := commands.GenerateNoteGraphCommand{UserID: userID, NoteID: noteID}
	if err := h.commands.Send(ctx, cmd); err != nil {
		h.logger.Error("Note graph generation failed",
			zap.String("userID", userID),
			zap.String("noteID", noteID),
			zap.Error(err),
		)
		return nil, err
	}
	return &GenerateResponse{UserID: userID, NoteID: noteID}, nil
}

func (h *Handler) rebuild(ctx context.Context, userID string) (*GenerateResponse, error) {
	out, err := h.queries.Ask(ctx, queries.GenerateGraphQuery{UserID: userID})
	if err != nil {
		h.logger.Error("Graph rebuild failed", zap.String("userID", userID), zap.Error(err))
		return nil, err
	}

	view, ok := out.(*queries.GeneratedGraphView)
	if !ok {
		return nil, fmt.Errorf("unexpected result %T", out)
	}
	h.logger.Info("Graph rebuilt",
		zap.String("userID", userID),
		zap.Int("notes", view.Summary.Notes),
		zap.Int("failures", view.Failures),
	)
	return &GenerateResponse{
		UserID:   userID,
		Summary:  &view.Summary,
		Nodes:    len(view.Nodes),
		Edges:    len(view.Edges),
		Failures: view.Failures,
	}, nil
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	container, cleanup, err := di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize dependency container: %v", err)
	}
	defer cleanup()

	h := &Handler{
		commands: container.CommandBus,
		queries:  container.QueryBus,
		logger:   container.Logger,
	}
	lambda.Start(h.Handle)
}
