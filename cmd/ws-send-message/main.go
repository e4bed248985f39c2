// Package main implements the realtime fan-out Lambda. It consumes graph
// events from EventBridge and tells every open WebSocket session of the
// affected user which collection to refetch.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"versegraph/domain/events"
	"versegraph/infrastructure/config"
	"versegraph/infrastructure/di"
	"versegraph/infrastructure/realtime"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
)

// CollectionNotifier pushes collection change notices to a user's clients
type CollectionNotifier interface {
	NotifyCollectionChanged(ctx context.Context, userID, collection string) (realtime.SendResult, error)
}

// graphEventDetail covers the detail fields of every graph event
type graphEventDetail struct {
	UserID     string `json:"user_id"`
	Collection string `json:"collection"`
}

// Handler fans graph events out to WebSocket clients
type Handler struct {
	notifier CollectionNotifier
	logger   *zap.Logger
}

// Handle processes one EventBridge event
func (h *Handler) Handle(ctx context.Context, event awsevents.CloudWatchEvent) error {
	var detail graphEventDetail
	if err := json.Unmarshal(event.Detail, &detail); err != nil {
		h.logger.Error("Malformed event detail", zap.String("detailType", event.DetailType), zap.Error(err))
		// retrying will not fix the payload
		return nil
	}

	switch event.DetailType {
	case events.TypeCollectionChanged:
	case events.TypeGraphNodeUpdated, events.TypeGraphNodeDeleted:
		detail.Collection = events.CollectionGraphNodes
	default:
		h.logger.Debug("Ignoring event", zap.String("detailType", event.DetailType))
		return nil
	}

	if detail.UserID == "" || detail.Collection == "" {
		h.logger.Warn("Event without user or collection", zap.String("eventID", event.ID))
		return nil
	}

	result, err := h.notifier.NotifyCollectionChanged(ctx, detail.UserID, detail.Collection)
	if err != nil {
		return fmt.Errorf("notify %s: %w", detail.UserID, err)
	}

	h.logger.Info("Collection change delivered",
		zap.String("userID", detail.UserID),
		zap.String("collection", detail.Collection),
		zap.Int("sent", result.Sent),
		zap.Int("pruned", result.Pruned),
		zap.Int("failed", result.Failed),
	)
	return nil
}

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, err := di.ProvideLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	awsCfg, err := di.ProvideAWSConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}

	store := di.ProvideConnectionStore(di.ProvideDynamoDBClient(awsCfg), cfg, logger)
	h := &Handler{
		notifier: di.ProvideNotifier(store, awsCfg, cfg, logger),
		logger:   logger,
	}
	lambda.Start(h.Handle)
}
