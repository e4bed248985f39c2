// Package main implements the WebSocket $connect and $disconnect handler.
// Connections are accepted only with a valid JWT and registered so graph
// changes can be pushed to the user's open sessions.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"versegraph/infrastructure/config"
	"versegraph/infrastructure/di"
	"versegraph/infrastructure/realtime"
	"versegraph/pkg/auth"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
)

// TokenValidator validates the token passed on the upgrade request
type TokenValidator interface {
	ValidateToken(tokenString string) (*auth.Claims, error)
}

// ConnectionRegistry stores open connections
type ConnectionRegistry interface {
	Save(ctx context.Context, conn realtime.Connection) error
	Delete(ctx context.Context, connectionID string) error
}

// Handler processes WebSocket lifecycle requests
type Handler struct {
	validator   TokenValidator
	connections ConnectionRegistry
	logger      *zap.Logger
	now         func() time.Time
}

// Handle dispatches on the route key
func (h *Handler) Handle(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	switch request.RequestContext.RouteKey {
	case "$disconnect":
		return h.disconnect(ctx, request)
	default:
		return h.connect(ctx, request)
	}
}

func (h *Handler) connect(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	connectionID := request.RequestContext.ConnectionID

	// browsers cannot set headers on the upgrade, so the token usually
	// arrives as a query parameter
	token := request.QueryStringParameters["token"]
	if token == "" {
		token = headerValue(request.Headers, "Authorization")
	}
	if token == "" {
		return respond(http.StatusUnauthorized, map[string]string{"error": "missing authentication token"}), nil
	}

	claims, err := h.validator.ValidateToken(token)
	if err != nil {
		h.logger.Warn("WebSocket authentication failed", zap.String("connectionID", connectionID), zap.Error(err))
		return respond(http.StatusUnauthorized, map[string]string{"error": "unauthorized"}), nil
	}

	conn := realtime.Connection{
		ConnectionID: connectionID,
		UserID:       claims.UserID,
		Endpoint:     fmt.Sprintf("%s/%s", request.RequestContext.DomainName, request.RequestContext.Stage),
		ConnectedAt:  h.now(),
	}
	if err := h.connections.Save(ctx, conn); err != nil {
		h.logger.Error("Failed to store connection", zap.String("connectionID", connectionID), zap.Error(err))
		return respond(http.StatusInternalServerError, map[string]string{"error": "internal server error"}), nil
	}

	h.logger.Info("WebSocket connection established",
		zap.String("connectionID", connectionID),
		zap.String("userID", claims.UserID),
	)
	return respond(http.StatusOK, map[string]interface{}{
		"type":         "connection_established",
		"connectionId": connectionID,
		"userId":       claims.UserID,
		"timestamp":    conn.ConnectedAt.Unix(),
	}), nil
}

func (h *Handler) disconnect(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	connectionID := request.RequestContext.ConnectionID
	if err := h.connections.Delete(ctx, connectionID); err != nil {
		// the TTL removes it eventually
		h.logger.Warn("Failed to remove connection", zap.String("connectionID", connectionID), zap.Error(err))
	}
	return respond(http.StatusOK, map[string]string{"type": "disconnected"}), nil
}

func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func respond(status int, body interface{}) events.APIGatewayProxyResponse {
	data, _ := json.Marshal(body)
	return events.APIGatewayProxyResponse{StatusCode: status, Body: string(data)}
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
	validator, err := di.ProvideTokenValidator(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create token validator: %v", err)
	}

	h := &Handler{
		validator:   validator,
		connections: di.ProvideConnectionStore(di.ProvideDynamoDBClient(awsCfg), cfg, logger),
		logger:      logger,
		now:         time.Now,
	}
	lambda.Start(h.Handle)
}
