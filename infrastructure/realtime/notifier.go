package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	apigwTypes "github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"
	"go.uber.org/zap"
)

// MessageTypeCollectionChanged tells clients to refetch a collection
const MessageTypeCollectionChanged = "collection_changed"

// PostAPI is the part of the management API client used for pushes
type PostAPI interface {
	PostToConnection(ctx context.Context, params *apigatewaymanagementapi.PostToConnectionInput, optFns ...func(*apigatewaymanagementapi.Options)) (*apigatewaymanagementapi.PostToConnectionOutput, error)
}

// ClientFactory returns a management API client for an endpoint
// ("<api-id>.execute-api.<region>.amazonaws.com/<stage>")
type ClientFactory func(endpoint string) PostAPI

// NewClientFactory builds clients from an AWS config, one per endpoint
func NewClientFactory(cfg aws.Config) ClientFactory {
	clients := make(map[string]PostAPI)
	return func(endpoint string) PostAPI {
		if c, ok := clients[endpoint]; ok {
			return c
		}
		c := apigatewaymanagementapi.NewFromConfig(cfg, func(o *apigatewaymanagementapi.Options) {
			o.BaseEndpoint = aws.String("https://" + strings.TrimPrefix(endpoint, "https://"))
		})
		clients[endpoint] = c
		return c
	}
}

// Message is the frame sent to clients
type Message struct {
	Type      string                 `json:"type"`
	Timestamp int64                  `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// SendResult counts pushes of one notification
type SendResult struct {
	Sent   int
	Pruned int
	Failed int
}

// Notifier pushes messages to every connection of a user
type Notifier struct {
	store           *ConnectionStore
	clients         ClientFactory
	defaultEndpoint string
	logger          *zap.Logger
	now             func() time.Time
}

// NewNotifier creates a notifier. defaultEndpoint is used for connections
// registered without one.
func NewNotifier(store *ConnectionStore, clients ClientFactory, defaultEndpoint string, logger *zap.Logger) *Notifier {
	return &Notifier{
		store:           store,
		clients:         clients,
		defaultEndpoint: defaultEndpoint,
		logger:          logger,
		now:             time.Now,
	}
}

// NotifyCollectionChanged tells the user's clients that collection changed
func (n *Notifier) NotifyCollectionChanged(ctx context.Context, userID, collection string) (SendResult, error) {
	return n.Send(ctx, userID, Message{
		Type: MessageTypeCollectionChanged,
		Data: map[string]interface{}{
			"collection": collection,
			"user_id":    userID,
		},
	})
}

// Send posts msg to every connection of userID. Gone connections are
// deleted. An error is returned only when nothing could be delivered.
func (n *Notifier) Send(ctx context.Context, userID string, msg Message) (SendResult, error) {
	var result SendResult

	conns, err := n.store.ListByUser(ctx, userID)
	if err != nil {
		return result, err
	}
	if len(conns) == 0 {
		return result, nil
	}

	if msg.Timestamp == 0 {
		msg.Timestamp = n.now().Unix()
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return result, fmt.Errorf("failed to marshal message: %w", err)
	}

	for _, conn := range conns {
		endpoint := conn.Endpoint
		if endpoint == "" {
			endpoint = n.defaultEndpoint
		}

		_, err := n.clients(endpoint).PostToConnection(ctx, &apigatewaymanagementapi.PostToConnectionInput{
			ConnectionId: aws.String(conn.ConnectionID),
			Data:         payload,
		})
		if err == nil {
			result.Sent++
			continue
		}

		var gone *apigwTypes.GoneException
		if errors.As(err, &gone) {
			if delErr := n.store.Delete(ctx, conn.ConnectionID); delErr != nil {
				n.logger.Warn("Failed to remove stale connection",
					zap.String("connectionID", conn.ConnectionID),
					zap.Error(delErr),
				)
			}
			result.Pruned++
			continue
		}

		n.logger.Warn("Failed to send to connection",
			zap.String("connectionID", conn.ConnectionID),
			zap.Error(err),
		)
		result.Failed++
	}

	n.logger.Info("Notification sent",
		zap.String("userID", userID),
		zap.String("type", msg.Type),
		zap.Int("sent", result.Sent),
		zap.Int("pruned", result.Pruned),
		zap.Int("failed", result.Failed),
	)

	if result.Failed > 0 && result.Sent == 0 {
		return result, fmt.Errorf("all %d sends failed", result.Failed)
	}
	return result, nil
}
