// Package realtime keeps track of WebSocket connections and pushes graph
// change notifications to them.
package realtime

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// ConnectionTTL bounds how long an idle connection record survives
const ConnectionTTL = 24 * time.Hour

// UserIndexName is the GSI keyed by GSI1PK=USER#<id>
const UserIndexName = "connection-id-index"

// DynamoAPI is the part of the DynamoDB client the connection store uses
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Connection is one open WebSocket
type Connection struct {
	ConnectionID string    `dynamodbav:"ConnectionID"`
	UserID       string    `dynamodbav:"UserID"`
	Endpoint     string    `dynamodbav:"Endpoint"`
	ConnectedAt  time.Time `dynamodbav:"ConnectedAt"`
}

type connectionItem struct {
	PK     string `dynamodbav:"PK"`
	SK     string `dynamodbav:"SK"`
	GSI1PK string `dynamodbav:"GSI1PK"`
	GSI1SK string `dynamodbav:"GSI1SK"`
	TTL    int64  `dynamodbav:"TTL"`
	Connection
}

// ConnectionStore persists connections in the connections table
type ConnectionStore struct {
	client    DynamoAPI
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewConnectionStore creates a store over tableName
func NewConnectionStore(client DynamoAPI, tableName string, logger *zap.Logger) *ConnectionStore {
	return &ConnectionStore{
		client:    client,
		tableName: tableName,
		indexName: UserIndexName,
		logger:    logger,
	}
}

func connectionKey(connectionID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: "CONNECTION#" + connectionID},
		"SK": &types.AttributeValueMemberS{Value: "METADATA"},
	}
}

// Save registers a connection
func (s *ConnectionStore) Save(ctx context.Context, conn Connection) error {
	if conn.ConnectedAt.IsZero() {
		conn.ConnectedAt = time.Now().UTC()
	}
	item, err := attributevalue.MarshalMap(connectionItem{
		PK:         "CONNECTION#" + conn.ConnectionID,
		SK:         "METADATA",
		GSI1PK:     "USER#" + conn.UserID,
		GSI1SK:     "CONNECTION#" + conn.ConnectionID,
		TTL:        conn.ConnectedAt.Add(ConnectionTTL).Unix(),
		Connection: conn,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal connection: %w", err)
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("failed to store connection: %w", err)
	}

	s.logger.Debug("Stored connection",
		zap.String("connectionID", conn.ConnectionID),
		zap.String("userID", conn.UserID),
	)
	return nil
}

// Delete removes a connection record
func (s *ConnectionStore) Delete(ctx context.Context, connectionID string) error {
	if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       connectionKey(connectionID),
	}); err != nil {
		return fmt.Errorf("failed to delete connection %s: %w", connectionID, err)
	}
	return nil
}

// ListByUser returns every connection registered for userID
func (s *ConnectionStore) ListByUser(ctx context.Context, userID string) ([]Connection, error) {
	paginator := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		IndexName:              aws.String(s.indexName),
		KeyConditionExpression: aws.String("GSI1PK = :userpk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":userpk": &types.AttributeValueMemberS{Value: "USER#" + userID},
		},
	})

	var conns []Connection
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query connections: %w", err)
		}
		for _, raw := range page.Items {
			var item connectionItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				s.logger.Warn("Skipping malformed connection item", zap.Error(err))
				continue
			}
			if item.ConnectionID == "" {
				continue
			}
			conns = append(conns, item.Connection)
		}
	}
	return conns, nil
}
