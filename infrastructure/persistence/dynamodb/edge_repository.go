package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"versegraph/application/ports"
	"versegraph/domain/core/entities"
	"versegraph/domain/core/valueobjects"
)

// EdgeRepository implements ports.EdgeRepository using DynamoDB. The sort
// key EDGE#<src>#<tgt> makes one edge per ordered pair regardless of type.
type EdgeRepository struct {
	client    API
	tableName string
	logger    *zap.Logger
}

var _ ports.EdgeRepository = (*EdgeRepository)(nil)

// NewEdgeRepository creates a new EdgeRepository
func NewEdgeRepository(client API, tableName string, logger *zap.Logger) *EdgeRepository {
	return &EdgeRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// edgeItem represents the DynamoDB item structure for an edge
type edgeItem struct {
	PK         string  `dynamodbav:"PK"`
	SK         string  `dynamodbav:"SK"`
	EntityType string  `dynamodbav:"EntityType"`
	EdgeID     string  `dynamodbav:"EdgeID"`
	UserID     string  `dynamodbav:"UserID"`
	SourceID   string  `dynamodbav:"SourceID"`
	TargetID   string  `dynamodbav:"TargetID"`
	Type       string  `dynamodbav:"Type"`
	Weight     float64 `dynamodbav:"Weight"`
	CreatedAt  string  `dynamodbav:"CreatedAt"`

	GSI2PK string `dynamodbav:"GSI2PK,omitempty"` // NODE#<source>
	GSI2SK string `dynamodbav:"GSI2SK,omitempty"` // EDGE#<id>
	GSI3PK string `dynamodbav:"GSI3PK,omitempty"` // TARGET#<target>
	GSI3SK string `dynamodbav:"GSI3SK,omitempty"` // EDGE#<id>
}

func edgeSK(source, target valueobjects.NodeID) string {
	return fmt.Sprintf("EDGE#%s#%s", source.String(), target.String())
}

// Exists reports whether the ordered pair has an edge
func (r *EdgeRepository) Exists(ctx context.Context, key valueobjects.EdgeKey) (bool, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userPK(key.UserID)},
			"SK": &types.AttributeValueMemberS{Value: edgeSK(key.SourceNodeID, key.TargetNodeID)},
		},
		ProjectionExpression: aws.String("PK"),
		ConsistentRead:       aws.Bool(true),
	})
	if err != nil {
		return false, fmt.Errorf("failed to get edge: %w", err)
	}
	return len(out.Item) > 0, nil
}

// CreateIfAbsent writes edge with a conditional put
func (r *EdgeRepository) CreateIfAbsent(ctx context.Context, edge *entities.GraphEdge) (bool, error) {
	item := edgeItem{
		PK:         userPK(edge.UserID()),
		SK:         edgeSK(edge.SourceNodeID(), edge.TargetNodeID()),
		EntityType: "GRAPH_EDGE",
		EdgeID:     edge.ID().String(),
		UserID:     edge.UserID(),
		SourceID:   edge.SourceNodeID().String(),
		TargetID:   edge.TargetNodeID().String(),
		Type:       string(edge.Type()),
		Weight:     edge.Weight(),
		CreatedAt:  edge.CreatedAt().Format(time.RFC3339Nano),
		GSI2PK:     fmt.Sprintf("NODE#%s", edge.SourceNodeID().String()),
		GSI2SK:     fmt.Sprintf("EDGE#%s", edge.ID().String()),
		GSI3PK:     fmt.Sprintf("TARGET#%s", edge.TargetNodeID().String()),
		GSI3SK:     fmt.Sprintf("EDGE#%s", edge.ID().String()),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return false, fmt.Errorf("failed to marshal edge: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if isConditionalCheckFailed(err) {
		r.logger.Debug("Edge already exists between nodes",
			zap.String("sourceID", item.SourceID),
			zap.String("targetID", item.TargetID),
		)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to save edge: %w", err)
	}
	return true, nil
}

// ListByUser returns every edge of the user
func (r *EdgeRepository) ListByUser(ctx context.Context, userID string) ([]*entities.GraphEdge, error) {
	items, err := r.queryEdges(ctx, userID, nil)
	if err != nil {
		return nil, err
	}

	edges := make([]*entities.GraphEdge, 0, len(items))
	for _, item := range items {
		edge, err := toEdgeEntity(item)
		if err != nil {
			r.logger.Warn("Skipping unreadable edge item", zap.String("edgeID", item.EdgeID), zap.Error(err))
			continue
		}
		edges = append(edges, edge)
	}
	return edges, nil
}

// DeleteByNode removes every edge with nodeID at either end
func (r *EdgeRepository) DeleteByNode(ctx context.Context, userID string, nodeID valueobjects.NodeID) (int, error) {
	filter := expression.Name("SourceID").Equal(expression.Value(nodeID.String())).
		Or(expression.Name("TargetID").Equal(expression.Value(nodeID.String())))

	items, err := r.queryEdges(ctx, userID, &filter)
	if err != nil {
		return 0, err
	}

	keys := make([]map[string]types.AttributeValue, 0, len(items))
	for _, item := range items {
		keys = append(keys, map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: item.PK},
			"SK": &types.AttributeValueMemberS{Value: item.SK},
		})
	}
	if err := deleteKeys(ctx, r.client, r.tableName, keys); err != nil {
		return 0, fmt.Errorf("failed to delete edges: %w", err)
	}

	r.logger.Debug("Deleted edges of node",
		zap.String("nodeID", nodeID.String()),
		zap.Int("count", len(keys)),
	)
	return len(keys), nil
}

func (r *EdgeRepository) queryEdges(ctx context.Context, userID string, filter *expression.ConditionBuilder) ([]edgeItem, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(userPK(userID))).
		And(expression.Key("SK").BeginsWith("EDGE#"))

	builder := expression.NewBuilder().WithKeyCondition(keyCond)
	if filter != nil {
		builder = builder.WithFilter(*filter)
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build edge query: %w", err)
	}

	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	var items []edgeItem
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query edges: %w", err)
		}
		var pageItems []edgeItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &pageItems); err != nil {
			return nil, fmt.Errorf("failed to unmarshal edges: %w", err)
		}
		items = append(items, pageItems...)
	}
	return items, nil
}

func toEdgeEntity(item edgeItem) (*entities.GraphEdge, error) {
	id, err := valueobjects.NewEdgeIDFromString(item.EdgeID)
	if err != nil {
		return nil, err
	}
	source, err := valueobjects.NewNodeIDFromString(item.SourceID)
	if err != nil {
		return nil, err
	}
	target, err := valueobjects.NewNodeIDFromString(item.TargetID)
	if err != nil {
		return nil, err
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, item.CreatedAt)
	return entities.ReconstructGraphEdge(id, item.UserID, source, target, entities.EdgeType(item.Type), item.Weight, createdAt), nil
}
