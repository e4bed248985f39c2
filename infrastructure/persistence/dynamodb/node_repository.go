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
	pkgerrors "versegraph/pkg/errors"
)

// NodeRepository implements ports.NodeRepository using DynamoDB. The sort
// key carries the node identity, so a conditional put is the atomic
// find-or-create.
type NodeRepository struct {
	client      API
	tableName   string
	nodeIDIndex string
	logger      *zap.Logger
}

var _ ports.NodeRepository = (*NodeRepository)(nil)

// NewNodeRepository creates a new NodeRepository
func NewNodeRepository(client API, tableName, nodeIDIndex string, logger *zap.Logger) *NodeRepository {
	return &NodeRepository{
		client:      client,
		tableName:   tableName,
		nodeIDIndex: nodeIDIndex,
		logger:      logger,
	}
}

// nodeItem represents the DynamoDB item structure for a graph node
type nodeItem struct {
	PK          string                 `dynamodbav:"PK"`
	SK          string                 `dynamodbav:"SK"`
	GSI1PK      string                 `dynamodbav:"GSI1PK"` // NODEID#<id>
	GSI1SK      string                 `dynamodbav:"GSI1SK"` // METADATA
	EntityType  string                 `dynamodbav:"EntityType"`
	NodeID      string                 `dynamodbav:"NodeID"`
	UserID      string                 `dynamodbav:"UserID"`
	NodeType    string                 `dynamodbav:"NodeType"`
	ReferenceID string                 `dynamodbav:"ReferenceID"`
	Label       string                 `dynamodbav:"Label"`
	Description string                 `dynamodbav:"Description"`
	Metadata    map[string]interface{} `dynamodbav:"Metadata"`
	CreatedAt   string                 `dynamodbav:"CreatedAt"`
	UpdatedAt   string                 `dynamodbav:"UpdatedAt"`
}

func nodeSK(nodeType, referenceID string) string {
	return fmt.Sprintf("NODE#%s#%s", nodeType, referenceID)
}

func nodeIDKey(id valueobjects.NodeID) string {
	return fmt.Sprintf("NODEID#%s", id.String())
}

func (r *NodeRepository) primaryKey(key valueobjects.NodeKey) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: userPK(key.UserID)},
		"SK": &types.AttributeValueMemberS{Value: nodeSK(key.NodeType, key.ReferenceID)},
	}
}

// FindByKey returns the node stored for key, or nil
func (r *NodeRepository) FindByKey(ctx context.Context, key valueobjects.NodeKey) (*entities.GraphNode, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            r.primaryKey(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get node: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	return r.toEntity(out.Item)
}

// GetByID looks a node up through the node id index
func (r *NodeRepository) GetByID(ctx context.Context, userID string, id valueobjects.NodeID) (*entities.GraphNode, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(r.nodeIDIndex),
		KeyConditionExpression: aws.String("GSI1PK = :pk AND GSI1SK = :sk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: nodeIDKey(id)},
			":sk": &types.AttributeValueMemberS{Value: "METADATA"},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query node: %w", err)
	}

	notFound := pkgerrors.NewNotFoundError("graph node").WithCode(pkgerrors.CodeGraphNodeNotFound)
	if len(out.Items) == 0 {
		return nil, notFound
	}
	node, err := r.toEntity(out.Items[0])
	if err != nil {
		return nil, err
	}
	if node.UserID() != userID {
		return nil, notFound
	}
	return node, nil
}

// CreateIfAbsent writes node with attribute_not_exists(PK). When the
// condition fails the already stored node is returned.
func (r *NodeRepository) CreateIfAbsent(ctx context.Context, node *entities.GraphNode) (*entities.GraphNode, bool, error) {
	av, err := attributevalue.MarshalMap(r.toItem(node))
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal node: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err == nil {
		r.logger.Debug("Node created",
			zap.String("nodeID", node.ID().String()),
			zap.String("key", node.Key().String()),
		)
		return node, true, nil
	}
	if !isConditionalCheckFailed(err) {
		return nil, false, fmt.Errorf("failed to save node: %w", err)
	}

	existing, err := r.FindByKey(ctx, node.Key())
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, fmt.Errorf("node %s conflicted but was not found", node.Key())
	}
	return existing, false, nil
}

// Update persists label, description and metadata
func (r *NodeRepository) Update(ctx context.Context, node *entities.GraphNode) error {
	update := expression.
		Set(expression.Name("Label"), expression.Value(node.Label())).
		Set(expression.Name("Description"), expression.Value(node.Description())).
		Set(expression.Name("Metadata"), expression.Value(map[string]interface{}(node.Metadata()))).
		Set(expression.Name("UpdatedAt"), expression.Value(node.UpdatedAt().Format(time.RFC3339Nano)))
	cond := expression.AttributeExists(expression.Name("PK"))

	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build update expression: %w", err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       r.primaryKey(node.Key()),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if isConditionalCheckFailed(err) {
		return pkgerrors.NewNotFoundError("graph node").WithCode(pkgerrors.CodeGraphNodeNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update node: %w", err)
	}
	return nil
}

// Delete removes a node by id
func (r *NodeRepository) Delete(ctx context.Context, userID string, id valueobjects.NodeID) error {
	node, err := r.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       r.primaryKey(node.Key()),
	})
	if err != nil {
		return fmt.Errorf("failed to delete node: %w", err)
	}
	return nil
}

// ListByUser returns every node of the user
func (r *NodeRepository) ListByUser(ctx context.Context, userID string) ([]*entities.GraphNode, error) {
	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: userPK(userID)},
			":sk": &types.AttributeValueMemberS{Value: "NODE#"},
		},
	})

	nodes := []*entities.GraphNode{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query nodes: %w", err)
		}
		for _, item := range page.Items {
			node, err := r.toEntity(item)
			if err != nil {
				r.logger.Warn("Skipping unreadable node item", zap.Error(err))
				continue
			}
			nodes = append(nodes, node)
		}
	}
	return nodes, nil
}

func (r *NodeRepository) toItem(node *entities.GraphNode) nodeItem {
	return nodeItem{
		PK:          userPK(node.UserID()),
		SK:          nodeSK(string(node.Type()), node.ReferenceID()),
		GSI1PK:      nodeIDKey(node.ID()),
		GSI1SK:      "METADATA",
		EntityType:  "GRAPH_NODE",
		NodeID:      node.ID().String(),
		UserID:      node.UserID(),
		NodeType:    string(node.Type()),
		ReferenceID: node.ReferenceID(),
		Label:       node.Label(),
		Description: node.Description(),
		Metadata:    node.Metadata(),
		CreatedAt:   node.CreatedAt().Format(time.RFC3339Nano),
		UpdatedAt:   node.UpdatedAt().Format(time.RFC3339Nano),
	}
}

func (r *NodeRepository) toEntity(av map[string]types.AttributeValue) (*entities.GraphNode, error) {
	var item nodeItem
	if err := attributevalue.UnmarshalMap(av, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal node: %w", err)
	}

	id, err := valueobjects.NewNodeIDFromString(item.NodeID)
	if err != nil {
		return nil, fmt.Errorf("stored node id %q: %w", item.NodeID, err)
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, item.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, item.UpdatedAt)

	return entities.ReconstructGraphNode(
		id, item.UserID, entities.NodeType(item.NodeType), item.ReferenceID,
		item.Label, item.Description, item.Metadata, createdAt, updatedAt,
	), nil
}
