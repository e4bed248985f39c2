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
	pkgerrors "versegraph/pkg/errors"
)

// NoteRepository reads the notes written by the notes service
type NoteRepository struct {
	client    API
	tableName string
	logger    *zap.Logger
}

var _ ports.NoteRepository = (*NoteRepository)(nil)

// NewNoteRepository creates a new NoteRepository
func NewNoteRepository(client API, tableName string, logger *zap.Logger) *NoteRepository {
	return &NoteRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// noteItem represents the DynamoDB item structure for a note
type noteItem struct {
	PK              string   `dynamodbav:"PK"`
	SK              string   `dynamodbav:"SK"`
	EntityType      string   `dynamodbav:"EntityType"`
	NoteID          string   `dynamodbav:"NoteID"`
	UserID          string   `dynamodbav:"UserID"`
	Title           string   `dynamodbav:"Title"`
	Content         string   `dynamodbav:"Content"`
	ContentPlain    string   `dynamodbav:"ContentPlain"`
	BibleReferences []string `dynamodbav:"BibleReferences"`
	Tags            []string `dynamodbav:"Tags"`
	IsArchived      bool     `dynamodbav:"IsArchived"`
	CreatedAt       string   `dynamodbav:"CreatedAt"`
	UpdatedAt       string   `dynamodbav:"UpdatedAt"`
}

func noteSK(noteID string) string {
	return fmt.Sprintf("NOTE#%s", noteID)
}

// GetByID returns a note of the user
func (r *NoteRepository) GetByID(ctx context.Context, userID, noteID string) (*entities.Note, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userPK(userID)},
			"SK": &types.AttributeValueMemberS{Value: noteSK(noteID)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, pkgerrors.NewNotFoundError("note").WithCode(pkgerrors.CodeNoteNotFound)
	}

	var item noteItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal note: %w", err)
	}
	return item.toEntity(), nil
}

// ListNotes pages through the user's notes until opts.Limit matching notes
// are collected. Items without IsArchived count as active.
func (r *NoteRepository) ListNotes(ctx context.Context, userID string, opts ports.ListNotesOptions) ([]*entities.Note, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(userPK(userID))).
		And(expression.Key("SK").BeginsWith("NOTE#"))

	filter := expression.Name("IsArchived").Equal(expression.Value(opts.Archived))
	if !opts.Archived {
		filter = filter.Or(expression.AttributeNotExists(expression.Name("IsArchived")))
	}

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build note query: %w", err)
	}

	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	notes := []*entities.Note{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query notes: %w", err)
		}

		var items []noteItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal notes: %w", err)
		}
		for _, item := range items {
			notes = append(notes, item.toEntity())
			if opts.Limit > 0 && len(notes) == opts.Limit {
				return notes, nil
			}
		}
	}
	return notes, nil
}

// HasNotes reports whether any note item exists for the user
func (r *NoteRepository) HasNotes(ctx context.Context, userID string) (bool, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: userPK(userID)},
			":sk": &types.AttributeValueMemberS{Value: "NOTE#"},
		},
		ProjectionExpression: aws.String("PK"),
		Limit:                aws.Int32(1),
	})
	if err != nil {
		return false, fmt.Errorf("failed to query notes: %w", err)
	}
	return out.Count > 0, nil
}

func (item noteItem) toEntity() *entities.Note {
	createdAt, _ := time.Parse(time.RFC3339, item.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339, item.UpdatedAt)
	return &entities.Note{
		ID:              item.NoteID,
		UserID:          item.UserID,
		Title:           item.Title,
		Content:         item.Content,
		ContentPlain:    item.ContentPlain,
		BibleReferences: item.BibleReferences,
		Tags:            item.Tags,
		IsArchived:      item.IsArchived,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}
}
