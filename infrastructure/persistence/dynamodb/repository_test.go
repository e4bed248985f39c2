package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"versegraph/application/ports"
	"versegraph/domain/core/entities"
	"versegraph/domain/core/valueobjects"
	pkgerrors "versegraph/pkg/errors"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.GetItemOutput)
	return out, args.Error(1)
}

func (m *mockAPI) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.PutItemOutput)
	return out, args.Error(1)
}

func (m *mockAPI) UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.UpdateItemOutput)
	return out, args.Error(1)
}

func (m *mockAPI) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.DeleteItemOutput)
	return out, args.Error(1)
}

func (m *mockAPI) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.QueryOutput)
	return out, args.Error(1)
}

func (m *mockAPI) BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.BatchWriteItemOutput)
	return out, args.Error(1)
}

var conditionFailed = &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}

func TestNodeRepository_CreateIfAbsent(t *testing.T) {
	ctx := context.Background()
	node, err := entities.NewGraphNode("u1", entities.NodeTypeBook, "John", "John", "", nil)
	require.NoError(t, err)

	t.Run("created", func(t *testing.T) {
		api := new(mockAPI)
		api.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
			sk := in.Item["SK"].(*types.AttributeValueMemberS).Value
			return *in.ConditionExpression == "attribute_not_exists(PK)" && sk == "NODE#book#John"
		})).Return(&dynamodb.PutItemOutput{}, nil).Once()

		repo := NewNodeRepository(api, "graph", "GSI1", zap.NewNop())
		stored, created, err := repo.CreateIfAbsent(ctx, node)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Same(t, node, stored)
		api.AssertExpectations(t)
	})

	t.Run("existing node is returned", func(t *testing.T) {
		existing, err := entities.NewGraphNode("u1", entities.NodeTypeBook, "John", "John", "stored first", nil)
		require.NoError(t, err)
		item, err := attributevalue.MarshalMap((&NodeRepository{}).toItem(existing))
		require.NoError(t, err)

		api := new(mockAPI)
		api.On("PutItem", mock.Anything, mock.Anything).Return(nil, conditionFailed).Once()
		api.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: item}, nil).Once()

		repo := NewNodeRepository(api, "graph", "GSI1", zap.NewNop())
		stored, created, err := repo.CreateIfAbsent(ctx, node)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, existing.ID(), stored.ID())
		assert.Equal(t, "stored first", stored.Description())
	})

	t.Run("other errors propagate", func(t *testing.T) {
		api := new(mockAPI)
		api.On("PutItem", mock.Anything, mock.Anything).Return(nil, errors.New("throttled")).Once()

		repo := NewNodeRepository(api, "graph", "GSI1", zap.NewNop())
		_, _, err := repo.CreateIfAbsent(ctx, node)
		assert.ErrorContains(t, err, "throttled")
	})
}

func TestNodeRepository_GetByIDChecksOwner(t *testing.T) {
	node, err := entities.NewGraphNode("owner", entities.NodeTypeTheme, "grace", "Grace", "", nil)
	require.NoError(t, err)
	item, err := attributevalue.MarshalMap((&NodeRepository{}).toItem(node))
	require.NoError(t, err)

	api := new(mockAPI)
	api.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return *in.IndexName == "GSI1"
	})).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{item}}, nil)

	repo := NewNodeRepository(api, "graph", "GSI1", zap.NewNop())

	got, err := repo.GetByID(context.Background(), "owner", node.ID())
	require.NoError(t, err)
	assert.Equal(t, "Grace", got.Label())

	_, err = repo.GetByID(context.Background(), "someone-else", node.ID())
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestEdgeRepository_CreateIfAbsent(t *testing.T) {
	edge, err := entities.NewGraphEdge("u1", valueobjects.NewNodeID(), valueobjects.NewNodeID(), entities.EdgeTypeMentions)
	require.NoError(t, err)

	tests := []struct {
		name    string
		putErr  error
		want    bool
		wantErr bool
	}{
		{name: "created", want: true},
		{name: "pair already linked", putErr: conditionFailed, want: false},
		{name: "storage error", putErr: errors.New("timeout"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(mockAPI)
			api.On("PutItem", mock.Anything, mock.Anything).Return(&dynamodb.PutItemOutput{}, tt.putErr).Once()

			repo := NewEdgeRepository(api, "graph", zap.NewNop())
			created, err := repo.CreateIfAbsent(context.Background(), edge)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, created)

			in := api.Calls[0].Arguments.Get(1).(*dynamodb.PutItemInput)
			sk := in.Item["SK"].(*types.AttributeValueMemberS).Value
			assert.Equal(t, "EDGE#"+edge.SourceNodeID().String()+"#"+edge.TargetNodeID().String(), sk)
		})
	}
}

func TestEdgeRepository_DeleteByNode(t *testing.T) {
	nodeID := valueobjects.NewNodeID()
	items := make([]map[string]types.AttributeValue, 0, 30)
	for i := 0; i < 30; i++ {
		item, err := attributevalue.MarshalMap(edgeItem{
			PK:       "USER#u1",
			SK:       "EDGE#" + nodeID.String() + "#" + valueobjects.NewNodeID().String(),
			EdgeID:   valueobjects.NewEdgeID().String(),
			SourceID: nodeID.String(),
		})
		require.NoError(t, err)
		items = append(items, item)
	}

	api := new(mockAPI)
	api.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return in.FilterExpression != nil
	})).Return(&dynamodb.QueryOutput{Items: items}, nil).Once()
	api.On("BatchWriteItem", mock.Anything, mock.Anything).Return(&dynamodb.BatchWriteItemOutput{}, nil).Twice()

	repo := NewEdgeRepository(api, "graph", zap.NewNop())
	n, err := repo.DeleteByNode(context.Background(), "u1", nodeID)
	require.NoError(t, err)
	assert.Equal(t, 30, n)

	first := api.Calls[1].Arguments.Get(1).(*dynamodb.BatchWriteItemInput)
	assert.Len(t, first.RequestItems["graph"], batchWriteLimit)
	api.AssertExpectations(t)
}

func TestNoteRepository_ListNotesStopsAtLimit(t *testing.T) {
	var items []map[string]types.AttributeValue
	for _, id := range []string{"a", "b", "c"} {
		item, err := attributevalue.MarshalMap(noteItem{
			PK: "USER#u1", SK: "NOTE#" + id, NoteID: id, UserID: "u1",
			Title: id, Tags: []string{"faith"}, CreatedAt: time.Now().Format(time.RFC3339),
		})
		require.NoError(t, err)
		items = append(items, item)
	}

	api := new(mockAPI)
	api.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return in.FilterExpression != nil && in.KeyConditionExpression != nil
	})).Return(&dynamodb.QueryOutput{Items: items}, nil).Once()

	repo := NewNoteRepository(api, "graph", zap.NewNop())
	notes, err := repo.ListNotes(context.Background(), "u1", ports.ListNotesOptions{Limit: 2})
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "a", notes[0].ID)
	assert.Equal(t, []string{"faith"}, notes[0].Tags)
}

func TestNoteRepository_GetByIDNotFound(t *testing.T) {
	api := new(mockAPI)
	api.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

	repo := NewNoteRepository(api, "graph", zap.NewNop())
	_, err := repo.GetByID(context.Background(), "u1", "missing")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNoteNotFound, pkgerrors.GetAppError(err).Code)
}

func TestGenerationLocker(t *testing.T) {
	t.Run("acquire and release", func(t *testing.T) {
		api := new(mockAPI)
		api.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
			return in.Item["PK"].(*types.AttributeValueMemberS).Value == "LOCK#graph-generation#u1"
		})).Return(&dynamodb.PutItemOutput{}, nil).Once()
		api.On("DeleteItem", mock.Anything, mock.Anything).Return(&dynamodb.DeleteItemOutput{}, nil).Once()

		locker := NewGenerationLocker(NewDistributedLock(api, "graph", zap.NewNop()), "worker-1", time.Minute, zap.NewNop())
		unlock, err := locker.Lock(context.Background(), "u1", time.Second)
		require.NoError(t, err)
		unlock()
		api.AssertExpectations(t)
	})

	t.Run("held lock times out", func(t *testing.T) {
		api := new(mockAPI)
		api.On("PutItem", mock.Anything, mock.Anything).Return(nil, conditionFailed)

		locker := NewGenerationLocker(NewDistributedLock(api, "graph", zap.NewNop()), "worker-1", time.Minute, zap.NewNop())
		_, err := locker.Lock(context.Background(), "u1", 50*time.Millisecond)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrLockHeld)
	})

	t.Run("storage error is not retried", func(t *testing.T) {
		api := new(mockAPI)
		api.On("PutItem", mock.Anything, mock.Anything).Return(nil, errors.New("access denied")).Once()

		locker := NewGenerationLocker(NewDistributedLock(api, "graph", zap.NewNop()), "worker-1", time.Minute, zap.NewNop())
		_, err := locker.Lock(context.Background(), "u1", time.Second)
		assert.ErrorContains(t, err, "access denied")
		api.AssertNumberOfCalls(t, "PutItem", 1)
	})
}
