package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	apigwTypes "github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockDynamo struct {
	mock.Mock
}

func (m *mockDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.PutItemOutput)
	return out, args.Error(1)
}

func (m *mockDynamo) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.DeleteItemOutput)
	return out, args.Error(1)
}

func (m *mockDynamo) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.QueryOutput)
	return out, args.Error(1)
}

type mockPoster struct {
	mock.Mock
}

func (m *mockPoster) PostToConnection(ctx context.Context, in *apigatewaymanagementapi.PostToConnectionInput, _ ...func(*apigatewaymanagementapi.Options)) (*apigatewaymanagementapi.PostToConnectionOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*apigatewaymanagementapi.PostToConnectionOutput)
	return out, args.Error(1)
}

func connectionItems(t *testing.T, conns ...Connection) []map[string]types.AttributeValue {
	t.Helper()
	items := make([]map[string]types.AttributeValue, 0, len(conns))
	for _, c := range conns {
		item, err := attributevalue.MarshalMap(connectionItem{
			PK:         "CONNECTION#" + c.ConnectionID,
			SK:         "METADATA",
			GSI1PK:     "USER#" + c.UserID,
			Connection: c,
		})
		require.NoError(t, err)
		items = append(items, item)
	}
	return items
}

func TestConnectionStore_Save(t *testing.T) {
	api := new(mockDynamo)
	connectedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	api.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		var item connectionItem
		if err := attributevalue.UnmarshalMap(in.Item, &item); err != nil {
			return false
		}
		return item.PK == "CONNECTION#c1" &&
			item.SK == "METADATA" &&
			item.GSI1PK == "USER#u1" &&
			item.Endpoint == "abc.execute-api.eu-west-1.amazonaws.com/prod" &&
			item.TTL == connectedAt.Add(ConnectionTTL).Unix()
	})).Return(&dynamodb.PutItemOutput{}, nil).Once()

	store := NewConnectionStore(api, "connections", zap.NewNop())
	err := store.Save(context.Background(), Connection{
		ConnectionID: "c1",
		UserID:       "u1",
		Endpoint:     "abc.execute-api.eu-west-1.amazonaws.com/prod",
		ConnectedAt:  connectedAt,
	})
	require.NoError(t, err)
	api.AssertExpectations(t)
}

func TestConnectionStore_ListByUser(t *testing.T) {
	api := new(mockDynamo)
	api.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		pk := in.ExpressionAttributeValues[":userpk"].(*types.AttributeValueMemberS).Value
		return aws.ToString(in.IndexName) == UserIndexName && pk == "USER#u1"
	})).Return(&dynamodb.QueryOutput{
		Items: connectionItems(t,
			Connection{ConnectionID: "c1", UserID: "u1"},
			Connection{ConnectionID: "c2", UserID: "u1", Endpoint: "e2"},
		),
	}, nil).Once()

	store := NewConnectionStore(api, "connections", zap.NewNop())
	conns, err := store.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, conns, 2)
	assert.Equal(t, "c1", conns[0].ConnectionID)
	assert.Equal(t, "e2", conns[1].Endpoint)
}

func TestNotifier_NotifyCollectionChanged(t *testing.T) {
	ctx := context.Background()
	api := new(mockDynamo)
	api.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{
		Items: connectionItems(t,
			Connection{ConnectionID: "live", UserID: "u1"},
			Connection{ConnectionID: "gone", UserID: "u1", Endpoint: "other/prod"},
		),
	}, nil).Once()
	api.On("DeleteItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.DeleteItemInput) bool {
		return in.Key["PK"].(*types.AttributeValueMemberS).Value == "CONNECTION#gone"
	})).Return(&dynamodb.DeleteItemOutput{}, nil).Once()

	poster := new(mockPoster)
	poster.On("PostToConnection", mock.Anything, mock.MatchedBy(func(in *apigatewaymanagementapi.PostToConnectionInput) bool {
		if aws.ToString(in.ConnectionId) != "live" {
			return false
		}
		var msg Message
		if err := json.Unmarshal(in.Data, &msg); err != nil {
			return false
		}
		return msg.Type == MessageTypeCollectionChanged &&
			msg.Timestamp == 1700000000 &&
			msg.Data["collection"] == "graph_nodes" &&
			msg.Data["user_id"] == "u1"
	})).Return(&apigatewaymanagementapi.PostToConnectionOutput{}, nil).Once()
	poster.On("PostToConnection", mock.Anything, mock.MatchedBy(func(in *apigatewaymanagementapi.PostToConnectionInput) bool {
		return aws.ToString(in.ConnectionId) == "gone"
	})).Return(nil, &apigwTypes.GoneException{Message: aws.String("gone")}).Once()

	var endpoints []string
	factory := func(endpoint string) PostAPI {
		endpoints = append(endpoints, endpoint)
		return poster
	}

	n := NewNotifier(NewConnectionStore(api, "connections", zap.NewNop()), factory, "default/prod", zap.NewNop())
	n.now = func() time.Time { return time.Unix(1700000000, 0) }

	result, err := n.NotifyCollectionChanged(ctx, "u1", "graph_nodes")
	require.NoError(t, err)
	assert.Equal(t, SendResult{Sent: 1, Pruned: 1}, result)
	assert.Equal(t, []string{"default/prod", "other/prod"}, endpoints)
	api.AssertExpectations(t)
	poster.AssertExpectations(t)
}

func TestNotifier_AllSendsFail(t *testing.T) {
	api := new(mockDynamo)
	api.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{
		Items: connectionItems(t, Connection{ConnectionID: "c1", UserID: "u1"}),
	}, nil)

	poster := new(mockPoster)
	poster.On("PostToConnection", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	n := NewNotifier(NewConnectionStore(api, "connections", zap.NewNop()),
		func(string) PostAPI { return poster }, "default/prod", zap.NewNop())

	result, err := n.NotifyCollectionChanged(context.Background(), "u1", "graph_edges")
	assert.Error(t, err)
	assert.Equal(t, 1, result.Failed)
}

func TestNotifier_NoConnections(t *testing.T) {
	api := new(mockDynamo)
	api.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{}, nil)

	poster := new(mockPoster)
	n := NewNotifier(NewConnectionStore(api, "connections", zap.NewNop()),
		func(string) PostAPI { return poster }, "", zap.NewNop())

	result, err := n.NotifyCollectionChanged(context.Background(), "u1", "graph_nodes")
	require.NoError(t, err)
	assert.Zero(t, result)
	poster.AssertNotCalled(t, "PostToConnection", mock.Anything, mock.Anything)
}
