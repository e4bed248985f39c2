package eventbridge

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"versegraph/domain/events"
)

type mockEventBridge struct {
	mock.Mock
}

func (m *mockEventBridge) PutEvents(ctx context.Context, in *eventbridge.PutEventsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*eventbridge.PutEventsOutput)
	return out, args.Error(1)
}

func changedEvents(n int) []events.DomainEvent {
	out := make([]events.DomainEvent, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, events.NewCollectionChanged("user-1", events.CollectionGraphNodes, i+1, time.Now()))
	}
	return out
}

func TestPublisher_BatchesByTen(t *testing.T) {
	client := new(mockEventBridge)
	client.On("PutEvents", mock.Anything, mock.Anything).Return(&eventbridge.PutEventsOutput{}, nil)

	p := NewPublisher(client, "versegraph-bus", zap.NewNop())
	require.NoError(t, p.PublishBatch(context.Background(), changedEvents(23)))

	client.AssertNumberOfCalls(t, "PutEvents", 3)
	sizes := []int{}
	for _, call := range client.Calls {
		sizes = append(sizes, len(call.Arguments.Get(1).(*eventbridge.PutEventsInput).Entries))
	}
	assert.Equal(t, []int{10, 10, 3}, sizes)
}

func TestPublisher_EntryShape(t *testing.T) {
	client := new(mockEventBridge)
	client.On("PutEvents", mock.Anything, mock.Anything).Return(&eventbridge.PutEventsOutput{}, nil).Once()

	p := NewPublisher(client, "versegraph-bus", zap.NewNop())
	require.NoError(t, p.Publish(context.Background(), changedEvents(1)[0]))

	entry := client.Calls[0].Arguments.Get(1).(*eventbridge.PutEventsInput).Entries[0]
	assert.Equal(t, events.SourceGraph, aws.ToString(entry.Source))
	assert.Equal(t, events.TypeCollectionChanged, aws.ToString(entry.DetailType))
	assert.Equal(t, "versegraph-bus", aws.ToString(entry.EventBusName))

	var detail map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(entry.Detail)), &detail))
	assert.Equal(t, "user-1", detail["user_id"])
	assert.Equal(t, events.CollectionGraphNodes, detail["collection"])
}

func TestPublisher_Failures(t *testing.T) {
	t.Run("client error", func(t *testing.T) {
		client := new(mockEventBridge)
		client.On("PutEvents", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))
		p := NewPublisher(client, "bus", zap.NewNop())
		assert.ErrorContains(t, p.PublishBatch(context.Background(), changedEvents(2)), "throttled")
	})

	t.Run("failed entries", func(t *testing.T) {
		client := new(mockEventBridge)
		client.On("PutEvents", mock.Anything, mock.Anything).Return(&eventbridge.PutEventsOutput{
			FailedEntryCount: 1,
			Entries: []types.PutEventsResultEntry{
				{EventId: aws.String("ok")},
				{ErrorCode: aws.String("InternalFailure"), ErrorMessage: aws.String("boom")},
			},
		}, nil)
		p := NewPublisher(client, "bus", zap.NewNop())
		assert.ErrorContains(t, p.PublishBatch(context.Background(), changedEvents(2)), "1 events failed")
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		client := new(mockEventBridge)
		p := NewPublisher(client, "bus", zap.NewNop())
		assert.NoError(t, p.PublishBatch(context.Background(), nil))
		client.AssertNotCalled(t, "PutEvents", mock.Anything, mock.Anything)
	})
}
