package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"versegraph/domain/events"
	"versegraph/infrastructure/realtime"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testTime = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) NotifyCollectionChanged(ctx context.Context, userID, collection string) (realtime.SendResult, error) {
	args := m.Called(ctx, userID, collection)
	return args.Get(0).(realtime.SendResult), args.Error(1)
}

func cloudEvent(t *testing.T, detailType string, detail interface{}) awsevents.CloudWatchEvent {
	t.Helper()
	raw, err := json.Marshal(detail)
	require.NoError(t, err)
	return awsevents.CloudWatchEvent{ID: "evt-1", DetailType: detailType, Source: events.SourceGraph, Detail: raw}
}

func TestHandle(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		event      func(t *testing.T) awsevents.CloudWatchEvent
		collection string
	}{
		{
			name: "collection changed",
			event: func(t *testing.T) awsevents.CloudWatchEvent {
				return cloudEvent(t, events.TypeCollectionChanged, events.NewCollectionChanged("user-1", events.CollectionGraphEdges, 3, testTime))
			},
			collection: events.CollectionGraphEdges,
		},
		{
			name: "node deleted refreshes nodes",
			event: func(t *testing.T) awsevents.CloudWatchEvent {
				return cloudEvent(t, events.TypeGraphNodeDeleted, map[string]string{"user_id": "user-1", "node_id": "n1"})
			},
			collection: events.CollectionGraphNodes,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := new(mockNotifier)
			notifier.On("NotifyCollectionChanged", ctx, "user-1", tt.collection).Return(realtime.SendResult{Sent: 2}, nil)

			h := &Handler{notifier: notifier, logger: zap.NewNop()}
			require.NoError(t, h.Handle(ctx, tt.event(t)))
			notifier.AssertExpectations(t)
		})
	}
}

func TestHandle_Skipped(t *testing.T) {
	ctx := context.Background()
	notifier := new(mockNotifier)
	h := &Handler{notifier: notifier, logger: zap.NewNop()}

	assert.NoError(t, h.Handle(ctx, cloudEvent(t, events.TypeNoteSaved, events.NewNoteSaved("n", "u", testTime))))
	assert.NoError(t, h.Handle(ctx, cloudEvent(t, events.TypeCollectionChanged, map[string]string{"collection": "graph_nodes"})))
	assert.NoError(t, h.Handle(ctx, awsevents.CloudWatchEvent{DetailType: events.TypeCollectionChanged, Detail: json.RawMessage(`[`)}))
	notifier.AssertNotCalled(t, "NotifyCollectionChanged", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandle_NotifyFailure(t *testing.T) {
	ctx := context.Background()
	notifier := new(mockNotifier)
	notifier.On("NotifyCollectionChanged", ctx, "user-1", events.CollectionGraphNodes).
		Return(realtime.SendResult{}, errors.New("connections table unavailable"))

	h := &Handler{notifier: notifier, logger: zap.NewNop()}
	err := h.Handle(ctx, cloudEvent(t, events.TypeCollectionChanged, events.NewCollectionChanged("user-1", events.CollectionGraphNodes, 1, testTime)))
	assert.Error(t, err)
}
