package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"versegraph/domain/events"
)

func TestLocalPublisher_DispatchesByType(t *testing.T) {
	p := NewLocalPublisher(zap.NewNop())

	var got []string
	p.Subscribe(events.TypeCollectionChanged, func(ctx context.Context, e events.DomainEvent) error {
		got = append(got, e.(events.CollectionChanged).Collection)
		return nil
	})
	p.Subscribe(events.TypeCollectionChanged, func(ctx context.Context, e events.DomainEvent) error {
		return errors.New("handler failed")
	})

	now := time.Now()
	err := p.PublishBatch(context.Background(), []events.DomainEvent{
		events.NewCollectionChanged("u", events.CollectionGraphNodes, 2, now),
		events.NewNoteSaved("n", "u", now),
		events.NewCollectionChanged("u", events.CollectionGraphEdges, 1, now),
	})

	assert.NoError(t, err)
	assert.Equal(t, []string{events.CollectionGraphNodes, events.CollectionGraphEdges}, got)
}
