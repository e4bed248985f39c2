// Package messaging holds the in-process event publisher used when no
// event bus is configured.
package messaging

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"versegraph/application/ports"
	"versegraph/domain/events"
)

// Handler consumes one event
type Handler func(ctx context.Context, event events.DomainEvent) error

// LocalPublisher dispatches events to in-process handlers. Handler errors
// are logged, never returned.
type LocalPublisher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *zap.Logger
}

var _ ports.EventPublisher = (*LocalPublisher)(nil)

// NewLocalPublisher creates a publisher with no handlers
func NewLocalPublisher(logger *zap.Logger) *LocalPublisher {
	return &LocalPublisher{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Subscribe registers handler for eventType
func (p *LocalPublisher) Subscribe(eventType string, handler Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[eventType] = append(p.handlers[eventType], handler)
}

// Publish dispatches one event
func (p *LocalPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	p.mu.RLock()
	handlers := append([]Handler(nil), p.handlers[event.GetEventType()]...)
	p.mu.RUnlock()

	if len(handlers) == 0 {
		p.logger.Debug("Event has no local handlers",
			zap.String("eventType", event.GetEventType()),
			zap.String("aggregateID", event.GetAggregateID()),
		)
		return nil
	}

	start := time.Now()
	for _, h := range handlers {
		if err := h(ctx, event); err != nil {
			p.logger.Warn("Failed to dispatch event locally",
				zap.String("eventType", event.GetEventType()),
				zap.String("aggregateID", event.GetAggregateID()),
				zap.Error(err),
			)
		}
	}
	p.logger.Debug("Event dispatched locally",
		zap.String("eventType", event.GetEventType()),
		zap.Int("handlers", len(handlers)),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// PublishBatch dispatches events in order
func (p *LocalPublisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	for _, event := range batch {
		if err := p.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
