package bus

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"

	"versegraph/application/ports"
	"versegraph/pkg/observability"
)

// Query represents a read-only query
type Query interface {
	Validate() error
}

// QueryHandler handles a specific query type
type QueryHandler interface {
	Handle(ctx context.Context, query Query) (interface{}, error)
}

// ErrHandlerNotFound is returned by Ask for unregistered query types
var ErrHandlerNotFound = errors.New("query handler not found")

// QueryBus dispatches queries to their handlers
type QueryBus struct {
	handlers map[reflect.Type]QueryHandler
	metrics  *observability.Metrics
	mu       sync.RWMutex
}

// NewQueryBus creates a new query bus. A nil metrics disables recording.
func NewQueryBus(metrics *observability.Metrics) *QueryBus {
	return &QueryBus{
		handlers: make(map[reflect.Type]QueryHandler),
		metrics:  metrics,
	}
}

// Register registers a handler for a query type
func (b *QueryBus) Register(queryType Query, handler QueryHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := reflect.TypeOf(queryType)
	if _, exists := b.handlers[t]; exists {
		return fmt.Errorf("handler already registered for query type %s", t.Name())
	}

	b.handlers[t] = NewMetricsMiddleware(b.metrics).Wrap(handler)
	return nil
}

// Ask dispatches a query to its handler and returns the result
func (b *QueryBus) Ask(ctx context.Context, query Query) (interface{}, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	b.mu.RLock()
	handler, exists := b.handlers[reflect.TypeOf(query)]
	b.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %T", ErrHandlerNotFound, query)
	}

	return handler.Handle(ctx, query)
}

// QueryHandlerFunc is an adapter to allow functions to be used as handlers
type QueryHandlerFunc func(ctx context.Context, query Query) (interface{}, error)

// Handle implements QueryHandler
func (f QueryHandlerFunc) Handle(ctx context.Context, query Query) (interface{}, error) {
	return f(ctx, query)
}

// KeyFunc derives a cache key from a query; false skips the cache
type KeyFunc func(query Query) (string, bool)

// CachingMiddleware adds caching to query handlers
type CachingMiddleware struct {
	cache  ports.Cache
	ttl    time.Duration
	key    KeyFunc
	logger *zap.Logger
}

// NewCachingMiddleware creates a new caching middleware
func NewCachingMiddleware(cache ports.Cache, ttl time.Duration, key KeyFunc, logger *zap.Logger) *CachingMiddleware {
	return &CachingMiddleware{
		cache:  cache,
		ttl:    ttl,
		key:    key,
		logger: logger,
	}
}

// Wrap wraps a query handler with caching
func (m *CachingMiddleware) Wrap(next QueryHandler) QueryHandler {
	return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		cacheKey, ok := m.key(query)
		if !ok || m.cache == nil {
			return next.Handle(ctx, query)
		}

		if cached, found := m.cache.Get(ctx, cacheKey); found {
			return cached, nil
		}

		result, err := next.Handle(ctx, query)
		if err != nil {
			return nil, err
		}

		if err := m.cache.Set(ctx, cacheKey, result, int(m.ttl.Seconds())); err != nil {
			m.logger.Warn("Failed to cache query result", zap.String("key", cacheKey), zap.Error(err))
		}

		return result, nil
	})
}

// MetricsMiddleware adds metrics to query handlers
type MetricsMiddleware struct {
	metrics *observability.Metrics
}

// NewMetricsMiddleware creates a new metrics middleware
func NewMetricsMiddleware(metrics *observability.Metrics) *MetricsMiddleware {
	return &MetricsMiddleware{
		metrics: metrics,
	}
}

// Wrap wraps a query handler with metrics
func (m *MetricsMiddleware) Wrap(next QueryHandler) QueryHandler {
	return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		start := time.Now()
		result, err := next.Handle(ctx, query)
		m.metrics.RecordCommandExecution(ctx, queryName(query), time.Since(start), err)
		return result, err
	})
}

func queryName(query Query) string {
	t := reflect.TypeOf(query)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
