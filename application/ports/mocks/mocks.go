// Package mocks provides testify mocks of the application ports.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"versegraph/application/ports"
	"versegraph/domain/core/entities"
	"versegraph/domain/core/valueobjects"
	"versegraph/domain/events"
)

// MockNodeRepository mocks ports.NodeRepository
type MockNodeRepository struct {
	mock.Mock
}

func (m *MockNodeRepository) FindByKey(ctx context.Context, key valueobjects.NodeKey) (*entities.GraphNode, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GraphNode), args.Error(1)
}

func (m *MockNodeRepository) GetByID(ctx context.Context, userID string, id valueobjects.NodeID) (*entities.GraphNode, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GraphNode), args.Error(1)
}

func (m *MockNodeRepository) CreateIfAbsent(ctx context.Context, node *entities.GraphNode) (*entities.GraphNode, bool, error) {
	args := m.Called(ctx, node)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*entities.GraphNode), args.Bool(1), args.Error(2)
}

func (m *MockNodeRepository) Update(ctx context.Context, node *entities.GraphNode) error {
	args := m.Called(ctx, node)
	return args.Error(0)
}

func (m *MockNodeRepository) Delete(ctx context.Context, userID string, id valueobjects.NodeID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockNodeRepository) ListByUser(ctx context.Context, userID string) ([]*entities.GraphNode, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.GraphNode), args.Error(1)
}

// MockEdgeRepository mocks ports.EdgeRepository
type MockEdgeRepository struct {
	mock.Mock
}

func (m *MockEdgeRepository) Exists(ctx context.Context, key valueobjects.EdgeKey) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockEdgeRepository) CreateIfAbsent(ctx context.Context, edge *entities.GraphEdge) (bool, error) {
	args := m.Called(ctx, edge)
	return args.Bool(0), args.Error(1)
}

func (m *MockEdgeRepository) ListByUser(ctx context.Context, userID string) ([]*entities.GraphEdge, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.GraphEdge), args.Error(1)
}

func (m *MockEdgeRepository) DeleteByNode(ctx context.Context, userID string, nodeID valueobjects.NodeID) (int, error) {
	args := m.Called(ctx, userID, nodeID)
	return args.Int(0), args.Error(1)
}

// MockNoteRepository mocks ports.NoteRepository
type MockNoteRepository struct {
	mock.Mock
}

func (m *MockNoteRepository) GetByID(ctx context.Context, userID, noteID string) (*entities.Note, error) {
	args := m.Called(ctx, userID, noteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Note), args.Error(1)
}

func (m *MockNoteRepository) ListNotes(ctx context.Context, userID string, opts ports.ListNotesOptions) ([]*entities.Note, error) {
	args := m.Called(ctx, userID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Note), args.Error(1)
}

func (m *MockNoteRepository) HasNotes(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

// MockEventPublisher mocks ports.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	args := m.Called(ctx, evts)
	return args.Error(0)
}

// MockCache mocks ports.Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (interface{}, bool) {
	args := m.Called(ctx, key)
	return args.Get(0), args.Bool(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value interface{}, ttl int) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockUserLocker mocks ports.UserLocker
type MockUserLocker struct {
	mock.Mock
}

func (m *MockUserLocker) Lock(ctx context.Context, userID string, timeout time.Duration) (func(), error) {
	args := m.Called(ctx, userID, timeout)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}

var (
	_ ports.NodeRepository = (*MockNodeRepository)(nil)
	_ ports.EdgeRepository = (*MockEdgeRepository)(nil)
	_ ports.NoteRepository = (*MockNoteRepository)(nil)
	_ ports.EventPublisher = (*MockEventPublisher)(nil)
	_ ports.Cache          = (*MockCache)(nil)
	_ ports.UserLocker     = (*MockUserLocker)(nil)
)
