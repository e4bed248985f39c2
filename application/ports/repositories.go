package ports

import (
	"context"
	"time"

	"versegraph/domain/core/entities"
	"versegraph/domain/core/valueobjects"
	"versegraph/domain/events"
)

// NodeRepository defines the interface for graph node persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type NodeRepository interface {
	// FindByKey looks a node up by its identity; (nil, nil) when absent
	FindByKey(ctx context.Context, key valueobjects.NodeKey) (*entities.GraphNode, error)

	// GetByID retrieves a node by id; a NOT_FOUND AppError when absent
	GetByID(ctx context.Context, userID string, id valueobjects.NodeID) (*entities.GraphNode, error)

	// CreateIfAbsent stores node unless a node with the same key exists, and
	// returns whichever node is stored. It must be atomic on the key.
	CreateIfAbsent(ctx context.Context, node *entities.GraphNode) (stored *entities.GraphNode, created bool, err error)

	// Update persists label, description and metadata of an existing node
	Update(ctx context.Context, node *entities.GraphNode) error

	// Delete removes a node
	Delete(ctx context.Context, userID string, id valueobjects.NodeID) error

	// ListByUser returns every node of a user
	ListByUser(ctx context.Context, userID string) ([]*entities.GraphNode, error)
}

// EdgeRepository defines the interface for edge persistence
type EdgeRepository interface {
	// Exists reports whether an edge is stored for the key, of any type
	Exists(ctx context.Context, key valueobjects.EdgeKey) (bool, error)

	// CreateIfAbsent stores edge unless one exists for its key. It must be
	// atomic on the key.
	CreateIfAbsent(ctx context.Context, edge *entities.GraphEdge) (created bool, err error)

	// ListByUser returns every edge of a user
	ListByUser(ctx context.Context, userID string) ([]*entities.GraphEdge, error)

	// DeleteByNode removes all edges touching a node and returns how many
	DeleteByNode(ctx context.Context, userID string, nodeID valueobjects.NodeID) (int, error)
}

// ListNotesOptions filters note listing
type ListNotesOptions struct {
	Archived bool
	Limit    int
}

// NoteRepository reads journal notes. Notes are owned by the notes service.
type NoteRepository interface {
	// GetByID retrieves a note; a NOT_FOUND AppError when absent
	GetByID(ctx context.Context, userID, noteID string) (*entities.Note, error)

	// ListNotes returns up to opts.Limit notes with the given archived flag
	ListNotes(ctx context.Context, userID string, opts ListNotesOptions) ([]*entities.Note, error)

	// HasNotes reports whether the user has any note, archived or not
	HasNotes(ctx context.Context, userID string) (bool, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// Cache defines the interface for caching
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in cache with TTL in seconds
	Set(ctx context.Context, key string, value interface{}, ttl int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Clear removes all values from cache
	Clear(ctx context.Context) error
}

// UserLocker serializes graph generation per user
type UserLocker interface {
	// Lock blocks until the user's lock is held or ctx/timeout expires.
	Lock(ctx context.Context, userID string, timeout time.Duration) (unlock func(), err error)
}

// GraphViewCacheKey is the cache key of a user's laid-out graph
func GraphViewCacheKey(userID string) string {
	return "graph_view:" + userID
}
