package events

import (
	"time"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Event type names as they appear on the bus
const (
	TypeNoteSaved         = "note.saved"
	TypeCollectionChanged = "graph.changed"
	TypeGraphNodeUpdated  = "graph.node_updated"
	TypeGraphNodeDeleted  = "graph.node_deleted"
)

// SourceGraph is the bus source of events raised by graph generation
const SourceGraph = "versegraph.graph"

// Collections named in CollectionChanged events
const (
	CollectionGraphNodes = "graph_nodes"
	CollectionGraphEdges = "graph_edges"
)

// NoteSaved is emitted by the notes service whenever a note is created or
// edited. Graph generation consumes it.
type NoteSaved struct {
	BaseEvent
	NoteID string `json:"note_id"`
	UserID string `json:"user_id"`
}

// NewNoteSaved creates a NoteSaved event
func NewNoteSaved(noteID, userID string, timestamp time.Time) NoteSaved {
	return NoteSaved{
		BaseEvent: BaseEvent{
			AggregateID: noteID,
			EventType:   TypeNoteSaved,
			Timestamp:   timestamp,
			Version:     1,
		},
		NoteID: noteID,
		UserID: userID,
	}
}

// CollectionChanged tells realtime clients that a user's stored graph data
// changed and cached views must be refetched.
type CollectionChanged struct {
	BaseEvent
	UserID     string `json:"user_id"`
	Collection string `json:"collection"`
	Created    int    `json:"created"`
}

// NewCollectionChanged creates a CollectionChanged event
func NewCollectionChanged(userID, collection string, created int, timestamp time.Time) CollectionChanged {
	return CollectionChanged{
		BaseEvent: BaseEvent{
			AggregateID: userID,
			EventType:   TypeCollectionChanged,
			Timestamp:   timestamp,
			Version:     1,
		},
		UserID:     userID,
		Collection: collection,
		Created:    created,
	}
}

// GraphNodeUpdated is raised when a node is edited explicitly
type GraphNodeUpdated struct {
	BaseEvent
	NodeID   string `json:"node_id"`
	UserID   string `json:"user_id"`
	OldLabel string `json:"old_label"`
	NewLabel string `json:"new_label"`
}

// NewGraphNodeUpdated creates a GraphNodeUpdated event
func NewGraphNodeUpdated(nodeID, userID, oldLabel, newLabel string, timestamp time.Time) GraphNodeUpdated {
	return GraphNodeUpdated{
		BaseEvent: BaseEvent{
			AggregateID: nodeID,
			EventType:   TypeGraphNodeUpdated,
			Timestamp:   timestamp,
			Version:     1,
		},
		NodeID:   nodeID,
		UserID:   userID,
		OldLabel: oldLabel,
		NewLabel: newLabel,
	}
}

// GraphNodeDeleted is raised when a node and its edges are removed
type GraphNodeDeleted struct {
	BaseEvent
	NodeID       string `json:"node_id"`
	UserID       string `json:"user_id"`
	NodeType     string `json:"node_type"`
	EdgesRemoved int    `json:"edges_removed"`
}

// NewGraphNodeDeleted creates a GraphNodeDeleted event
func NewGraphNodeDeleted(nodeID, userID, nodeType string, edgesRemoved int, timestamp time.Time) GraphNodeDeleted {
	return GraphNodeDeleted{
		BaseEvent: BaseEvent{
			AggregateID: nodeID,
			EventType:   TypeGraphNodeDeleted,
			Timestamp:   timestamp,
			Version:     1,
		},
		NodeID:       nodeID,
		UserID:       userID,
		NodeType:     nodeType,
		EdgesRemoved: edgesRemoved,
	}
}
