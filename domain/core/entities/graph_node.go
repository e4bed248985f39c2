package entities

import (
	"strings"
	"time"

	"versegraph/domain/core/valueobjects"
	"versegraph/domain/events"
	pkgerrors "versegraph/pkg/errors"
)

// NodeType discriminates the kinds of graph node
type NodeType string

const (
	NodeTypeNote    NodeType = "note"
	NodeTypeBook    NodeType = "book"
	NodeTypePassage NodeType = "passage"
	NodeTypeTheme   NodeType = "theme"
	NodeTypePerson  NodeType = "person"
	NodeTypePlace   NodeType = "place"
)

// IsKnown reports whether t is one of the six built-in node types.
func (t NodeType) IsKnown() bool {
	switch t {
	case NodeTypeNote, NodeTypeBook, NodeTypePassage, NodeTypeTheme, NodeTypePerson, NodeTypePlace:
		return true
	}
	return false
}

// Metadata is the free-form bag of type-specific node attributes
type Metadata map[string]interface{}

// Clone returns a shallow copy
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// GraphNode is one vertex of a user's study graph. Its identity for
// deduplication is (userID, nodeType, referenceID), not its id.
type GraphNode struct {
	id          valueobjects.NodeID
	userID      string
	nodeType    NodeType
	referenceID string
	label       string
	description string
	metadata    Metadata
	createdAt   time.Time
	updatedAt   time.Time

	events []events.DomainEvent
}

// NewGraphNode creates a node that has not been stored yet
func NewGraphNode(userID string, nodeType NodeType, referenceID, label, description string, metadata Metadata) (*GraphNode, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	if nodeType == "" {
		return nil, pkgerrors.NewValidationError("node type cannot be empty")
	}
	if referenceID == "" {
		return nil, pkgerrors.NewValidationError("referenceID cannot be empty")
	}

	if metadata == nil {
		metadata = Metadata{}
	}

	now := time.Now().UTC()
	return &GraphNode{
		id:          valueobjects.NewNodeID(),
		userID:      userID,
		nodeType:    nodeType,
		referenceID: referenceID,
		label:       label,
		description: description,
		metadata:    metadata.Clone(),
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructGraphNode rebuilds a node from storage with preserved timestamps
func ReconstructGraphNode(
	id valueobjects.NodeID,
	userID string,
	nodeType NodeType,
	referenceID, label, description string,
	metadata Metadata,
	createdAt, updatedAt time.Time,
) *GraphNode {
	if metadata == nil {
		metadata = Metadata{}
	}
	return &GraphNode{
		id:          id,
		userID:      userID,
		nodeType:    nodeType,
		referenceID: referenceID,
		label:       label,
		description: description,
		metadata:    metadata,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

func (n *GraphNode) ID() valueobjects.NodeID { return n.id }
func (n *GraphNode) UserID() string          { return n.userID }
func (n *GraphNode) Type() NodeType          { return n.nodeType }
func (n *GraphNode) ReferenceID() string     { return n.referenceID }
func (n *GraphNode) Label() string           { return n.label }
func (n *GraphNode) Description() string     { return n.description }
func (n *GraphNode) CreatedAt() time.Time    { return n.createdAt }
func (n *GraphNode) UpdatedAt() time.Time    { return n.updatedAt }

// Key returns the deduplication identity
func (n *GraphNode) Key() valueobjects.NodeKey {
	return valueobjects.NodeKey{UserID: n.userID, NodeType: string(n.nodeType), ReferenceID: n.referenceID}
}

// Metadata returns a copy of the metadata bag
func (n *GraphNode) Metadata() Metadata {
	return n.metadata.Clone()
}

// Edit applies an explicit user edit. Generation never calls this.
func (n *GraphNode) Edit(label, description *string, metadata Metadata, maxLabelLength int) error {
	if label != nil {
		trimmed := strings.TrimSpace(*label)
		if trimmed == "" {
			return pkgerrors.NewValidationError("label cannot be empty")
		}
		if maxLabelLength > 0 && len([]rune(trimmed)) > maxLabelLength {
			return pkgerrors.NewValidationError("label is too long")
		}
		if trimmed != n.label {
			n.addEvent(events.NewGraphNodeUpdated(n.id.String(), n.userID, n.label, trimmed, time.Now().UTC()))
			n.label = trimmed
		}
	}
	if description != nil {
		n.description = *description
	}
	for k, v := range metadata {
		if v == nil {
			delete(n.metadata, k)
			continue
		}
		n.metadata[k] = v
	}
	n.updatedAt = time.Now().UTC()
	return nil
}

// GetUncommittedEvents returns all uncommitted domain events
func (n *GraphNode) GetUncommittedEvents() []events.DomainEvent {
	return n.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (n *GraphNode) MarkEventsAsCommitted() {
	n.events = nil
}

func (n *GraphNode) addEvent(event events.DomainEvent) {
	n.events = append(n.events, event)
}
