package entities

import (
	"time"

	"versegraph/domain/core/valueobjects"
	pkgerrors "versegraph/pkg/errors"
)

// EdgeType is the storage-level relation code
type EdgeType string

const (
	EdgeTypeReferences      EdgeType = "references"
	EdgeTypeThemeConnection EdgeType = "theme_connection"
	EdgeTypeMentions        EdgeType = "mentions"
	EdgeTypeCrossRef        EdgeType = "cross_ref"
)

// DefaultEdgeWeight is applied when no weight is given
const DefaultEdgeWeight = 1.0

// GraphEdge is a directed relation between two nodes of the same user.
type GraphEdge struct {
	id           valueobjects.EdgeID
	userID       string
	sourceNodeID valueobjects.NodeID
	targetNodeID valueobjects.NodeID
	edgeType     EdgeType
	weight       float64
	createdAt    time.Time
}

// NewGraphEdge creates an edge with the default weight
func NewGraphEdge(userID string, source, target valueobjects.NodeID, edgeType EdgeType) (*GraphEdge, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	if source.IsZero() || target.IsZero() {
		return nil, pkgerrors.NewValidationError("edge endpoints cannot be empty")
	}
	if edgeType == "" {
		return nil, pkgerrors.NewValidationError("edge type cannot be empty")
	}

	return &GraphEdge{
		id:           valueobjects.NewEdgeID(),
		userID:       userID,
		sourceNodeID: source,
		targetNodeID: target,
		edgeType:     edgeType,
		weight:       DefaultEdgeWeight,
		createdAt:    time.Now().UTC(),
	}, nil
}

// ReconstructGraphEdge rebuilds an edge from storage
func ReconstructGraphEdge(
	id valueobjects.EdgeID,
	userID string,
	source, target valueobjects.NodeID,
	edgeType EdgeType,
	weight float64,
	createdAt time.Time,
) *GraphEdge {
	if weight == 0 {
		weight = DefaultEdgeWeight
	}
	return &GraphEdge{
		id:           id,
		userID:       userID,
		sourceNodeID: source,
		targetNodeID: target,
		edgeType:     edgeType,
		weight:       weight,
		createdAt:    createdAt,
	}
}

func (e *GraphEdge) ID() valueobjects.EdgeID           { return e.id }
func (e *GraphEdge) UserID() string                    { return e.userID }
func (e *GraphEdge) SourceNodeID() valueobjects.NodeID { return e.sourceNodeID }
func (e *GraphEdge) TargetNodeID() valueobjects.NodeID { return e.targetNodeID }
func (e *GraphEdge) Type() EdgeType                    { return e.edgeType }
func (e *GraphEdge) Weight() float64                   { return e.weight }
func (e *GraphEdge) CreatedAt() time.Time              { return e.createdAt }

// Key returns the deduplication identity, which ignores the edge type
func (e *GraphEdge) Key() valueobjects.EdgeKey {
	return valueobjects.EdgeKey{UserID: e.userID, SourceNodeID: e.sourceNodeID, TargetNodeID: e.targetNodeID}
}

// Touches reports whether the edge has id as either endpoint
func (e *GraphEdge) Touches(id valueobjects.NodeID) bool {
	return e.sourceNodeID.Equals(id) || e.targetNodeID.Equals(id)
}
