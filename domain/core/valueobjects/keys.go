package valueobjects

import (
	"fmt"
	"strings"
)

// NodeKey is the identity of a graph node for deduplication. Two nodes with
// the same key are the same node, whatever their ids.
type NodeKey struct {
	UserID      string
	NodeType    string
	ReferenceID string
}

// NewNodeKey validates and builds a node key.
func NewNodeKey(userID, nodeType, referenceID string) (NodeKey, error) {
	k := NodeKey{UserID: userID, NodeType: nodeType, ReferenceID: referenceID}
	return k, k.Validate()
}

// Validate checks every key part is present.
func (k NodeKey) Validate() error {
	switch {
	case strings.TrimSpace(k.UserID) == "":
		return fmt.Errorf("node key: user id is required")
	case strings.TrimSpace(k.NodeType) == "":
		return fmt.Errorf("node key: node type is required")
	case k.ReferenceID == "":
		return fmt.Errorf("node key: reference id is required")
	}
	return nil
}

func (k NodeKey) String() string {
	return k.UserID + "/" + k.NodeType + "/" + k.ReferenceID
}

// EdgeKey is the identity of a directed edge. The edge type is not part of
// it: at most one edge exists per ordered pair and user.
type EdgeKey struct {
	UserID       string
	SourceNodeID NodeID
	TargetNodeID NodeID
}

func (k EdgeKey) String() string {
	return k.UserID + "/" + k.SourceNodeID.String() + "->" + k.TargetNodeID.String()
}
