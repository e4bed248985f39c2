package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"versegraph/application/ports"
	"versegraph/domain/core/entities"
	"versegraph/domain/core/valueobjects"
	pkgerrors "versegraph/pkg/errors"
	"versegraph/pkg/utils"
)

const nodeColumns = `id, user_id, node_type, reference_id, label, description, metadata, created_at, updated_at`

// NodeRepository stores graph nodes in the graph_nodes table
type NodeRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

var _ ports.NodeRepository = (*NodeRepository)(nil)

// FindByKey returns the node stored for key, or nil when none is
func (r *NodeRepository) FindByKey(ctx context.Context, key valueobjects.NodeKey) (*entities.GraphNode, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+nodeColumns+` FROM graph_nodes WHERE user_id = ? AND node_type = ? AND reference_id = ?`,
		key.UserID, key.NodeType, key.ReferenceID,
	)
	node, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying node: %w", err)
	}
	return node, nil
}

// GetByID returns a node of the user by id
func (r *NodeRepository) GetByID(ctx context.Context, userID string, id valueobjects.NodeID) (*entities.GraphNode, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+nodeColumns+` FROM graph_nodes WHERE user_id = ? AND id = ?`,
		userID, id.String(),
	)
	node, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.NewNotFoundError("graph node").WithCode(pkgerrors.CodeGraphNodeNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying node: %w", err)
	}
	return node, nil
}

// CreateIfAbsent inserts node unless its key is taken, then returns the
// stored row
func (r *NodeRepository) CreateIfAbsent(ctx context.Context, node *entities.GraphNode) (*entities.GraphNode, bool, error) {
	metaJSON, err := json.Marshal(node.Metadata())
	if err != nil {
		return nil, false, fmt.Errorf("marshaling metadata: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO graph_nodes (`+nodeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, node_type, reference_id) DO NOTHING`,
		node.ID().String(),
		node.UserID(),
		string(node.Type()),
		node.ReferenceID(),
		node.Label(),
		node.Description(),
		string(metaJSON),
		utils.FormatTimestamp(node.CreatedAt()),
		utils.FormatTimestamp(node.UpdatedAt()),
	)
	if err != nil {
		return nil, false, fmt.Errorf("inserting node: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("reading insert result: %w", err)
	}
	if affected == 1 {
		return node, true, nil
	}

	existing, err := r.FindByKey(ctx, node.Key())
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, fmt.Errorf("node %s conflicted but was not found", node.Key())
	}
	r.logger.Debug("Node already existed", zap.String("key", node.Key().String()))
	return existing, false, nil
}

// Update persists the editable fields of a node
func (r *NodeRepository) Update(ctx context.Context, node *entities.GraphNode) error {
	metaJSON, err := json.Marshal(node.Metadata())
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE graph_nodes SET label = ?, description = ?, metadata = ?, updated_at = ? WHERE user_id = ? AND id = ?`,
		node.Label(), node.Description(), string(metaJSON), utils.FormatTimestamp(node.UpdatedAt()),
		node.UserID(), node.ID().String(),
	)
	if err != nil {
		return fmt.Errorf("updating node: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return pkgerrors.NewNotFoundError("graph node").WithCode(pkgerrors.CodeGraphNodeNotFound)
	}
	return nil
}

// Delete removes a node of the user
func (r *NodeRepository) Delete(ctx context.Context, userID string, id valueobjects.NodeID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM graph_nodes WHERE user_id = ? AND id = ?`, userID, id.String())
	if err != nil {
		return fmt.Errorf("deleting node: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return pkgerrors.NewNotFoundError("graph node").WithCode(pkgerrors.CodeGraphNodeNotFound)
	}
	return nil
}

// ListByUser returns the user's nodes in insertion order
func (r *NodeRepository) ListByUser(ctx context.Context, userID string) ([]*entities.GraphNode, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+nodeColumns+` FROM graph_nodes WHERE user_id = ? ORDER BY rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying nodes: %w", err)
	}
	defer rows.Close()

	nodes := []*entities.GraphNode{}
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning node: %w", err)
		}
		nodes = append(nodes, node)
	}
	return nodes, rows.Err()
}

func scanNode(row rowScanner) (*entities.GraphNode, error) {
	var (
		id, userID, nodeType, referenceID string
		label, description, metaJSON      string
		createdAt, updatedAt              string
	)
	if err := row.Scan(&id, &userID, &nodeType, &referenceID, &label, &description, &metaJSON, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	nodeID, err := valueobjects.NewNodeIDFromString(id)
	if err != nil {
		return nil, fmt.Errorf("stored node id %q: %w", id, err)
	}

	var meta entities.Metadata
	if metaJSON != "" {
		if err := json.Unmarshal([]byte(metaJSON), &meta); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}

	return entities.ReconstructGraphNode(
		nodeID, userID, entities.NodeType(nodeType), referenceID, label, description,
		meta, utils.ParseTimestamp(createdAt), utils.ParseTimestamp(updatedAt),
	), nil
}
