package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"versegraph/application/ports"
	"versegraph/domain/core/entities"
	"versegraph/domain/core/valueobjects"
	"versegraph/pkg/utils"
)

const edgeColumns = `id, user_id, source_node_id, target_node_id, edge_type, weight, created_at`

// EdgeRepository stores graph edges in the graph_edges table
type EdgeRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

var _ ports.EdgeRepository = (*EdgeRepository)(nil)

// Exists reports whether the ordered pair already has an edge of any type
func (r *EdgeRepository) Exists(ctx context.Context, key valueobjects.EdgeKey) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM graph_edges WHERE user_id = ? AND source_node_id = ? AND target_node_id = ?`,
		key.UserID, key.SourceNodeID.String(), key.TargetNodeID.String(),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("querying edge: %w", err)
	}
	return n > 0, nil
}

// CreateIfAbsent inserts edge unless the ordered pair is taken
func (r *EdgeRepository) CreateIfAbsent(ctx context.Context, edge *entities.GraphEdge) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO graph_edges (`+edgeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, source_node_id, target_node_id) DO NOTHING`,
		edge.ID().String(),
		edge.UserID(),
		edge.SourceNodeID().String(),
		edge.TargetNodeID().String(),
		string(edge.Type()),
		edge.Weight(),
		utils.FormatTimestamp(edge.CreatedAt()),
	)
	if err != nil {
		return false, fmt.Errorf("inserting edge: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading insert result: %w", err)
	}
	return affected == 1, nil
}

// ListByUser returns the user's edges in insertion order
func (r *EdgeRepository) ListByUser(ctx context.Context, userID string) ([]*entities.GraphEdge, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+edgeColumns+` FROM graph_edges WHERE user_id = ? ORDER BY rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying edges: %w", err)
	}
	defer rows.Close()

	edges := []*entities.GraphEdge{}
	for rows.Next() {
		var (
			id, uid, source, target, edgeType, createdAt string
			weight                                        float64
		)
		if err := rows.Scan(&id, &uid, &source, &target, &edgeType, &weight, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning edge: %w", err)
		}

		edgeID, err := valueobjects.NewEdgeIDFromString(id)
		if err != nil {
			r.logger.Warn("Skipping edge with invalid id", zap.String("edgeID", id))
			continue
		}
		sourceID, err := valueobjects.NewNodeIDFromString(source)
		if err != nil {
			r.logger.Warn("Skipping edge with invalid source", zap.String("edgeID", id))
			continue
		}
		targetID, err := valueobjects.NewNodeIDFromString(target)
		if err != nil {
			r.logger.Warn("Skipping edge with invalid target", zap.String("edgeID", id))
			continue
		}

		edges = append(edges, entities.ReconstructGraphEdge(
			edgeID, uid, sourceID, targetID, entities.EdgeType(edgeType), weight, utils.ParseTimestamp(createdAt),
		))
	}
	return edges, rows.Err()
}

// DeleteByNode removes every edge touching nodeID
func (r *EdgeRepository) DeleteByNode(ctx context.Context, userID string, nodeID valueobjects.NodeID) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM graph_edges WHERE user_id = ? AND (source_node_id = ? OR target_node_id = ?)`,
		userID, nodeID.String(), nodeID.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting edges: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading delete result: %w", err)
	}
	return int(n), nil
}
