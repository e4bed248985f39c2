package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"versegraph/application/ports"
	"versegraph/domain/config"
	"versegraph/domain/core/entities"
	pkgerrors "versegraph/pkg/errors"
	"versegraph/pkg/observability"
)

// Summary counts what one full-graph assembly processed
type Summary struct {
	Notes       int `json:"notes"`
	Passages    int `json:"passages"`
	Books       int `json:"books"`
	Themes      int `json:"themes"`
	People      int `json:"people"`
	Places      int `json:"places"`
	Connections int `json:"connections"`
}

// AssembledGraph is the merged graph of a user's notes
type AssembledGraph struct {
	Nodes    []*entities.GraphNode
	Edges    []*entities.GraphEdge
	Summary  Summary
	Failures []StepFailure
}

// GraphAssembler derives the graph for every active note of a user
type GraphAssembler struct {
	generator *GraphGenerator
	noteRepo  ports.NoteRepository
	metrics   *observability.Metrics
	cfg       *config.DomainConfig
	logger    *zap.Logger
}

// NewGraphAssembler creates an assembler on top of a generator
func NewGraphAssembler(
	generator *GraphGenerator,
	noteRepo ports.NoteRepository,
	metrics *observability.Metrics,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *GraphAssembler {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GraphAssembler{
		generator: generator,
		noteRepo:  noteRepo,
		metrics:   metrics,
		cfg:       cfg,
		logger:    logger,
	}
}

// GenerateGraphFromNotes runs generation over the user's non-archived notes
// and merges the results. It writes as a byproduct; running it twice in a
// row creates nothing the second time.
func (a *GraphAssembler) GenerateGraphFromNotes(ctx context.Context, userID string) (*AssembledGraph, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("user id is required")
	}

	var graph *assembly
	start := time.Now()
	err := a.generator.withUserLock(ctx, userID, func(ctx context.Context) error {
		return a.generator.tracer.TraceFunction(ctx, "GenerateUserGraph", func(ctx context.Context) error {
			var err error
			graph, err = a.assemble(ctx, userID)
			return err
		})
	})
	a.metrics.RecordLatency(ctx, "GenerateUserGraph", time.Since(start))
	if err != nil {
		return nil, err
	}

	a.generator.afterChanges(ctx, userID, graph.nodesCreated, len(graph.Edges))

	a.logger.Info("Assembled user graph",
		zap.String("userID", userID),
		zap.Int("notes", graph.Summary.Notes),
		zap.Int("nodes", len(graph.Nodes)),
		zap.Int("connections", graph.Summary.Connections),
	)
	return graph.AssembledGraph, nil
}

type assembly struct {
	*AssembledGraph
	nodesCreated int
}

func (a *GraphAssembler) assemble(ctx context.Context, userID string) (*assembly, error) {
	notes, err := a.noteRepo.ListNotes(ctx, userID, ports.ListNotesOptions{
		Archived: false,
		Limit:    a.cfg.GenerationNoteLimit,
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("list notes", err).WithCode(pkgerrors.CodeGenerationFailed)
	}

	merged := newNodeSet()
	result := &assembly{AssembledGraph: &AssembledGraph{Edges: []*entities.GraphEdge{}}}

	for _, note := range notes {
		if note == nil {
			continue
		}
		if note.UserID == "" {
			note.UserID = userID
		}

		res := a.generator.generate(ctx, note)
		for _, n := range res.Nodes {
			merged.put(n)
		}
		result.Edges = append(result.Edges, res.Edges...)
		result.Failures = append(result.Failures, res.Failures...)
		result.nodesCreated += res.NodesCreated
	}

	result.Nodes = merged.list()
	result.Summary = summarize(result.Nodes, len(result.Edges))
	return result, nil
}

// UserHasNotes reports whether the user has any note. Storage errors read
// as false.
func (a *GraphAssembler) UserHasNotes(ctx context.Context, userID string) bool {
	has, err := a.noteRepo.HasNotes(ctx, userID)
	if err != nil {
		a.logger.Warn("Failed to check notes", zap.String("userID", userID), zap.Error(err))
		return false
	}
	return has
}

// nodeSet keeps nodes by id, last write wins, first-seen order
type nodeSet struct {
	order []string
	byID  map[string]*entities.GraphNode
}

func newNodeSet() *nodeSet {
	return &nodeSet{byID: make(map[string]*entities.GraphNode)}
}

func (s *nodeSet) put(n *entities.GraphNode) {
	id := n.ID().String()
	if _, ok := s.byID[id]; !ok {
		s.order = append(s.order, id)
	}
	s.byID[id] = n
}

func (s *nodeSet) list() []*entities.GraphNode {
	out := make([]*entities.GraphNode, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

func summarize(nodes []*entities.GraphNode, connections int) Summary {
	noteIDs := make(map[string]bool)
	refs := map[entities.NodeType]map[string]bool{
		entities.NodeTypePassage: {},
		entities.NodeTypeBook:    {},
		entities.NodeTypeTheme:   {},
		entities.NodeTypePerson:  {},
		entities.NodeTypePlace:   {},
	}

	for _, n := range nodes {
		if n.Type() == entities.NodeTypeNote {
			noteIDs[n.ID().String()] = true
			continue
		}
		if set, ok := refs[n.Type()]; ok {
			set[n.ReferenceID()] = true
		}
	}

	return Summary{
		Notes:       len(noteIDs),
		Passages:    len(refs[entities.NodeTypePassage]),
		Books:       len(refs[entities.NodeTypeBook]),
		Themes:      len(refs[entities.NodeTypeTheme]),
		People:      len(refs[entities.NodeTypePerson]),
		Places:      len(refs[entities.NodeTypePlace]),
		Connections: connections,
	}
}
