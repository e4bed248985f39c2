// Package services derives the study graph from journal notes.
//
// The graph is append-only: generation only ever adds nodes and edges. When
// a note is edited to drop a reference, tag or mention, the nodes and edges
// it produced earlier stay in storage as part of the user's history. Nodes
// are removed only through an explicit delete.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"versegraph/application/ports"
	"versegraph/domain/config"
	"versegraph/domain/core/entities"
	"versegraph/domain/core/valueobjects"
	"versegraph/domain/events"
	"versegraph/domain/gazetteer"
	"versegraph/domain/scripture"
	pkgerrors "versegraph/pkg/errors"
	"versegraph/pkg/observability"
)

// NodeSpec describes a node to upsert
type NodeSpec struct {
	UserID      string
	Type        entities.NodeType
	ReferenceID string
	Label       string
	Description string
	Metadata    entities.Metadata
}

func (s NodeSpec) key() valueobjects.NodeKey {
	return valueobjects.NodeKey{UserID: s.UserID, NodeType: string(s.Type), ReferenceID: s.ReferenceID}
}

// StepFailure records one node or edge write that failed and was skipped
type StepFailure struct {
	Step string `json:"step"`
	Key  string `json:"key"`
	Err  error  `json:"-"`
}

func (f StepFailure) Error() string {
	return fmt.Sprintf("%s %s: %v", f.Step, f.Key, f.Err)
}

// GenerationResult is the outcome of generating one note's subgraph
type GenerationResult struct {
	// Nodes holds every node the note touched, created or already stored
	Nodes []*entities.GraphNode
	// Edges holds only the edges created by this run
	Edges        []*entities.GraphEdge
	NodesCreated int
	Failures     []StepFailure
}

// Generation steps, in processing order
const (
	stepNote    = "note"
	stepPassage = "passage"
	stepBook    = "book"
	stepTheme   = "theme"
	stepPerson  = "person"
	stepPlace   = "place"
)

// GraphGenerator upserts the nodes and edges implied by notes
type GraphGenerator struct {
	nodeRepo  ports.NodeRepository
	edgeRepo  ports.EdgeRepository
	noteRepo  ports.NoteRepository
	publisher ports.EventPublisher
	cache     ports.Cache
	locker    ports.UserLocker
	metrics   *observability.Metrics
	tracer    *observability.Tracer
	cfg       *config.DomainConfig
	logger    *zap.Logger
}

// NewGraphGenerator creates a generator. publisher, cache, locker, metrics
// and tracer are optional.
func NewGraphGenerator(
	nodeRepo ports.NodeRepository,
	edgeRepo ports.EdgeRepository,
	noteRepo ports.NoteRepository,
	publisher ports.EventPublisher,
	cache ports.Cache,
	locker ports.UserLocker,
	metrics *observability.Metrics,
	tracer *observability.Tracer,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *GraphGenerator {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GraphGenerator{
		nodeRepo:  nodeRepo,
		edgeRepo:  edgeRepo,
		noteRepo:  noteRepo,
		publisher: publisher,
		cache:     cache,
		locker:    locker,
		metrics:   metrics,
		tracer:    tracer,
		cfg:       cfg,
		logger:    logger,
	}
}

// UpsertNode returns the stored node for spec's identity, creating it when
// absent. Calling it repeatedly with the same identity yields one node.
func (g *GraphGenerator) UpsertNode(ctx context.Context, spec NodeSpec) (*entities.GraphNode, error) {
	node, _, err := g.upsertNode(ctx, spec)
	return node, err
}

func (g *GraphGenerator) upsertNode(ctx context.Context, spec NodeSpec) (*entities.GraphNode, bool, error) {
	key := spec.key()
	if err := key.Validate(); err != nil {
		return nil, false, pkgerrors.NewValidationError(err.Error())
	}

	existing, err := g.nodeRepo.FindByKey(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("find node %s: %w", key, err)
	}
	if existing != nil {
		return existing, false, nil
	}

	node, err := entities.NewGraphNode(spec.UserID, spec.Type, spec.ReferenceID, spec.Label, spec.Description, spec.Metadata)
	if err != nil {
		return nil, false, err
	}

	stored, created, err := g.nodeRepo.CreateIfAbsent(ctx, node)
	if err != nil {
		return nil, false, fmt.Errorf("create node %s: %w", key, err)
	}
	return stored, created, nil
}

// EnsureEdge creates a source -> target edge unless one of any type already
// exists for the pair. It returns the new edge and true only when created.
func (g *GraphGenerator) EnsureEdge(
	ctx context.Context,
	userID string,
	source, target valueobjects.NodeID,
	edgeType entities.EdgeType,
) (*entities.GraphEdge, bool, error) {
	key := valueobjects.EdgeKey{UserID: userID, SourceNodeID: source, TargetNodeID: target}

	exists, err := g.edgeRepo.Exists(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("check edge %s: %w", key, err)
	}
	if exists {
		return nil, false, nil
	}

	edge, err := entities.NewGraphEdge(userID, source, target, edgeType)
	if err != nil {
		return nil, false, err
	}

	created, err := g.edgeRepo.CreateIfAbsent(ctx, edge)
	if err != nil {
		return nil, false, fmt.Errorf("create edge %s: %w", key, err)
	}
	if !created {
		return nil, false, nil
	}
	return edge, true, nil
}

// GenerateForNote upserts everything note implies. Individual write
// failures are logged and reported in the result, never returned.
func (g *GraphGenerator) GenerateForNote(ctx context.Context, note *entities.Note) (*GenerationResult, error) {
	if note == nil || note.UserID == "" || note.ID == "" {
		return nil, pkgerrors.NewValidationError("note with id and user id is required")
	}

	var result *GenerationResult
	err := g.withUserLock(ctx, note.UserID, func(ctx context.Context) error {
		start := time.Now()
		err := g.tracer.TraceFunction(ctx, "GenerateNoteGraph", func(ctx context.Context) error {
			result = g.generate(ctx, note)
			return nil
		})
		g.metrics.RecordLatency(ctx, "GenerateNoteGraph", time.Since(start))
		return err
	})
	if err != nil {
		return nil, err
	}

	g.afterChanges(ctx, note.UserID, result.NodesCreated, len(result.Edges))
	return result, nil
}

// GenerateForNoteID reads the note and generates its subgraph. A failed or
// empty read is returned as an error.
func (g *GraphGenerator) GenerateForNoteID(ctx context.Context, userID, noteID string) (*GenerationResult, error) {
	note, err := g.noteRepo.GetByID(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, pkgerrors.NewNotFoundError("note").WithCode(pkgerrors.CodeNoteNotFound)
	}
	if note.UserID == "" {
		note.UserID = userID
	}
	return g.GenerateForNote(ctx, note)
}

// generationRun accumulates the outcome of one note
type generationRun struct {
	userID   string
	result   *GenerationResult
	touched  map[string]bool
	failures []StepFailure
}

func newGenerationRun(userID string) *generationRun {
	return &generationRun{
		userID:  userID,
		result:  &GenerationResult{},
		touched: make(map[string]bool),
	}
}

func (r *generationRun) touch(node *entities.GraphNode, created bool) {
	if created {
		r.result.NodesCreated++
	}
	id := node.ID().String()
	if r.touched[id] {
		return
	}
	r.touched[id] = true
	r.result.Nodes = append(r.result.Nodes, node)
}

// generate runs the per-note algorithm without taking the user lock.
func (g *GraphGenerator) generate(ctx context.Context, note *entities.Note) *GenerationResult {
	run := newGenerationRun(note.UserID)
	text := note.Text()

	noteNode := g.upsertStep(ctx, run, stepNote, NodeSpec{
		UserID:      note.UserID,
		Type:        entities.NodeTypeNote,
		ReferenceID: note.ID,
		Label:       note.Title,
		Description: text.Excerpt(g.cfg.MaxDescriptionRunes),
		Metadata: entities.Metadata{
			"tags":            append([]string{}, note.Tags...),
			"reference_count": len(note.BibleReferences),
		},
	})

	g.generateReferences(ctx, run, note, noteNode)
	g.generateThemes(ctx, run, note, noteNode)

	detectionText := text.DetectionText()
	for _, person := range gazetteer.FindPeopleInText(detectionText) {
		node := g.upsertStep(ctx, run, stepPerson, NodeSpec{
			UserID:      note.UserID,
			Type:        entities.NodeTypePerson,
			ReferenceID: strings.ToLower(person.Name),
			Label:       person.Name,
			Description: person.Role,
			Metadata:    entities.Metadata{"aliases": person.Aliases},
		})
		g.edgeStep(ctx, run, stepPerson, noteNode, node, entities.EdgeTypeMentions)
	}
	for _, place := range gazetteer.FindPlacesInText(detectionText) {
		node := g.upsertStep(ctx, run, stepPlace, NodeSpec{
			UserID:      note.UserID,
			Type:        entities.NodeTypePlace,
			ReferenceID: strings.ToLower(place.Name),
			Label:       place.Name,
			Description: place.Region,
			Metadata:    entities.Metadata{"aliases": place.Aliases},
		})
		g.edgeStep(ctx, run, stepPlace, noteNode, node, entities.EdgeTypeMentions)
	}

	run.result.Failures = run.failures
	if len(run.failures) > 0 {
		g.logger.Warn("Graph generation completed with skipped items",
			zap.String("userID", note.UserID),
			zap.String("noteID", note.ID),
			zap.Int("failures", len(run.failures)),
		)
	}
	return run.result
}

func (g *GraphGenerator) generateReferences(ctx context.Context, run *generationRun, note *entities.Note, noteNode *entities.GraphNode) {
	seenRefs := make(map[string]bool)
	books := make(map[string]*entities.GraphNode)
	linkedBooks := make(map[string]bool)

	for _, ref := range note.BibleReferences {
		if strings.TrimSpace(ref) == "" || seenRefs[ref] {
			continue
		}
		seenRefs[ref] = true

		parsed, parsedOK := scripture.Parse(ref)
		meta := entities.Metadata{}
		if parsedOK {
			meta["book"] = parsed.Book
			meta["chapter"] = parsed.Chapter
			if parsed.HasVerse() {
				meta["verse_start"] = parsed.VerseStart
			}
			if parsed.HasRange() {
				meta["verse_end"] = parsed.VerseEnd
			}
		}

		passage := g.upsertStep(ctx, run, stepPassage, NodeSpec{
			UserID:      note.UserID,
			Type:        entities.NodeTypePassage,
			ReferenceID: ref,
			Label:       ref,
			Metadata:    meta,
		})
		g.edgeStep(ctx, run, stepPassage, noteNode, passage, entities.EdgeTypeReferences)

		if !parsedOK || linkedBooks[parsed.Book] {
			continue
		}
		bookNode, done := books[parsed.Book]
		if !done {
			bookMeta := entities.Metadata{}
			if book, ok := scripture.LookupBook(parsed.Book); ok {
				bookMeta["testament"] = string(book.Testament)
				bookMeta["book_order"] = book.Order
			}
			bookNode = g.upsertStep(ctx, run, stepBook, NodeSpec{
				UserID:      note.UserID,
				Type:        entities.NodeTypeBook,
				ReferenceID: parsed.Book,
				Label:       parsed.Book,
				Metadata:    bookMeta,
			})
			books[parsed.Book] = bookNode
		}
		// A failed passage leaves its book unlinked so a later passage of
		// the same book can carry the edge.
		if passage == nil {
			continue
		}
		linkedBooks[parsed.Book] = true
		g.edgeStep(ctx, run, stepBook, passage, bookNode, entities.EdgeTypeReferences)
	}
}

func (g *GraphGenerator) generateThemes(ctx context.Context, run *generationRun, note *entities.Note, noteNode *entities.GraphNode) {
	seen := make(map[string]bool)
	for _, tag := range note.Tags {
		label := strings.TrimSpace(tag)
		if label == "" {
			continue
		}
		key := strings.ToLower(label)
		if seen[key] {
			continue
		}
		seen[key] = true

		theme := g.upsertStep(ctx, run, stepTheme, NodeSpec{
			UserID:      note.UserID,
			Type:        entities.NodeTypeTheme,
			ReferenceID: key,
			Label:       label,
			Metadata:    entities.Metadata{"tag": key},
		})
		g.edgeStep(ctx, run, stepTheme, noteNode, theme, entities.EdgeTypeThemeConnection)
	}
}

// upsertStep upserts a node and records a failure instead of returning it
func (g *GraphGenerator) upsertStep(ctx context.Context, run *generationRun, step string, spec NodeSpec) *entities.GraphNode {
	node, created, err := g.upsertNode(ctx, spec)
	if err != nil {
		g.logger.Error("Failed to upsert graph node",
			zap.String("step", step),
			zap.String("userID", spec.UserID),
			zap.String("referenceID", spec.ReferenceID),
			zap.Error(err),
		)
		run.failures = append(run.failures, StepFailure{Step: step, Key: spec.key().String(), Err: err})
		return nil
	}
	run.touch(node, created)
	return node
}

// edgeStep links two nodes when both exist; failures are recorded
func (g *GraphGenerator) edgeStep(ctx context.Context, run *generationRun, step string, source, target *entities.GraphNode, edgeType entities.EdgeType) {
	if source == nil || target == nil {
		return
	}

	edge, created, err := g.EnsureEdge(ctx, run.userID, source.ID(), target.ID(), edgeType)
	if err != nil {
		g.logger.Error("Failed to create graph edge",
			zap.String("step", step),
			zap.String("userID", run.userID),
			zap.String("source", source.ID().String()),
			zap.String("target", target.ID().String()),
			zap.Error(err),
		)
		run.failures = append(run.failures, StepFailure{
			Step: step + "_edge",
			Key:  source.ID().String() + "->" + target.ID().String(),
			Err:  err,
		})
		return
	}
	if created {
		run.result.Edges = append(run.result.Edges, edge)
	}
}

// withUserLock runs fn holding the user's generation lock when configured
func (g *GraphGenerator) withUserLock(ctx context.Context, userID string, fn func(context.Context) error) error {
	if g.locker == nil || !g.cfg.EnableUserLock {
		return fn(ctx)
	}

	unlock, err := g.locker.Lock(ctx, userID, g.cfg.LockTimeout)
	if err != nil {
		return pkgerrors.NewConflictError("graph generation already running for user").
			WithCode(pkgerrors.CodeGenerationInProgress).
			WithCause(err)
	}
	defer unlock()

	return fn(ctx)
}

// afterChanges invalidates cached views and notifies realtime listeners
func (g *GraphGenerator) afterChanges(ctx context.Context, userID string, nodesCreated, edgesCreated int) {
	g.metrics.RecordCount(ctx, "GraphNodesCreated", nodesCreated, nil)
	g.metrics.RecordCount(ctx, "GraphEdgesCreated", edgesCreated, nil)

	if nodesCreated == 0 && edgesCreated == 0 {
		return
	}

	if g.cache != nil {
		if err := g.cache.Delete(ctx, ports.GraphViewCacheKey(userID)); err != nil {
			g.logger.Warn("Failed to invalidate graph view cache", zap.String("userID", userID), zap.Error(err))
		}
	}

	if g.publisher == nil {
		return
	}

	now := time.Now().UTC()
	var batch []events.DomainEvent
	if nodesCreated > 0 {
		batch = append(batch, events.NewCollectionChanged(userID, events.CollectionGraphNodes, nodesCreated, now))
	}
	if edgesCreated > 0 {
		batch = append(batch, events.NewCollectionChanged(userID, events.CollectionGraphEdges, edgesCreated, now))
	}
	if err := g.publisher.PublishBatch(ctx, batch); err != nil {
		g.logger.Warn("Failed to publish graph change events", zap.String("userID", userID), zap.Error(err))
	}
}
