package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/graphein/graphein/internal/models"
)

// GraphService handles knowledge graph operations.
type GraphService struct {
	store  GraphStore
	events EventSink
	log    *logrus.Logger
}

// NewGraphService creates a GraphService. events may be nil.
func NewGraphService(s GraphStore, events EventSink, log *logrus.Logger) *GraphService {
	return &GraphService{store: s, events: events, log: log}
}

// Create validates and stores a graph.
func (s *GraphService) Create(ctx context.Context, graph models.KnowledgeGraph) (*models.KnowledgeGraph, error) {
	created, err := s.store.CreateGraph(ctx, graph)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"graph_id": created.ID,
		"name":     created.Name,
		"owner_id": created.OwnerID,
	}).Info("graph created")

	publish(s.events, "graph.created", created)

	return created, nil
}

// Get fetches a graph by id.
func (s *GraphService) Get(ctx context.Context, graphID string) (*models.KnowledgeGraph, error) {
	return s.store.GetGraph(ctx, graphID)
}

// List returns graphs matching the filter plus the total match count.
func (s *GraphService) List(ctx context.Context, filter models.GraphFilter, limit, offset int) ([]models.KnowledgeGraph, int64, error) {
	graphs, err := s.store.ListGraphs(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.store.CountGraphs(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return graphs, total, nil
}

// Update applies a partial update.
func (s *GraphService) Update(ctx context.Context, graphID string, req models.UpdateGraphRequest) (*models.KnowledgeGraph, error) {
	updated, err := s.store.UpdateGraph(ctx, graphID, req)
	if err != nil {
		return nil, err
	}

	publish(s.events, "graph.updated", updated)

	return updated, nil
}

// Delete removes a graph.
func (s *GraphService) Delete(ctx context.Context, graphID string) error {
	if err := s.store.DeleteGraph(ctx, graphID); err != nil {
		return err
	}

	s.log.WithField("graph_id", graphID).Info("graph deleted")
	publish(s.events, "graph.deleted", map[string]string{"id": graphID})

	return nil
}

// AddUnits grows the graph's included unit set. Re-adding a unit is a no-op.
func (s *GraphService) AddUnits(ctx context.Context, graphID string, unitIDs []string) (*models.KnowledgeGraph, int, error) {
	graph, added, err := s.store.AddUnits(ctx, graphID, unitIDs)
	if err != nil {
		return nil, 0, err
	}

	if added > 0 {
		publish(s.events, "graph.units_added", graph)
	}

	return graph, added, nil
}

// AddTriples grows the graph's included triple set, pulling endpoint units
// in with them.
func (s *GraphService) AddTriples(ctx context.Context, graphID string, tripleIDs []string) (*models.KnowledgeGraph, int, error) {
	graph, added, err := s.store.AddTriples(ctx, graphID, tripleIDs)
	if err != nil {
		return nil, 0, err
	}

	if added > 0 {
		publish(s.events, "graph.triples_added", graph)
	}

	return graph, added, nil
}

// Visual extracts the renderable neighborhood of a graph.
func (s *GraphService) Visual(ctx context.Context, graphID string, rootIDs []string, maxDepth int) (*models.VisualData, error) {
	return s.store.VisualData(ctx, graphID, rootIDs, maxDepth)
}

// Stats aggregates per-graph statistics.
func (s *GraphService) Stats(ctx context.Context, graphID string) (*models.GraphStats, error) {
	return s.store.Stats(ctx, graphID)
}
