// Package service implements the application logic between the HTTP API and
// the stores: validation, normalization, event publication and the
// orchestration that spans more than one store call.
package service

import (
	"context"

	"github.com/graphein/graphein/internal/models"
	"github.com/graphein/graphein/internal/store"
)

// UnitStore is the persistence surface UnitService needs.
type UnitStore interface {
	CreateUnit(ctx context.Context, unit models.KnowledgeUnit) (*models.KnowledgeUnit, error)
	GetUnit(ctx context.Context, unitID string) (*models.KnowledgeUnit, error)
	GetUnitByCanonicalName(ctx context.Context, name string) (*models.KnowledgeUnit, error)
	ListUnits(ctx context.Context, filter models.UnitFilter, limit, offset int) ([]models.KnowledgeUnit, error)
	CountUnits(ctx context.Context, filter models.UnitFilter) (int64, error)
	SearchUnits(ctx context.Context, text string, filter models.UnitFilter, limit int) ([]store.SearchResult, error)
	UpdateUnit(ctx context.Context, unitID string, req models.UpdateUnitRequest) (*models.KnowledgeUnit, error)
	DeleteUnit(ctx context.Context, unitID string) error
	IncrementViewCount(ctx context.Context, unitID string) error
	BulkInsertUnits(ctx context.Context, units []models.KnowledgeUnit) ([]models.KnowledgeUnit, []store.BulkSkip, error)
}

// TripleStore is the persistence surface TripleService needs.
type TripleStore interface {
	CreateTriple(ctx context.Context, triple models.SemanticTriple) (*models.SemanticTriple, error)
	GetTriple(ctx context.Context, tripleID string) (*models.SemanticTriple, error)
	ListTriples(ctx context.Context, filter models.TripleFilter, limit, offset int) ([]models.SemanticTriple, error)
	ListTriplesForUnit(ctx context.Context, unitID, direction, relationType string, limit int) ([]models.SemanticTriple, error)
	CountTriplesForUnit(ctx context.Context, unitID string) (outgoing, incoming int64, err error)
	UpdateTriple(ctx context.Context, tripleID string, req models.UpdateTripleRequest) (*models.SemanticTriple, error)
	DeleteTriple(ctx context.Context, tripleID string) error
	FindPath(ctx context.Context, startID, endID string, maxDepth int) ([]models.PathStep, error)
	BulkInsertTriples(ctx context.Context, triples []models.SemanticTriple) ([]models.SemanticTriple, []store.BulkSkip, error)
}

// GraphStore is the persistence surface GraphService needs.
type GraphStore interface {
	CreateGraph(ctx context.Context, graph models.KnowledgeGraph) (*models.KnowledgeGraph, error)
	GetGraph(ctx context.Context, graphID string) (*models.KnowledgeGraph, error)
	ListGraphs(ctx context.Context, filter models.GraphFilter, limit, offset int) ([]models.KnowledgeGraph, error)
	CountGraphs(ctx context.Context, filter models.GraphFilter) (int64, error)
	UpdateGraph(ctx context.Context, graphID string, req models.UpdateGraphRequest) (*models.KnowledgeGraph, error)
	DeleteGraph(ctx context.Context, graphID string) error
	AddUnits(ctx context.Context, graphID string, unitIDs []string) (*models.KnowledgeGraph, int, error)
	AddTriples(ctx context.Context, graphID string, tripleIDs []string) (*models.KnowledgeGraph, int, error)
	VisualData(ctx context.Context, graphID string, rootIDs []string, maxDepth int) (*models.VisualData, error)
	Stats(ctx context.Context, graphID string) (*models.GraphStats, error)
}

// EventSink receives change notifications for connected clients. A nil sink
// is allowed everywhere.
type EventSink interface {
	Publish(eventType string, payload any)
}

func publish(sink EventSink, eventType string, payload any) {
	if sink != nil {
		sink.Publish(eventType, payload)
	}
}
