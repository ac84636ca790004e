package api

import (
	"context"

	"github.com/graphein/graphein/internal/models"
	"github.com/graphein/graphein/internal/store"
)

// UnitService defines knowledge unit operations used by UnitHandler.
type UnitService interface {
	Create(ctx context.Context, unit models.KnowledgeUnit) (*models.KnowledgeUnit, error)
	Get(ctx context.Context, unitID string) (*models.KnowledgeUnit, error)
	GetByCanonicalName(ctx context.Context, name string) (*models.KnowledgeUnit, error)
	List(ctx context.Context, filter models.UnitFilter, limit, offset int) ([]models.KnowledgeUnit, int64, error)
	Search(ctx context.Context, text string, filter models.UnitFilter, limit int) ([]store.SearchResult, error)
	Update(ctx context.Context, unitID string, req models.UpdateUnitRequest) (*models.KnowledgeUnit, error)
	Delete(ctx context.Context, unitID string) error
	Merge(ctx context.Context, targetID string, sourceIDs []string) (*models.KnowledgeUnit, error)
	BulkCreate(ctx context.Context, units []models.KnowledgeUnit) ([]models.KnowledgeUnit, []store.BulkSkip, error)
}

// TripleService defines semantic triple operations used by TripleHandler.
type TripleService interface {
	Create(ctx context.Context, triple models.SemanticTriple) (*models.SemanticTriple, error)
	Get(ctx context.Context, tripleID string) (*models.SemanticTriple, error)
	List(ctx context.Context, filter models.TripleFilter, limit, offset int) ([]models.SemanticTriple, error)
	ListForUnit(ctx context.Context, unitID, direction, relationType string, limit int) ([]models.SemanticTriple, error)
	CountForUnit(ctx context.Context, unitID string) (outgoing, incoming int64, err error)
	Update(ctx context.Context, tripleID string, req models.UpdateTripleRequest) (*models.SemanticTriple, error)
	Delete(ctx context.Context, tripleID string) error
	FindPath(ctx context.Context, startID, endID string, maxDepth int) ([]models.PathStep, error)
	BulkCreate(ctx context.Context, triples []models.SemanticTriple) ([]models.SemanticTriple, []store.BulkSkip, error)
}

// GraphService defines knowledge graph operations used by GraphHandler.
type GraphService interface {
	Create(ctx context.Context, graph models.KnowledgeGraph) (*models.KnowledgeGraph, error)
	Get(ctx context.Context, graphID string) (*models.KnowledgeGraph, error)
	List(ctx context.Context, filter models.GraphFilter, limit, offset int) ([]models.KnowledgeGraph, int64, error)
	Update(ctx context.Context, graphID string, req models.UpdateGraphRequest) (*models.KnowledgeGraph, error)
	Delete(ctx context.Context, graphID string) error
	AddUnits(ctx context.Context, graphID string, unitIDs []string) (*models.KnowledgeGraph, int, error)
	AddTriples(ctx context.Context, graphID string, tripleIDs []string) (*models.KnowledgeGraph, int, error)
	Visual(ctx context.Context, graphID string, rootIDs []string, maxDepth int) (*models.VisualData, error)
	Stats(ctx context.Context, graphID string) (*models.GraphStats, error)
}

// ImportService defines import job operations used by ImportHandler.
// Jobs run on background goroutines, so lookups do not take a context.
type ImportService interface {
	StartImport(fileName string, content []byte, ownerID string, opts models.ImportOptions) (*models.ImportJob, error)
	GetJob(jobID string) (*models.ImportJob, error)
	ListJobs(ownerID string) []models.ImportJob
	Cancel(jobID string) (*models.ImportJob, error)
	DeleteJob(jobID string) error
}
