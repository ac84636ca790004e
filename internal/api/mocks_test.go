package api_test

import (
	"context"

	"github.com/graphein/graphein/internal/models"
	"github.com/graphein/graphein/internal/store"
)

// mockUnitSvc implements api.UnitService for testing.
type mockUnitSvc struct {
	createFn    func(ctx context.Context, unit models.KnowledgeUnit) (*models.KnowledgeUnit, error)
	getFn       func(ctx context.Context, unitID string) (*models.KnowledgeUnit, error)
	getByNameFn func(ctx context.Context, name string) (*models.KnowledgeUnit, error)
	listFn      func(ctx context.Context, filter models.UnitFilter, limit, offset int) ([]models.KnowledgeUnit, int64, error)
	searchFn    func(ctx context.Context, text string, filter models.UnitFilter, limit int) ([]store.SearchResult, error)
	updateFn    func(ctx context.Context, unitID string, req models.UpdateUnitRequest) (*models.KnowledgeUnit, error)
	deleteFn    func(ctx context.Context, unitID string) error
	mergeFn     func(ctx context.Context, targetID string, sourceIDs []string) (*models.KnowledgeUnit, error)
	bulkFn      func(ctx context.Context, units []models.KnowledgeUnit) ([]models.KnowledgeUnit, []store.BulkSkip, error)
}

func (m *mockUnitSvc) Create(ctx context.Context, unit models.KnowledgeUnit) (*models.KnowledgeUnit, error) {
	return m.createFn(ctx, unit)
}

func (m *mockUnitSvc) Get(ctx context.Context, unitID string) (*models.KnowledgeUnit, error) {
	return m.getFn(ctx, unitID)
}

func (m *mockUnitSvc) GetByCanonicalName(ctx context.Context, name string) (*models.KnowledgeUnit, error) {
	return m.getByNameFn(ctx, name)
}

func (m *mockUnitSvc) List(ctx context.Context, filter models.UnitFilter, limit, offset int) ([]models.KnowledgeUnit, int64, error) {
	return m.listFn(ctx, filter, limit, offset)
}

func (m *mockUnitSvc) Search(ctx context.Context, text string, filter models.UnitFilter, limit int) ([]store.SearchResult, error) {
	return m.searchFn(ctx, text, filter, limit)
}

func (m *mockUnitSvc) Update(ctx context.Context, unitID string, req models.UpdateUnitRequest) (*models.KnowledgeUnit, error) {
	return m.updateFn(ctx, unitID, req)
}

func (m *mockUnitSvc) Delete(ctx context.Context, unitID string) error {
	return m.deleteFn(ctx, unitID)
}

func (m *mockUnitSvc) Merge(ctx context.Context, targetID string, sourceIDs []string) (*models.KnowledgeUnit, error) {
	return m.mergeFn(ctx, targetID, sourceIDs)
}

func (m *mockUnitSvc) BulkCreate(ctx context.Context, units []models.KnowledgeUnit) ([]models.KnowledgeUnit, []store.BulkSkip, error) {
	return m.bulkFn(ctx, units)
}

// mockTripleSvc implements api.TripleService for testing.
type mockTripleSvc struct {
	createFn      func(ctx context.Context, triple models.SemanticTriple) (*models.SemanticTriple, error)
	getFn         func(ctx context.Context, tripleID string) (*models.SemanticTriple, error)
	listFn        func(ctx context.Context, filter models.TripleFilter, limit, offset int) ([]models.SemanticTriple, error)
	listForUnitFn func(ctx context.Context, unitID, direction, relationType string, limit int) ([]models.SemanticTriple, error)
	countFn       func(ctx context.Context, unitID string) (int64, int64, error)
	updateFn      func(ctx context.Context, tripleID string, req models.UpdateTripleRequest) (*models.SemanticTriple, error)
	deleteFn      func(ctx context.Context, tripleID string) error
	findPathFn    func(ctx context.Context, startID, endID string, maxDepth int) ([]models.PathStep, error)
	bulkFn        func(ctx context.Context, triples []models.SemanticTriple) ([]models.SemanticTriple, []store.BulkSkip, error)
}

func (m *mockTripleSvc) Create(ctx context.Context, triple models.SemanticTriple) (*models.SemanticTriple, error) {
	return m.createFn(ctx, triple)
}

func (m *mockTripleSvc) Get(ctx context.Context, tripleID string) (*models.SemanticTriple, error) {
	return m.getFn(ctx, tripleID)
}

func (m *mockTripleSvc) List(ctx context.Context, filter models.TripleFilter, limit, offset int) ([]models.SemanticTriple, error) {
	return m.listFn(ctx, filter, limit, offset)
}

func (m *mockTripleSvc) ListForUnit(ctx context.Context, unitID, direction, relationType string, limit int) ([]models.SemanticTriple, error) {
	return m.listForUnitFn(ctx, unitID, direction, relationType, limit)
}

func (m *mockTripleSvc) CountForUnit(ctx context.Context, unitID string) (int64, int64, error) {
	return m.countFn(ctx, unitID)
}

func (m *mockTripleSvc) Update(ctx context.Context, tripleID string, req models.UpdateTripleRequest) (*models.SemanticTriple, error) {
	return m.updateFn(ctx, tripleID, req)
}

func (m *mockTripleSvc) Delete(ctx context.Context, tripleID string) error {
	return m.deleteFn(ctx, tripleID)
}

func (m *mockTripleSvc) FindPath(ctx context.Context, startID, endID string, maxDepth int) ([]models.PathStep, error) {
	return m.findPathFn(ctx, startID, endID, maxDepth)
}

func (m *mockTripleSvc) BulkCreate(ctx context.Context, triples []models.SemanticTriple) ([]models.SemanticTriple, []store.BulkSkip, error) {
	return m.bulkFn(ctx, triples)
}

// mockGraphSvc implements api.GraphService for testing.
type mockGraphSvc struct {
	createFn     func(ctx context.Context, graph models.KnowledgeGraph) (*models.KnowledgeGraph, error)
	getFn        func(ctx context.Context, graphID string) (*models.KnowledgeGraph, error)
	listFn       func(ctx context.Context, filter models.GraphFilter, limit, offset int) ([]models.KnowledgeGraph, int64, error)
	updateFn     func(ctx context.Context, graphID string, req models.UpdateGraphRequest) (*models.KnowledgeGraph, error)
	deleteFn     func(ctx context.Context, graphID string) error
	addUnitsFn   func(ctx context.Context, graphID string, unitIDs []string) (*models.KnowledgeGraph, int, error)
	addTriplesFn func(ctx context.Context, graphID string, tripleIDs []string) (*models.KnowledgeGraph, int, error)
	visualFn     func(ctx context.Context, graphID string, rootIDs []string, maxDepth int) (*models.VisualData, error)
	statsFn      func(ctx context.Context, graphID string) (*models.GraphStats, error)
}

func (m *mockGraphSvc) Create(ctx context.Context, graph models.KnowledgeGraph) (*models.KnowledgeGraph, error) {
	return m.createFn(ctx, graph)
}

func (m *mockGraphSvc) Get(ctx context.Context, graphID string) (*models.KnowledgeGraph, error) {
	return m.getFn(ctx, graphID)
}

func (m *mockGraphSvc) List(ctx context.Context, filter models.GraphFilter, limit, offset int) ([]models.KnowledgeGraph, int64, error) {
	return m.listFn(ctx, filter, limit, offset)
}

func (m *mockGraphSvc) Update(ctx context.Context, graphID string, req models.UpdateGraphRequest) (*models.KnowledgeGraph, error) {
	return m.updateFn(ctx, graphID, req)
}

func (m *mockGraphSvc) Delete(ctx context.Context, graphID string) error {
	return m.deleteFn(ctx, graphID)
}

func (m *mockGraphSvc) AddUnits(ctx context.Context, graphID string, unitIDs []string) (*models.KnowledgeGraph, int, error) {
	return m.addUnitsFn(ctx, graphID, unitIDs)
}

func (m *mockGraphSvc) AddTriples(ctx context.Context, graphID string, tripleIDs []string) (*models.KnowledgeGraph, int, error) {
	return m.addTriplesFn(ctx, graphID, tripleIDs)
}

func (m *mockGraphSvc) Visual(ctx context.Context, graphID string, rootIDs []string, maxDepth int) (*models.VisualData, error) {
	return m.visualFn(ctx, graphID, rootIDs, maxDepth)
}

func (m *mockGraphSvc) Stats(ctx context.Context, graphID string) (*models.GraphStats, error) {
	return m.statsFn(ctx, graphID)
}

// mockImportSvc implements api.ImportService for testing.
type mockImportSvc struct {
	startFn  func(fileName string, content []byte, ownerID string, opts models.ImportOptions) (*models.ImportJob, error)
	getFn    func(jobID string) (*models.ImportJob, error)
	listFn   func(ownerID string) []models.ImportJob
	cancelFn func(jobID string) (*models.ImportJob, error)
	deleteFn func(jobID string) error
}

func (m *mockImportSvc) StartImport(fileName string, content []byte, ownerID string, opts models.ImportOptions) (*models.ImportJob, error) {
	return m.startFn(fileName, content, ownerID, opts)
}

func (m *mockImportSvc) GetJob(jobID string) (*models.ImportJob, error) {
	return m.getFn(jobID)
}

func (m *mockImportSvc) ListJobs(ownerID string) []models.ImportJob {
	return m.listFn(ownerID)
}

func (m *mockImportSvc) Cancel(jobID string) (*models.ImportJob, error) {
	return m.cancelFn(jobID)
}

func (m *mockImportSvc) DeleteJob(jobID string) error {
	return m.deleteFn(jobID)
}
