package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/graphein/graphein/internal/models"
	"github.com/graphein/graphein/internal/store"
)

type mockUnitStore struct {
	createUnit             func(ctx context.Context, unit models.KnowledgeUnit) (*models.KnowledgeUnit, error)
	getUnit                func(ctx context.Context, unitID string) (*models.KnowledgeUnit, error)
	getUnitByCanonicalName func(ctx context.Context, name string) (*models.KnowledgeUnit, error)
	listUnits              func(ctx context.Context, filter models.UnitFilter, limit, offset int) ([]models.KnowledgeUnit, error)
	countUnits             func(ctx context.Context, filter models.UnitFilter) (int64, error)
	searchUnits            func(ctx context.Context, text string, filter models.UnitFilter, limit int) ([]store.SearchResult, error)
	updateUnit             func(ctx context.Context, unitID string, req models.UpdateUnitRequest) (*models.KnowledgeUnit, error)
	deleteUnit             func(ctx context.Context, unitID string) error
	incrementViewCount     func(ctx context.Context, unitID string) error
	bulkInsertUnits        func(ctx context.Context, units []models.KnowledgeUnit) ([]models.KnowledgeUnit, []store.BulkSkip, error)
}

func (m *mockUnitStore) CreateUnit(ctx context.Context, unit models.KnowledgeUnit) (*models.KnowledgeUnit, error) {
	return m.createUnit(ctx, unit)
}

func (m *mockUnitStore) GetUnit(ctx context.Context, unitID string) (*models.KnowledgeUnit, error) {
	return m.getUnit(ctx, unitID)
}

func (m *mockUnitStore) GetUnitByCanonicalName(ctx context.Context, name string) (*models.KnowledgeUnit, error) {
	return m.getUnitByCanonicalName(ctx, name)
}

func (m *mockUnitStore) ListUnits(ctx context.Context, filter models.UnitFilter, limit, offset int) ([]models.KnowledgeUnit, error) {
	return m.listUnits(ctx, filter, limit, offset)
}

func (m *mockUnitStore) CountUnits(ctx context.Context, filter models.UnitFilter) (int64, error) {
	return m.countUnits(ctx, filter)
}

func (m *mockUnitStore) SearchUnits(ctx context.Context, text string, filter models.UnitFilter, limit int) ([]store.SearchResult, error) {
	return m.searchUnits(ctx, text, filter, limit)
}

func (m *mockUnitStore) UpdateUnit(ctx context.Context, unitID string, req models.UpdateUnitRequest) (*models.KnowledgeUnit, error) {
	return m.updateUnit(ctx, unitID, req)
}

func (m *mockUnitStore) DeleteUnit(ctx context.Context, unitID string) error {
	return m.deleteUnit(ctx, unitID)
}

func (m *mockUnitStore) IncrementViewCount(ctx context.Context, unitID string) error {
	return m.incrementViewCount(ctx, unitID)
}

func (m *mockUnitStore) BulkInsertUnits(ctx context.Context, units []models.KnowledgeUnit) ([]models.KnowledgeUnit, []store.BulkSkip, error) {
	return m.bulkInsertUnits(ctx, units)
}

type mockTripleStore struct {
	createTriple        func(ctx context.Context, triple models.SemanticTriple) (*models.SemanticTriple, error)
	getTriple           func(ctx context.Context, tripleID string) (*models.SemanticTriple, error)
	listTriples         func(ctx context.Context, filter models.TripleFilter, limit, offset int) ([]models.SemanticTriple, error)
	listTriplesForUnit  func(ctx context.Context, unitID, direction, relationType string, limit int) ([]models.SemanticTriple, error)
	countTriplesForUnit func(ctx context.Context, unitID string) (int64, int64, error)
	updateTriple        func(ctx context.Context, tripleID string, req models.UpdateTripleRequest) (*models.SemanticTriple, error)
	deleteTriple        func(ctx context.Context, tripleID string) error
	findPath            func(ctx context.Context, startID, endID string, maxDepth int) ([]models.PathStep, error)
	bulkInsertTriples   func(ctx context.Context, triples []models.SemanticTriple) ([]models.SemanticTriple, []store.BulkSkip, error)
}

func (m *mockTripleStore) CreateTriple(ctx context.Context, triple models.SemanticTriple) (*models.SemanticTriple, error) {
	return m.createTriple(ctx, triple)
}

func (m *mockTripleStore) GetTriple(ctx context.Context, tripleID string) (*models.SemanticTriple, error) {
	return m.getTriple(ctx, tripleID)
}

func (m *mockTripleStore) ListTriples(ctx context.Context, filter models.TripleFilter, limit, offset int) ([]models.SemanticTriple, error) {
	return m.listTriples(ctx, filter, limit, offset)
}

func (m *mockTripleStore) ListTriplesForUnit(ctx context.Context, unitID, direction, relationType string, limit int) ([]models.SemanticTriple, error) {
	return m.listTriplesForUnit(ctx, unitID, direction, relationType, limit)
}

func (m *mockTripleStore) CountTriplesForUnit(ctx context.Context, unitID string) (int64, int64, error) {
	return m.countTriplesForUnit(ctx, unitID)
}

func (m *mockTripleStore) UpdateTriple(ctx context.Context, tripleID string, req models.UpdateTripleRequest) (*models.SemanticTriple, error) {
	return m.updateTriple(ctx, tripleID, req)
}

func (m *mockTripleStore) DeleteTriple(ctx context.Context, tripleID string) error {
	return m.deleteTriple(ctx, tripleID)
}

func (m *mockTripleStore) FindPath(ctx context.Context, startID, endID string, maxDepth int) ([]models.PathStep, error) {
	return m.findPath(ctx, startID, endID, maxDepth)
}

func (m *mockTripleStore) BulkInsertTriples(ctx context.Context, triples []models.SemanticTriple) ([]models.SemanticTriple, []store.BulkSkip, error) {
	return m.bulkInsertTriples(ctx, triples)
}

type mockGraphStore struct {
	createGraph func(ctx context.Context, graph models.KnowledgeGraph) (*models.KnowledgeGraph, error)
	getGraph    func(ctx context.Context, graphID string) (*models.KnowledgeGraph, error)
	listGraphs  func(ctx context.Context, filter models.GraphFilter, limit, offset int) ([]models.KnowledgeGraph, error)
	countGraphs func(ctx context.Context, filter models.GraphFilter) (int64, error)
	updateGraph func(ctx context.Context, graphID string, req models.UpdateGraphRequest) (*models.KnowledgeGraph, error)
	deleteGraph func(ctx context.Context, graphID string) error
	addUnits    func(ctx context.Context, graphID string, unitIDs []string) (*models.KnowledgeGraph, int, error)
	addTriples  func(ctx context.Context, graphID string, tripleIDs []string) (*models.KnowledgeGraph, int, error)
	visualData  func(ctx context.Context, graphID string, rootIDs []string, maxDepth int) (*models.VisualData, error)
	stats       func(ctx context.Context, graphID string) (*models.GraphStats, error)
}

func (m *mockGraphStore) CreateGraph(ctx context.Context, graph models.KnowledgeGraph) (*models.KnowledgeGraph, error) {
	return m.createGraph(ctx, graph)
}

func (m *mockGraphStore) GetGraph(ctx context.Context, graphID string) (*models.KnowledgeGraph, error) {
	return m.getGraph(ctx, graphID)
}

func (m *mockGraphStore) ListGraphs(ctx context.Context, filter models.GraphFilter, limit, offset int) ([]models.KnowledgeGraph, error) {
	return m.listGraphs(ctx, filter, limit, offset)
}

func (m *mockGraphStore) CountGraphs(ctx context.Context, filter models.GraphFilter) (int64, error) {
	return m.countGraphs(ctx, filter)
}

func (m *mockGraphStore) UpdateGraph(ctx context.Context, graphID string, req models.UpdateGraphRequest) (*models.KnowledgeGraph, error) {
	return m.updateGraph(ctx, graphID, req)
}

func (m *mockGraphStore) DeleteGraph(ctx context.Context, graphID string) error {
	return m.deleteGraph(ctx, graphID)
}

func (m *mockGraphStore) AddUnits(ctx context.Context, graphID string, unitIDs []string) (*models.KnowledgeGraph, int, error) {
	return m.addUnits(ctx, graphID, unitIDs)
}

func (m *mockGraphStore) AddTriples(ctx context.Context, graphID string, tripleIDs []string) (*models.KnowledgeGraph, int, error) {
	return m.addTriples(ctx, graphID, tripleIDs)
}

func (m *mockGraphStore) VisualData(ctx context.Context, graphID string, rootIDs []string, maxDepth int) (*models.VisualData, error) {
	return m.visualData(ctx, graphID, rootIDs, maxDepth)
}

func (m *mockGraphStore) Stats(ctx context.Context, graphID string) (*models.GraphStats, error) {
	return m.stats(ctx, graphID)
}

type mockEventSink struct {
	events []string
}

func (m *mockEventSink) Publish(eventType string, _ any) {
	m.events = append(m.events, eventType)
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}
