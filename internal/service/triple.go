package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/graphein/graphein/internal/models"
	"github.com/graphein/graphein/internal/store"
)

// TripleService handles semantic triple operations.
type TripleService struct {
	store  TripleStore
	events EventSink
	log    *logrus.Logger
}

// NewTripleService creates a TripleService. events may be nil.
func NewTripleService(s TripleStore, events EventSink, log *logrus.Logger) *TripleService {
	return &TripleService{store: s, events: events, log: log}
}

// Create validates and stores a triple. Relation counters on both endpoints
// move with it.
func (s *TripleService) Create(ctx context.Context, triple models.SemanticTriple) (*models.SemanticTriple, error) {
	created, err := s.store.CreateTriple(ctx, triple)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"triple_id": created.ID,
		"subject":   created.SubjectID,
		"predicate": created.Predicate,
		"object":    created.ObjectID,
	}).Info("triple created")

	publish(s.events, "triple.created", created)

	return created, nil
}

// Get fetches a triple by id.
func (s *TripleService) Get(ctx context.Context, tripleID string) (*models.SemanticTriple, error) {
	return s.store.GetTriple(ctx, tripleID)
}

// List returns triples matching the filter.
func (s *TripleService) List(ctx context.Context, filter models.TripleFilter, limit, offset int) ([]models.SemanticTriple, error) {
	return s.store.ListTriples(ctx, filter, limit, offset)
}

// ListForUnit returns the triples touching a unit, filtered by direction and
// relation type.
func (s *TripleService) ListForUnit(ctx context.Context, unitID, direction, relationType string, limit int) ([]models.SemanticTriple, error) {
	return s.store.ListTriplesForUnit(ctx, unitID, direction, relationType, limit)
}

// CountForUnit returns a unit's actual triple counts from the triple table.
func (s *TripleService) CountForUnit(ctx context.Context, unitID string) (outgoing, incoming int64, err error) {
	return s.store.CountTriplesForUnit(ctx, unitID)
}

// Update applies a partial update to a triple's annotations.
func (s *TripleService) Update(ctx context.Context, tripleID string, req models.UpdateTripleRequest) (*models.SemanticTriple, error) {
	updated, err := s.store.UpdateTriple(ctx, tripleID, req)
	if err != nil {
		return nil, err
	}

	publish(s.events, "triple.updated", updated)

	return updated, nil
}

// Delete removes a triple and rolls its endpoint counters back.
func (s *TripleService) Delete(ctx context.Context, tripleID string) error {
	if err := s.store.DeleteTriple(ctx, tripleID); err != nil {
		return err
	}

	s.log.WithField("triple_id", tripleID).Info("triple deleted")
	publish(s.events, "triple.deleted", map[string]string{"id": tripleID})

	return nil
}

// FindPath searches for a relation path between two units. A nil result
// means no path exists within the depth bound.
func (s *TripleService) FindPath(ctx context.Context, startID, endID string, maxDepth int) ([]models.PathStep, error) {
	return s.store.FindPath(ctx, startID, endID, maxDepth)
}

// BulkCreate stores a batch of triples with per-row skip semantics.
func (s *TripleService) BulkCreate(ctx context.Context, triples []models.SemanticTriple) ([]models.SemanticTriple, []store.BulkSkip, error) {
	return s.store.BulkInsertTriples(ctx, triples)
}
