package store

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/graphein/graphein/internal/models"
)

// BulkSkip records one row skipped during a bulk insert.
type BulkSkip struct {
	Index      int    `json:"index"`
	Reason     string `json:"reason"`
	ExistingID string `json:"existing_id,omitempty"`
}

// BulkInsertUnits inserts units one at a time, skipping rows that fail
// instead of aborting the batch. Duplicate canonical names are reported with
// the existing unit's id so callers can remap references.
func (s *UnitStore) BulkInsertUnits(ctx context.Context, units []models.KnowledgeUnit) ([]models.KnowledgeUnit, []BulkSkip, error) {
	created := make([]models.KnowledgeUnit, 0, len(units))
	skipped := make([]BulkSkip, 0)

	for i, unit := range units {
		if err := ctx.Err(); err != nil {
			return created, skipped, err
		}

		u, err := s.CreateUnit(ctx, unit)
		if err != nil {
			skip := BulkSkip{Index: i, Reason: err.Error()}

			var dup *models.DuplicateError
			if errors.As(err, &dup) {
				skip.ExistingID = dup.ExistingID
			}

			skipped = append(skipped, skip)

			s.Log.WithFields(logrus.Fields{
				"index": i,
				"title": unit.Title,
				"error": err.Error(),
			}).Warn("bulk unit insert skipped row")

			continue
		}

		created = append(created, *u)
	}

	return created, skipped, nil
}

// BulkInsertTriples inserts triples one at a time with the same
// skip-on-failure behavior as BulkInsertUnits.
func (s *TripleStore) BulkInsertTriples(ctx context.Context, triples []models.SemanticTriple) ([]models.SemanticTriple, []BulkSkip, error) {
	created := make([]models.SemanticTriple, 0, len(triples))
	skipped := make([]BulkSkip, 0)

	for i, triple := range triples {
		if err := ctx.Err(); err != nil {
			return created, skipped, err
		}

		t, err := s.CreateTriple(ctx, triple)
		if err != nil {
			skip := BulkSkip{Index: i, Reason: err.Error()}

			var dup *models.DuplicateError
			if errors.As(err, &dup) {
				skip.ExistingID = dup.ExistingID
			}

			skipped = append(skipped, skip)

			s.Log.WithFields(logrus.Fields{
				"index":     i,
				"predicate": triple.Predicate,
				"error":     err.Error(),
			}).Warn("bulk triple insert skipped row")

			continue
		}

		created = append(created, *t)
	}

	return created, skipped, nil
}
