package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/graphein/graphein/internal/models"
	"github.com/graphein/graphein/internal/store"
)

// UnitService handles knowledge unit operations.
type UnitService struct {
	store  UnitStore
	events EventSink
	log    *logrus.Logger
}

// NewUnitService creates a UnitService. events may be nil.
func NewUnitService(s UnitStore, events EventSink, log *logrus.Logger) *UnitService {
	return &UnitService{store: s, events: events, log: log}
}

// Create validates, normalizes and stores a unit.
func (s *UnitService) Create(ctx context.Context, unit models.KnowledgeUnit) (*models.KnowledgeUnit, error) {
	if err := unit.Validate(); err != nil {
		return nil, err
	}

	unit.Normalize(time.Now())

	created, err := s.store.CreateUnit(ctx, unit)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"unit_id":        created.ID,
		"canonical_name": created.CanonicalName,
		"unit_type":      created.UnitType,
	}).Info("unit created")

	publish(s.events, "unit.created", created)

	return created, nil
}

// Get fetches a unit and bumps its view counter in the background. The bump
// is best-effort: its failure is logged and never surfaces to the caller.
func (s *UnitService) Get(ctx context.Context, unitID string) (*models.KnowledgeUnit, error) {
	unit, err := s.store.GetUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}

	go func() {
		bumpCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.store.IncrementViewCount(bumpCtx, unitID); err != nil {
			s.log.WithFields(logrus.Fields{
				"unit_id": unitID,
				"error":   err.Error(),
			}).Debug("view count bump failed")
		}
	}()

	return unit, nil
}

// GetByCanonicalName fetches a unit by slug.
func (s *UnitService) GetByCanonicalName(ctx context.Context, name string) (*models.KnowledgeUnit, error) {
	return s.store.GetUnitByCanonicalName(ctx, name)
}

// List returns units matching the filter plus the total match count.
func (s *UnitService) List(ctx context.Context, filter models.UnitFilter, limit, offset int) ([]models.KnowledgeUnit, int64, error) {
	units, err := s.store.ListUnits(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.store.CountUnits(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return units, total, nil
}

// Search runs full-text search over units.
func (s *UnitService) Search(ctx context.Context, text string, filter models.UnitFilter, limit int) ([]store.SearchResult, error) {
	return s.store.SearchUnits(ctx, text, filter, limit)
}

// Update applies a partial update.
func (s *UnitService) Update(ctx context.Context, unitID string, req models.UpdateUnitRequest) (*models.KnowledgeUnit, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateUnit(ctx, unitID, req)
	if err != nil {
		return nil, err
	}

	publish(s.events, "unit.updated", updated)

	return updated, nil
}

// Delete removes a unit. Its triples cascade in the store.
func (s *UnitService) Delete(ctx context.Context, unitID string) error {
	if err := s.store.DeleteUnit(ctx, unitID); err != nil {
		return err
	}

	s.log.WithField("unit_id", unitID).Info("unit deleted")
	publish(s.events, "unit.deleted", map[string]string{"id": unitID})

	return nil
}

// Merge folds the source units into the target: their content is appended,
// tags and aliases are unioned, the sources are marked merged and point back
// at the target. Relations of the sources are left in place.
func (s *UnitService) Merge(ctx context.Context, targetID string, sourceIDs []string) (*models.KnowledgeUnit, error) {
	if len(sourceIDs) == 0 {
		return s.store.GetUnit(ctx, targetID)
	}

	target, err := s.store.GetUnit(ctx, targetID)
	if err != nil {
		return nil, err
	}

	content := target.Content
	tags := target.Tags
	aliases := target.Aliases
	merged := target.MergedUnits

	for _, srcID := range sourceIDs {
		if srcID == targetID {
			return nil, fmt.Errorf("cannot merge unit %s into itself: %w", targetID, models.ErrSelfReference)
		}

		src, err := s.store.GetUnit(ctx, srcID)
		if err != nil {
			return nil, fmt.Errorf("loading merge source %s: %w", srcID, err)
		}

		if src.Content != "" {
			content = content + "\n\n" + src.Content
		}

		tags = unionStrings(tags, src.Tags)
		aliases = unionStrings(aliases, append(src.Aliases, src.Title))
		merged = unionStrings(merged, []string{srcID})
	}

	mergedState := models.StateMerged

	for _, srcID := range sourceIDs {
		_, err := s.store.UpdateUnit(ctx, srcID, models.UpdateUnitRequest{
			Status: &models.UnitStatus{
				State:       mergedState,
				IsDuplicate: true,
				Validation:  "validated",
			},
			MergedInto: &targetID,
		})
		if err != nil {
			return nil, fmt.Errorf("marking merge source %s: %w", srcID, err)
		}
	}

	updated, err := s.store.UpdateUnit(ctx, targetID, models.UpdateUnitRequest{
		Content: &content,
		Tags:    tags,
		Aliases: aliases,
		Merged:  merged,
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"target_id": targetID,
		"sources":   len(sourceIDs),
	}).Info("units merged")

	publish(s.events, "unit.merged", updated)

	return updated, nil
}

// BulkCreate normalizes and stores a batch of units with per-row skip
// semantics.
func (s *UnitService) BulkCreate(ctx context.Context, units []models.KnowledgeUnit) ([]models.KnowledgeUnit, []store.BulkSkip, error) {
	now := time.Now()

	for i := range units {
		if err := units[i].Validate(); err != nil {
			return nil, nil, fmt.Errorf("unit %d: %w", i, err)
		}

		units[i].Normalize(now)
	}

	return s.store.BulkInsertUnits(ctx, units)
}

// unionStrings appends the members of b missing from a.
func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a))
	for _, s := range a {
		seen[s] = true
	}

	out := a

	for _, s := range b {
		if s == "" || seen[s] {
			continue
		}

		seen[s] = true
		out = append(out, s)
	}

	return out
}
