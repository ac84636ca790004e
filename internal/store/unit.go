package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/graphein/graphein/internal/models"
)

// UnitStore provides knowledge unit CRUD operations.
type UnitStore struct {
	Base
}

// NewUnitStore creates a new UnitStore.
func NewUnitStore(base Base) *UnitStore {
	return &UnitStore{Base: base}
}

// CreateUnit inserts a new unit and returns the created record. A canonical
// name collision yields a *models.DuplicateError carrying the existing id.
func (s *UnitStore) CreateUnit(ctx context.Context, unit models.KnowledgeUnit) (*models.KnowledgeUnit, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating unit: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	var existingID string

	err = tx.QueryRow(ctx,
		"SELECT id FROM kg_units WHERE canonical_name = $1",
		unit.CanonicalName).Scan(&existingID)
	if err == nil {
		return nil, &models.DuplicateError{Entity: "unit", ExistingID: existingID}
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("checking canonical name: %w", err)
	}

	created, err := insertUnit(ctx, tx, unit)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, &models.DuplicateError{Entity: "unit", ExistingID: existingID}
		}

		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing create unit: %w", err)
	}

	return created, nil
}

// insertUnit runs the INSERT for one unit inside an existing transaction.
func insertUnit(ctx context.Context, tx pgx.Tx, unit models.KnowledgeUnit) (*models.KnowledgeUnit, error) {
	if unit.ID == "" {
		unit.ID = uuid.New().String()
	}

	sourceJSON, err := marshalMap(map[string]any{
		"file_id":   unit.Source.FileID,
		"file_name": unit.Source.FileName,
		"import_id": unit.Source.ImportID,
		"position":  unit.Source.Position,
		"section":   unit.Source.Section,
	})
	if err != nil {
		return nil, fmt.Errorf("preparing unit source: %w", err)
	}

	propsJSON, err := marshalMap(unit.Knowledge.Properties)
	if err != nil {
		return nil, fmt.Errorf("preparing unit properties: %w", err)
	}

	metaJSON, err := marshalMap(unit.Metadata)
	if err != nil {
		return nil, fmt.Errorf("preparing unit metadata: %w", err)
	}

	query := `INSERT INTO kg_units (
			id, title, content, unit_type, canonical_name, aliases, aliases_text,
			tags, source, state, is_duplicate, validation,
			domain, entity_type, importance, abstraction_level, properties,
			confidence, completeness, created_by, merged_units, parent_units, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
		RETURNING ` + unitColumns

	row := tx.QueryRow(ctx, query,
		unit.ID, unit.Title, unit.Content, unit.UnitType, unit.CanonicalName,
		emptyIfNil(unit.Aliases), joinAliases(unit.Aliases),
		emptyIfNil(unit.Tags), sourceJSON,
		unit.Status.State, unit.Status.IsDuplicate, unit.Status.Validation,
		unit.Knowledge.Domain, unit.Knowledge.EntityType,
		unit.Knowledge.Importance, unit.Knowledge.AbstractionLevel, propsJSON,
		unit.Metrics.Confidence, unit.Metrics.Completeness,
		unit.CreatedBy, emptyIfNil(unit.MergedUnits), emptyIfNil(unit.ParentUnits), metaJSON,
	)

	created, err := scanUnit(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("scanning created unit: %w", err)
	}

	return created, nil
}

// buildUnitUpdateQuery constructs the SET clause and arguments for UpdateUnit.
func buildUnitUpdateQuery(unitID string, req models.UpdateUnitRequest) (string, []any, error) {
	setClauses := make([]string, 0, 8)
	args := make([]any, 0, 10)
	argIdx := 1

	addClause := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if req.Title != nil {
		addClause("title", *req.Title)
	}

	if req.Content != nil {
		addClause("content", *req.Content)
	}

	if req.UnitType != nil {
		addClause("unit_type", *req.UnitType)
	}

	if req.Aliases != nil {
		addClause("aliases", req.Aliases)
		addClause("aliases_text", joinAliases(req.Aliases))
	}

	if req.Tags != nil {
		addClause("tags", req.Tags)
	}

	if req.Status != nil {
		addClause("state", req.Status.State)
		addClause("is_duplicate", req.Status.IsDuplicate)
		addClause("validation", req.Status.Validation)
	}

	if req.Knowledge != nil {
		addClause("domain", req.Knowledge.Domain)
		addClause("entity_type", req.Knowledge.EntityType)
		addClause("importance", req.Knowledge.Importance)
		addClause("abstraction_level", req.Knowledge.AbstractionLevel)

		propsJSON, err := marshalMap(req.Knowledge.Properties)
		if err != nil {
			return "", nil, fmt.Errorf("preparing unit properties: %w", err)
		}

		addClause("properties", propsJSON)
	}

	if req.Metadata != nil {
		metaJSON, err := marshalMap(req.Metadata)
		if err != nil {
			return "", nil, fmt.Errorf("preparing unit metadata: %w", err)
		}

		// Merge-patch semantics: existing keys survive unless overwritten.
		setClauses = append(setClauses, fmt.Sprintf("metadata = metadata || $%d", argIdx))
		args = append(args, metaJSON)
		argIdx++
	}

	if req.Merged != nil {
		addClause("merged_units", req.Merged)
	}

	if req.MergedInto != nil {
		setClauses = append(setClauses, fmt.Sprintf("metadata = metadata || jsonb_build_object('merged_into', $%d::text)", argIdx))
		args = append(args, *req.MergedInto)
		argIdx++
	}

	if len(setClauses) == 0 {
		return "", nil, nil
	}

	setClauses = append(setClauses, "updated_at = now()")

	query := fmt.Sprintf(
		"UPDATE kg_units SET %s WHERE id = $%d RETURNING %s",
		strings.Join(setClauses, ", "), argIdx, unitColumns,
	)
	args = append(args, unitID)

	return query, args, nil
}

// UpdateUnit applies a partial update and returns the refreshed record.
func (s *UnitStore) UpdateUnit(ctx context.Context, unitID string, req models.UpdateUnitRequest) (*models.KnowledgeUnit, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query, args, err := buildUnitUpdateQuery(unitID, req)
	if err != nil {
		return nil, err
	}

	if query == "" {
		return s.GetUnit(ctx, unitID)
	}

	row := s.Pool.QueryRow(ctx, query, args...)

	u, err := scanUnit(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrUnitNotFound
		}

		return nil, fmt.Errorf("scanning updated unit: %w", err)
	}

	return u, nil
}

// DeleteUnit removes a unit by id. Its triples are removed by the foreign
// key cascade, so the surviving endpoints' relation counters are decremented
// in the same transaction before the row goes away.
func (s *UnitStore) DeleteUnit(ctx context.Context, unitID string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return fmt.Errorf("deleting unit: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	_, err = tx.Exec(ctx,
		`UPDATE kg_units u
		 SET incoming_relations = incoming_relations - c.n, updated_at = now()
		 FROM (SELECT object_id, COUNT(*) AS n FROM kg_triples
		       WHERE subject_id = $1 AND object_id <> $1
		       GROUP BY object_id) c
		 WHERE u.id = c.object_id`, unitID)
	if err != nil {
		return fmt.Errorf("decrementing incoming counts: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE kg_units u
		 SET outgoing_relations = outgoing_relations - c.n, updated_at = now()
		 FROM (SELECT subject_id, COUNT(*) AS n FROM kg_triples
		       WHERE object_id = $1 AND subject_id <> $1
		       GROUP BY subject_id) c
		 WHERE u.id = c.subject_id`, unitID)
	if err != nil {
		return fmt.Errorf("decrementing outgoing counts: %w", err)
	}

	tag, err := tx.Exec(ctx, "DELETE FROM kg_units WHERE id = $1", unitID)
	if err != nil {
		return fmt.Errorf("executing unit delete: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return models.ErrUnitNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing delete unit: %w", err)
	}

	return nil
}

// IncrementViewCount bumps a unit's view counter atomically. Callers treat
// this as best-effort; a missing row is not an error.
func (s *UnitStore) IncrementViewCount(ctx context.Context, unitID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := s.Pool.Exec(ctx,
		"UPDATE kg_units SET view_count = view_count + 1 WHERE id = $1", unitID)
	if err != nil {
		return fmt.Errorf("incrementing view count: %w", err)
	}

	return nil
}
