package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/graphein/graphein/internal/models"
)

// TripleStore provides semantic triple CRUD operations.
type TripleStore struct {
	Base
}

// NewTripleStore creates a new TripleStore.
func NewTripleStore(base Base) *TripleStore {
	return &TripleStore{Base: base}
}

// CreateTriple inserts a triple and bumps the endpoint relation counters in
// the same transaction. A (subject, predicate, object) collision yields a
// *models.DuplicateError carrying the existing triple id.
func (s *TripleStore) CreateTriple(ctx context.Context, triple models.SemanticTriple) (*models.SemanticTriple, error) {
	if err := triple.Validate(); err != nil {
		return nil, err
	}

	triple.Normalize()

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating triple: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	var endpointCount int

	err = tx.QueryRow(ctx,
		"SELECT COUNT(*) FROM kg_units WHERE id = ANY($1)",
		[]string{triple.SubjectID, triple.ObjectID}).Scan(&endpointCount)
	if err != nil {
		return nil, fmt.Errorf("checking triple endpoints: %w", err)
	}

	if endpointCount != 2 {
		return nil, models.ErrUnitNotFound
	}

	var existingID string

	err = tx.QueryRow(ctx,
		"SELECT id FROM kg_triples WHERE subject_id = $1 AND predicate = $2 AND object_id = $3",
		triple.SubjectID, triple.Predicate, triple.ObjectID).Scan(&existingID)
	if err == nil {
		return nil, &models.DuplicateError{Entity: "triple", ExistingID: existingID}
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("checking triple uniqueness: %w", err)
	}

	if triple.ID == "" {
		triple.ID = uuid.New().String()
	}

	metaJSON, err := marshalMap(triple.Metadata)
	if err != nil {
		return nil, fmt.Errorf("preparing triple metadata: %w", err)
	}

	propsJSON, err := marshalMap(triple.Properties)
	if err != nil {
		return nil, fmt.Errorf("preparing triple properties: %w", err)
	}

	row := tx.QueryRow(ctx,
		`INSERT INTO kg_triples (
			id, subject_id, predicate, object_id, relation_type,
			confidence, bidirectional, context, source_id, metadata, properties)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+tripleColumns,
		triple.ID, triple.SubjectID, triple.Predicate, triple.ObjectID,
		triple.RelationType, triple.Confidence, triple.Bidirectional,
		triple.Context, triple.SourceID, metaJSON, propsJSON,
	)

	created, err := scanTriple(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("scanning created triple: %w", err)
	}

	if err := adjustRelationCounts(ctx, tx, created.SubjectID, created.ObjectID, 1); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing create triple: %w", err)
	}

	return created, nil
}

// adjustRelationCounts applies delta to the subject's outgoing and the
// object's incoming counters within tx.
func adjustRelationCounts(ctx context.Context, tx pgx.Tx, subjectID, objectID string, delta int) error {
	_, err := tx.Exec(ctx,
		"UPDATE kg_units SET outgoing_relations = outgoing_relations + $2 WHERE id = $1",
		subjectID, delta)
	if err != nil {
		return fmt.Errorf("adjusting outgoing count: %w", err)
	}

	_, err = tx.Exec(ctx,
		"UPDATE kg_units SET incoming_relations = incoming_relations + $2 WHERE id = $1",
		objectID, delta)
	if err != nil {
		return fmt.Errorf("adjusting incoming count: %w", err)
	}

	return nil
}

// UpdateTriple applies a partial update. Subject, object and predicate are
// immutable; only annotation fields change.
func (s *TripleStore) UpdateTriple(ctx context.Context, tripleID string, req models.UpdateTripleRequest) (*models.SemanticTriple, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	setClauses := make([]string, 0, 5)
	args := make([]any, 0, 6)

	addClause := func(clause string, value any) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf(clause, len(args)))
	}

	if req.RelationType != nil {
		addClause("relation_type = $%d", *req.RelationType)
	}

	if req.Confidence != nil {
		addClause("confidence = $%d", *req.Confidence)
	}

	if req.Context != nil {
		addClause("context = $%d", *req.Context)
	}

	if req.Metadata != nil {
		metaJSON, err := marshalMap(req.Metadata)
		if err != nil {
			return nil, fmt.Errorf("preparing triple metadata: %w", err)
		}

		addClause("metadata = metadata || $%d", metaJSON)
	}

	if req.Properties != nil {
		propsJSON, err := marshalMap(req.Properties)
		if err != nil {
			return nil, fmt.Errorf("preparing triple properties: %w", err)
		}

		addClause("properties = properties || $%d", propsJSON)
	}

	if len(setClauses) == 0 {
		return s.GetTriple(ctx, tripleID)
	}

	setClauses = append(setClauses, "updated_at = now()")
	args = append(args, tripleID)

	query := fmt.Sprintf(
		"UPDATE kg_triples SET %s WHERE id = $%d RETURNING %s",
		strings.Join(setClauses, ", "), len(args), tripleColumns,
	)

	row := s.Pool.QueryRow(ctx, query, args...)

	t, err := scanTriple(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrTripleNotFound
		}

		return nil, fmt.Errorf("scanning updated triple: %w", err)
	}

	return t, nil
}

// DeleteTriple removes a triple and decrements the endpoint relation
// counters in the same transaction.
func (s *TripleStore) DeleteTriple(ctx context.Context, tripleID string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return fmt.Errorf("deleting triple: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	var subjectID, objectID string

	err = tx.QueryRow(ctx,
		"DELETE FROM kg_triples WHERE id = $1 RETURNING subject_id, object_id",
		tripleID).Scan(&subjectID, &objectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrTripleNotFound
		}

		return fmt.Errorf("executing triple delete: %w", err)
	}

	if err := adjustRelationCounts(ctx, tx, subjectID, objectID, -1); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing delete triple: %w", err)
	}

	return nil
}
