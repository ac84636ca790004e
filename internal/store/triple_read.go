package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/graphein/graphein/internal/models"
)

const defaultTripleLimit = 100

// GetTriple fetches a triple by id.
func (s *TripleStore) GetTriple(ctx context.Context, tripleID string) (*models.SemanticTriple, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx,
		"SELECT "+tripleColumns+" FROM kg_triples WHERE id = $1", tripleID)

	t, err := scanTriple(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrTripleNotFound
		}

		return nil, fmt.Errorf("scanning triple: %w", err)
	}

	return t, nil
}

// tripleFilterClauses renders the WHERE conditions for a TripleFilter.
func tripleFilterClauses(filter models.TripleFilter) ([]string, []any) {
	clauses := make([]string, 0, 4)
	args := make([]any, 0, 4)

	add := func(clause string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.SubjectID != "" {
		add("subject_id = $%d", filter.SubjectID)
	}

	if filter.ObjectID != "" {
		add("object_id = $%d", filter.ObjectID)
	}

	if filter.RelationType != "" {
		add("relation_type = $%d", filter.RelationType)
	}

	if filter.SourceID != "" {
		add("source_id = $%d", filter.SourceID)
	}

	return clauses, args
}

// ListTriples returns triples matching the filter, newest first.
func (s *TripleStore) ListTriples(ctx context.Context, filter models.TripleFilter, limit, offset int) ([]models.SemanticTriple, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	clauses, args := tripleFilterClauses(filter)

	query := "SELECT " + tripleColumns + " FROM kg_triples"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		len(args)+1, len(args)+2)
	args = append(args, clampLimit(limit, defaultTripleLimit), max(offset, 0))

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying triples: %w", err)
	}
	defer rows.Close()

	return collectTriples(rows)
}

// ListTriplesForUnit returns triples touching the unit, restricted by
// direction and optionally relation type.
func (s *TripleStore) ListTriplesForUnit(ctx context.Context, unitID, direction, relationType string, limit int) ([]models.SemanticTriple, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var directionClause string

	switch direction {
	case models.DirectionOutgoing:
		directionClause = "subject_id = $1"
	case models.DirectionIncoming:
		directionClause = "object_id = $1"
	default:
		directionClause = "(subject_id = $1 OR object_id = $1)"
	}

	query := "SELECT " + tripleColumns + " FROM kg_triples WHERE " + directionClause
	args := []any{unitID}

	if relationType != "" {
		args = append(args, relationType)
		query += fmt.Sprintf(" AND relation_type = $%d", len(args))
	}

	args = append(args, clampLimit(limit, defaultTripleLimit))
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying unit triples: %w", err)
	}
	defer rows.Close()

	return collectTriples(rows)
}

// CountTriplesForUnit returns the outgoing and incoming triple counts for a
// unit as stored in kg_triples, not the denormalized unit counters.
func (s *TripleStore) CountTriplesForUnit(ctx context.Context, unitID string) (outgoing, incoming int64, err error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	err = s.Pool.QueryRow(ctx,
		`SELECT
			COUNT(*) FILTER (WHERE subject_id = $1),
			COUNT(*) FILTER (WHERE object_id = $1)
		FROM kg_triples
		WHERE subject_id = $1 OR object_id = $1`,
		unitID).Scan(&outgoing, &incoming)
	if err != nil {
		return 0, 0, fmt.Errorf("counting unit triples: %w", err)
	}

	return outgoing, incoming, nil
}

// CountTriples returns the number of triples matching the filter.
func (s *TripleStore) CountTriples(ctx context.Context, filter models.TripleFilter) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	clauses, args := tripleFilterClauses(filter)

	query := "SELECT COUNT(*) FROM kg_triples"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	var count int64
	if err := s.Pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting triples: %w", err)
	}

	return count, nil
}

// GetTriplesByIDs fetches a batch of triples by id. Missing ids are skipped.
func (s *TripleStore) GetTriplesByIDs(ctx context.Context, ids []string) ([]models.SemanticTriple, error) {
	if len(ids) == 0 {
		return []models.SemanticTriple{}, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx,
		"SELECT "+tripleColumns+" FROM kg_triples WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, fmt.Errorf("querying triples by ids: %w", err)
	}
	defer rows.Close()

	return collectTriples(rows)
}
