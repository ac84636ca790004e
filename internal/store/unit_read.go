package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/graphein/graphein/internal/models"
)

const defaultUnitLimit = 100

// GetUnit fetches a unit by id.
func (s *UnitStore) GetUnit(ctx context.Context, unitID string) (*models.KnowledgeUnit, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx,
		"SELECT "+unitColumns+" FROM kg_units WHERE id = $1", unitID)

	u, err := scanUnit(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrUnitNotFound
		}

		return nil, fmt.Errorf("scanning unit: %w", err)
	}

	return u, nil
}

// GetUnitByCanonicalName fetches a unit by its canonical name.
func (s *UnitStore) GetUnitByCanonicalName(ctx context.Context, name string) (*models.KnowledgeUnit, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx,
		"SELECT "+unitColumns+" FROM kg_units WHERE canonical_name = $1", name)

	u, err := scanUnit(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrUnitNotFound
		}

		return nil, fmt.Errorf("scanning unit: %w", err)
	}

	return u, nil
}

// unitFilterClauses renders the WHERE conditions for a UnitFilter. The
// returned args start at placeholder $1.
func unitFilterClauses(filter models.UnitFilter) ([]string, []any) {
	clauses := make([]string, 0, 5)
	args := make([]any, 0, 5)

	add := func(clause string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.UnitType != "" {
		add("unit_type = $%d", filter.UnitType)
	}

	if filter.State != "" {
		add("state = $%d", filter.State)
	}

	if filter.Tag != "" {
		add("$%d = ANY(tags)", filter.Tag)
	}

	if filter.ImportID != "" {
		add("source->>'import_id' = $%d", filter.ImportID)
	}

	if filter.Domain != "" {
		add("domain = $%d", filter.Domain)
	}

	return clauses, args
}

// ListUnits returns units matching the filter, newest first.
func (s *UnitStore) ListUnits(ctx context.Context, filter models.UnitFilter, limit, offset int) ([]models.KnowledgeUnit, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	clauses, args := unitFilterClauses(filter)

	query := "SELECT " + unitColumns + " FROM kg_units"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		len(args)+1, len(args)+2)
	args = append(args, clampLimit(limit, defaultUnitLimit), max(offset, 0))

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying units: %w", err)
	}
	defer rows.Close()

	return collectUnits(rows)
}

// CountUnits returns the number of units matching the filter.
func (s *UnitStore) CountUnits(ctx context.Context, filter models.UnitFilter) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	clauses, args := unitFilterClauses(filter)

	query := "SELECT COUNT(*) FROM kg_units"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	var count int64
	if err := s.Pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting units: %w", err)
	}

	return count, nil
}

// GetUnitsByIDs fetches a batch of units by id. Missing ids are skipped.
func (s *UnitStore) GetUnitsByIDs(ctx context.Context, ids []string) ([]models.KnowledgeUnit, error) {
	if len(ids) == 0 {
		return []models.KnowledgeUnit{}, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx,
		"SELECT "+unitColumns+" FROM kg_units WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, fmt.Errorf("querying units by ids: %w", err)
	}
	defer rows.Close()

	return collectUnits(rows)
}
