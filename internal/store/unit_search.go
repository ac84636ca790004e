package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/graphein/graphein/internal/models"
)

const defaultSearchLimit = 20

// SearchResult pairs a unit with its full-text relevance score.
type SearchResult struct {
	Unit  models.KnowledgeUnit `json:"unit"`
	Score float64              `json:"score"`
}

// SearchUnits runs a weighted full-text search over title, canonical name,
// aliases and content. Results are ordered by rank descending.
func (s *UnitStore) SearchUnits(ctx context.Context, text string, filter models.UnitFilter, limit int) ([]SearchResult, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	clauses, args := unitFilterClauses(filter)

	args = append(args, text)
	tsq := fmt.Sprintf("plainto_tsquery('simple', $%d)", len(args))
	clauses = append(clauses, "search_tsv @@ "+tsq)

	query := fmt.Sprintf(
		"SELECT %s, ts_rank(search_tsv, %s) AS score FROM kg_units WHERE %s ORDER BY score DESC LIMIT $%d",
		unitColumns, tsq, strings.Join(clauses, " AND "), len(args)+1,
	)
	args = append(args, clampLimit(limit, defaultSearchLimit))

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching units: %w", err)
	}
	defer rows.Close()

	results := make([]SearchResult, 0, limit)

	for rows.Next() {
		var score float64

		u, err := scanUnit(func(dest ...any) error {
			return rows.Scan(append(dest, &score)...)
		})
		if err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}

		results = append(results, SearchResult{Unit: *u, Score: score})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search results: %w", err)
	}

	return results, nil
}
