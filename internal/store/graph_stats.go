package store

import (
	"context"
	"fmt"

	"github.com/graphein/graphein/internal/models"
)

// Stats aggregates a graph's statistics grouped by unit type, relation type
// and knowledge domain, restricted to the graph's included sets.
func (s *GraphStore) Stats(ctx context.Context, graphID string) (*models.GraphStats, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	graph, err := s.GetGraph(ctx, graphID)
	if err != nil {
		return nil, err
	}

	stats := &models.GraphStats{
		TotalUnits:   len(graph.IncludedUnits),
		TotalTriples: len(graph.IncludedTriples),
		CreatedAt:    graph.CreatedAt,
		UpdatedAt:    graph.UpdatedAt,
	}

	stats.UnitTypes, err = s.groupCounts(ctx,
		"SELECT unit_type, COUNT(*) FROM kg_units WHERE id = ANY($1) GROUP BY unit_type ORDER BY COUNT(*) DESC",
		graph.IncludedUnits)
	if err != nil {
		return nil, fmt.Errorf("grouping unit types: %w", err)
	}

	stats.RelationTypes, err = s.groupCounts(ctx,
		"SELECT relation_type, COUNT(*) FROM kg_triples WHERE id = ANY($1) GROUP BY relation_type ORDER BY COUNT(*) DESC",
		graph.IncludedTriples)
	if err != nil {
		return nil, fmt.Errorf("grouping relation types: %w", err)
	}

	stats.Domains, err = s.groupCounts(ctx,
		"SELECT domain, COUNT(*) FROM kg_units WHERE id = ANY($1) AND domain <> '' GROUP BY domain ORDER BY COUNT(*) DESC",
		graph.IncludedUnits)
	if err != nil {
		return nil, fmt.Errorf("grouping domains: %w", err)
	}

	return stats, nil
}

// groupCounts runs a two-column GROUP BY query and collects the buckets.
func (s *GraphStore) groupCounts(ctx context.Context, query string, ids []string) ([]models.TypeCount, error) {
	if len(ids) == 0 {
		return []models.TypeCount{}, nil
	}

	rows, err := s.Pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make([]models.TypeCount, 0, 8)

	for rows.Next() {
		var tc models.TypeCount
		if err := rows.Scan(&tc.Type, &tc.Count); err != nil {
			return nil, err
		}

		counts = append(counts, tc)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}
