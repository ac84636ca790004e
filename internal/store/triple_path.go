package store

import (
	"context"
	"fmt"

	"github.com/graphein/graphein/internal/models"
)

const (
	// defaultPathDepth bounds FindPath when the caller passes no depth.
	defaultPathDepth = 3
	// maxPathDepth is the hard ceiling regardless of the requested depth.
	maxPathDepth = 10
	// pathNeighborLimit caps how many triples are fetched per direction
	// when expanding a single unit.
	pathNeighborLimit = 100
)

// pathVisit records how a unit was reached during the search.
type pathVisit struct {
	parent   string
	tripleID string
	// direction the triple was crossed in, from the parent's point of view.
	direction string
}

// FindPath runs a breadth-first search from startID to endID across triples
// in both directions and returns the hop sequence of the first path found.
// A nil slice means no path exists within the depth bound; an empty non-nil
// slice means start and end are the same unit.
func (s *TripleStore) FindPath(ctx context.Context, startID, endID string, maxDepth int) ([]models.PathStep, error) {
	if startID == endID {
		return []models.PathStep{}, nil
	}

	if maxDepth < 0 {
		maxDepth = defaultPathDepth
	}

	if maxDepth > maxPathDepth {
		maxDepth = maxPathDepth
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var endpointCount int

	err := s.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM kg_units WHERE id = ANY($1)",
		[]string{startID, endID}).Scan(&endpointCount)
	if err != nil {
		return nil, fmt.Errorf("checking path endpoints: %w", err)
	}

	if endpointCount != 2 {
		return nil, models.ErrUnitNotFound
	}

	visited := map[string]bool{}
	visits := map[string]pathVisit{}
	frontier := []string{startID}

	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		next := make([]string, 0, len(frontier))

		for _, unitID := range frontier {
			if visited[unitID] {
				continue
			}

			visited[unitID] = true

			neighbors, err := s.pathNeighbors(ctx, unitID)
			if err != nil {
				return nil, err
			}

			for _, n := range neighbors {
				if visited[n.unitID] {
					continue
				}

				if _, seen := visits[n.unitID]; seen {
					continue
				}

				visits[n.unitID] = pathVisit{
					parent:    unitID,
					tripleID:  n.tripleID,
					direction: n.direction,
				}

				if n.unitID == endID {
					return buildPath(visits, startID, endID), nil
				}

				next = append(next, n.unitID)
			}
		}

		frontier = next
	}

	return nil, nil
}

// pathNeighbor is one unit reachable from the expanded unit in one hop.
type pathNeighbor struct {
	unitID    string
	tripleID  string
	direction string
}

// pathNeighbors fetches the units adjacent to unitID, outgoing and incoming,
// each direction capped at pathNeighborLimit.
func (s *TripleStore) pathNeighbors(ctx context.Context, unitID string) ([]pathNeighbor, error) {
	rows, err := s.Pool.Query(ctx,
		`(SELECT id, object_id, 'outgoing' FROM kg_triples WHERE subject_id = $1 LIMIT $2)
		 UNION ALL
		 (SELECT id, subject_id, 'incoming' FROM kg_triples WHERE object_id = $1 LIMIT $2)`,
		unitID, pathNeighborLimit)
	if err != nil {
		return nil, fmt.Errorf("querying path neighbors: %w", err)
	}
	defer rows.Close()

	neighbors := make([]pathNeighbor, 0, 16)

	for rows.Next() {
		var n pathNeighbor
		if err := rows.Scan(&n.tripleID, &n.unitID, &n.direction); err != nil {
			return nil, fmt.Errorf("scanning path neighbor: %w", err)
		}

		neighbors = append(neighbors, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating path neighbors: %w", err)
	}

	return neighbors, nil
}

// buildPath walks the visit map backwards from endID to startID and reverses
// the hop list.
func buildPath(visits map[string]pathVisit, startID, endID string) []models.PathStep {
	steps := make([]models.PathStep, 0, 8)

	for cur := endID; cur != startID; {
		v := visits[cur]
		steps = append(steps, models.PathStep{TripleID: v.tripleID, Direction: v.direction})
		cur = v.parent
	}

	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}

	return steps
}
