package store

import (
	"context"
	"fmt"

	"github.com/graphein/graphein/internal/models"
)

const (
	// defaultVisualDepth bounds the rendered neighborhood when the caller
	// passes no depth.
	defaultVisualDepth = 2
	// maxVisualDepth is the hard ceiling for rendered neighborhoods.
	maxVisualDepth = 5
	// autoRootLimit is how many roots are picked when the graph declares none.
	autoRootLimit = 5
)

// VisualData extracts the renderable neighborhood of a graph: a breadth-first
// expansion from the root units, bounded by depth and by the graph's included
// sets. Units reached at the depth limit appear as nodes but are not
// expanded further. A negative maxDepth selects the default; maxDepth zero
// returns the roots alone with no edges.
func (s *GraphStore) VisualData(ctx context.Context, graphID string, rootIDs []string, maxDepth int) (*models.VisualData, error) {
	if maxDepth < 0 {
		maxDepth = defaultVisualDepth
	}

	if maxDepth > maxVisualDepth {
		maxDepth = maxVisualDepth
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	graph, err := s.GetGraph(ctx, graphID)
	if err != nil {
		return nil, err
	}

	if len(graph.IncludedUnits) == 0 {
		return nil, models.ErrGraphEmpty
	}

	includedUnits := make(map[string]bool, len(graph.IncludedUnits))
	for _, id := range graph.IncludedUnits {
		includedUnits[id] = true
	}

	roots, err := s.resolveRoots(ctx, graph, rootIDs, includedUnits)
	if err != nil {
		return nil, err
	}

	visited := make(map[string]bool, len(graph.IncludedUnits))
	nodeOrder := make([]string, 0, len(graph.IncludedUnits))
	edges := make([]models.VisualEdge, 0, len(graph.IncludedTriples))
	seenEdges := make(map[string]bool, len(graph.IncludedTriples))

	frontier := make([]string, 0, len(roots))

	for _, id := range roots {
		if !visited[id] {
			visited[id] = true
			nodeOrder = append(nodeOrder, id)
			frontier = append(frontier, id)
		}
	}

	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		next := make([]string, 0, len(frontier))

		for _, unitID := range frontier {
			triples, err := s.graphTriplesFor(ctx, graph, unitID)
			if err != nil {
				return nil, err
			}

			for _, t := range triples {
				other := t.ObjectID
				if other == unitID {
					other = t.SubjectID
				}

				if !includedUnits[other] {
					continue
				}

				if !seenEdges[t.ID] {
					seenEdges[t.ID] = true
					edges = append(edges, models.VisualEdge{
						ID:     t.ID,
						Source: t.SubjectID,
						Target: t.ObjectID,
						Label:  t.Predicate,
						Type:   t.RelationType,
						Properties: map[string]any{
							"confidence":    t.Confidence,
							"bidirectional": t.Bidirectional,
						},
					})
				}

				if !visited[other] {
					visited[other] = true
					nodeOrder = append(nodeOrder, other)
					next = append(next, other)
				}
			}
		}

		frontier = next
	}

	nodes, err := s.visualNodes(ctx, nodeOrder)
	if err != nil {
		return nil, err
	}

	return &models.VisualData{
		Nodes: nodes,
		Edges: edges,
		Metadata: models.VisualMetadata{
			GraphID:        graph.ID,
			GraphName:      graph.Name,
			TotalUnits:     len(nodes),
			TotalRelations: len(edges),
			Depth:          maxDepth,
		},
	}, nil
}

// resolveRoots picks the starting units: explicit roots first, then the
// graph's declared roots, then the most connected included units, then the
// first few included units.
func (s *GraphStore) resolveRoots(ctx context.Context, graph *models.KnowledgeGraph, rootIDs []string, includedUnits map[string]bool) ([]string, error) {
	pickIncluded := func(ids []string) []string {
		picked := make([]string, 0, len(ids))
		for _, id := range ids {
			if includedUnits[id] {
				picked = append(picked, id)
			}
		}

		return picked
	}

	if roots := pickIncluded(rootIDs); len(roots) > 0 {
		return roots, nil
	}

	if roots := pickIncluded(graph.RootUnits); len(roots) > 0 {
		return roots, nil
	}

	rows, err := s.Pool.Query(ctx,
		`SELECT id FROM kg_units WHERE id = ANY($1)
		 ORDER BY outgoing_relations + incoming_relations DESC
		 LIMIT $2`,
		graph.IncludedUnits, autoRootLimit)
	if err != nil {
		return nil, fmt.Errorf("picking graph roots: %w", err)
	}
	defer rows.Close()

	roots := make([]string, 0, autoRootLimit)

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning graph root: %w", err)
		}

		roots = append(roots, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating graph roots: %w", err)
	}

	if len(roots) > 0 {
		return roots, nil
	}

	return graph.IncludedUnits[:min(autoRootLimit, len(graph.IncludedUnits))], nil
}

// graphTriplesFor fetches the graph's included triples touching one unit.
func (s *GraphStore) graphTriplesFor(ctx context.Context, graph *models.KnowledgeGraph, unitID string) ([]models.SemanticTriple, error) {
	rows, err := s.Pool.Query(ctx,
		"SELECT "+tripleColumns+" FROM kg_triples WHERE id = ANY($1) AND (subject_id = $2 OR object_id = $2)",
		graph.IncludedTriples, unitID)
	if err != nil {
		return nil, fmt.Errorf("querying graph triples: %w", err)
	}
	defer rows.Close()

	return collectTriples(rows)
}

// visualNodes fetches the units for the discovered node ids, preserving
// discovery order.
func (s *GraphStore) visualNodes(ctx context.Context, nodeOrder []string) ([]models.VisualNode, error) {
	if len(nodeOrder) == 0 {
		return []models.VisualNode{}, nil
	}

	rows, err := s.Pool.Query(ctx,
		"SELECT id, title, unit_type, domain, importance, tags FROM kg_units WHERE id = ANY($1)",
		nodeOrder)
	if err != nil {
		return nil, fmt.Errorf("querying visual nodes: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]models.VisualNode, len(nodeOrder))

	for rows.Next() {
		var (
			n          models.VisualNode
			domain     string
			importance int
			tags       []string
		)

		if err := rows.Scan(&n.ID, &n.Label, &n.Type, &domain, &importance, &tags); err != nil {
			return nil, fmt.Errorf("scanning visual node: %w", err)
		}

		n.Properties = map[string]any{
			"domain":     domain,
			"importance": importance,
			"tags":       tags,
		}
		byID[n.ID] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating visual nodes: %w", err)
	}

	nodes := make([]models.VisualNode, 0, len(nodeOrder))

	for _, id := range nodeOrder {
		if n, ok := byID[id]; ok {
			nodes = append(nodes, n)
		}
	}

	return nodes, nil
}
