package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/graphein/graphein/internal/models"
)

const defaultGraphLimit = 50

// GraphStore provides knowledge graph CRUD and membership operations.
type GraphStore struct {
	Base
}

// NewGraphStore creates a new GraphStore.
func NewGraphStore(base Base) *GraphStore {
	return &GraphStore{Base: base}
}

// CreateGraph inserts a graph. (name, owner_id) must be unique.
func (s *GraphStore) CreateGraph(ctx context.Context, graph models.KnowledgeGraph) (*models.KnowledgeGraph, error) {
	if err := graph.Validate(); err != nil {
		return nil, err
	}

	graph.Normalize()

	if graph.ID == "" {
		graph.ID = uuid.New().String()
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	metaJSON, err := marshalMap(graph.Metadata)
	if err != nil {
		return nil, fmt.Errorf("preparing graph metadata: %w", err)
	}

	visualJSON, err := marshalMap(graph.VisualSettings)
	if err != nil {
		return nil, fmt.Errorf("preparing graph visual settings: %w", err)
	}

	row := s.Pool.QueryRow(ctx,
		`INSERT INTO kg_graphs (
			id, name, description, owner_id, is_public,
			root_units, included_units, included_triples, status, version,
			entity_count, relation_count, metadata, visual_settings)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING `+graphColumns,
		graph.ID, graph.Name, graph.Description, graph.OwnerID, graph.IsPublic,
		emptyIfNil(graph.RootUnits), emptyIfNil(graph.IncludedUnits),
		emptyIfNil(graph.IncludedTriples), graph.Status, graph.Version,
		graph.EntityCount, graph.RelationCount, metaJSON, visualJSON,
	)

	created, err := scanGraph(row.Scan)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, models.ErrDuplicateKey
		}

		return nil, fmt.Errorf("scanning created graph: %w", err)
	}

	return created, nil
}

// GetGraph fetches a graph by id.
func (s *GraphStore) GetGraph(ctx context.Context, graphID string) (*models.KnowledgeGraph, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx,
		"SELECT "+graphColumns+" FROM kg_graphs WHERE id = $1", graphID)

	g, err := scanGraph(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrGraphNotFound
		}

		return nil, fmt.Errorf("scanning graph: %w", err)
	}

	return g, nil
}

// graphFilterClauses renders the WHERE conditions for a GraphFilter.
func graphFilterClauses(filter models.GraphFilter) ([]string, []any) {
	clauses := make([]string, 0, 3)
	args := make([]any, 0, 3)

	add := func(clause string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.OwnerID != "" {
		add("owner_id = $%d", filter.OwnerID)
	}

	if filter.IsPublic != nil {
		add("is_public = $%d", *filter.IsPublic)
	}

	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}

	return clauses, args
}

// ListGraphs returns graphs matching the filter, newest first.
func (s *GraphStore) ListGraphs(ctx context.Context, filter models.GraphFilter, limit, offset int) ([]models.KnowledgeGraph, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	clauses, args := graphFilterClauses(filter)

	query := "SELECT " + graphColumns + " FROM kg_graphs"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		len(args)+1, len(args)+2)
	args = append(args, clampLimit(limit, defaultGraphLimit), max(offset, 0))

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying graphs: %w", err)
	}
	defer rows.Close()

	return collectGraphs(rows)
}

// CountGraphs returns the number of graphs matching the filter.
func (s *GraphStore) CountGraphs(ctx context.Context, filter models.GraphFilter) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	clauses, args := graphFilterClauses(filter)

	query := "SELECT COUNT(*) FROM kg_graphs"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	var count int64
	if err := s.Pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting graphs: %w", err)
	}

	return count, nil
}

// UpdateGraph applies a partial update and returns the refreshed record.
func (s *GraphStore) UpdateGraph(ctx context.Context, graphID string, req models.UpdateGraphRequest) (*models.KnowledgeGraph, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	setClauses := make([]string, 0, 6)
	args := make([]any, 0, 7)

	addClause := func(clause string, value any) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf(clause, len(args)))
	}

	if req.Name != nil {
		addClause("name = $%d", *req.Name)
	}

	if req.Description != nil {
		addClause("description = $%d", *req.Description)
	}

	if req.IsPublic != nil {
		addClause("is_public = $%d", *req.IsPublic)
	}

	if req.RootUnits != nil {
		addClause("root_units = $%d", req.RootUnits)
	}

	if req.Status != nil {
		addClause("status = $%d", *req.Status)
	}

	if req.Metadata != nil {
		metaJSON, err := marshalMap(req.Metadata)
		if err != nil {
			return nil, fmt.Errorf("preparing graph metadata: %w", err)
		}

		addClause("metadata = metadata || $%d", metaJSON)
	}

	if req.VisualSettings != nil {
		visualJSON, err := marshalMap(req.VisualSettings)
		if err != nil {
			return nil, fmt.Errorf("preparing graph visual settings: %w", err)
		}

		addClause("visual_settings = visual_settings || $%d", visualJSON)
	}

	if len(setClauses) == 0 {
		return s.GetGraph(ctx, graphID)
	}

	setClauses = append(setClauses, "updated_at = now()")
	args = append(args, graphID)

	query := fmt.Sprintf(
		"UPDATE kg_graphs SET %s WHERE id = $%d RETURNING %s",
		strings.Join(setClauses, ", "), len(args), graphColumns,
	)

	row := s.Pool.QueryRow(ctx, query, args...)

	g, err := scanGraph(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrGraphNotFound
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, models.ErrDuplicateKey
		}

		return nil, fmt.Errorf("scanning updated graph: %w", err)
	}

	return g, nil
}

// DeleteGraph removes a graph. Units and triples are untouched; graphs only
// reference them.
func (s *GraphStore) DeleteGraph(ctx context.Context, graphID string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := s.Pool.Exec(ctx, "DELETE FROM kg_graphs WHERE id = $1", graphID)
	if err != nil {
		return fmt.Errorf("executing graph delete: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return models.ErrGraphNotFound
	}

	return nil
}

// AddUnits adds units to the graph's included set. The operation is
// idempotent; only units not already included are appended, and the entity
// counter grows by the number actually added.
func (s *GraphStore) AddUnits(ctx context.Context, graphID string, unitIDs []string) (*models.KnowledgeGraph, int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("adding graph units: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	graph, err := lockGraph(ctx, tx, graphID)
	if err != nil {
		return nil, 0, err
	}

	missing, err := filterExistingIDs(ctx, tx, "kg_units", unitIDs)
	if err != nil {
		return nil, 0, err
	}

	if len(missing) > 0 {
		return nil, 0, models.ErrUnitNotFound
	}

	added := appendMissing(&graph.IncludedUnits, unitIDs)
	if added == 0 {
		return graph, 0, nil
	}

	graph.EntityCount += added

	updated, err := saveMembership(ctx, tx, graph)
	if err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, fmt.Errorf("committing add units: %w", err)
	}

	return updated, added, nil
}

// AddTriples adds triples to the graph's included set, auto-including any
// endpoint units not yet in the graph. Idempotent like AddUnits.
func (s *GraphStore) AddTriples(ctx context.Context, graphID string, tripleIDs []string) (*models.KnowledgeGraph, int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("adding graph triples: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	graph, err := lockGraph(ctx, tx, graphID)
	if err != nil {
		return nil, 0, err
	}

	rows, err := tx.Query(ctx,
		"SELECT id, subject_id, object_id FROM kg_triples WHERE id = ANY($1)",
		tripleIDs)
	if err != nil {
		return nil, 0, fmt.Errorf("querying triples for graph: %w", err)
	}

	found := make(map[string]bool, len(tripleIDs))
	endpoints := make([]string, 0, len(tripleIDs)*2)

	for rows.Next() {
		var id, subjectID, objectID string
		if err := rows.Scan(&id, &subjectID, &objectID); err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scanning triple for graph: %w", err)
		}

		found[id] = true
		endpoints = append(endpoints, subjectID, objectID)
	}
	rows.Close()

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating triples for graph: %w", err)
	}

	for _, id := range tripleIDs {
		if !found[id] {
			return nil, 0, models.ErrTripleNotFound
		}
	}

	addedTriples := appendMissing(&graph.IncludedTriples, tripleIDs)
	addedUnits := appendMissing(&graph.IncludedUnits, endpoints)

	if addedTriples == 0 && addedUnits == 0 {
		return graph, 0, nil
	}

	graph.RelationCount += addedTriples
	graph.EntityCount += addedUnits

	updated, err := saveMembership(ctx, tx, graph)
	if err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, fmt.Errorf("committing add triples: %w", err)
	}

	return updated, addedTriples, nil
}

// lockGraph fetches a graph row FOR UPDATE inside tx.
func lockGraph(ctx context.Context, tx pgx.Tx, graphID string) (*models.KnowledgeGraph, error) {
	row := tx.QueryRow(ctx,
		"SELECT "+graphColumns+" FROM kg_graphs WHERE id = $1 FOR UPDATE", graphID)

	g, err := scanGraph(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrGraphNotFound
		}

		return nil, fmt.Errorf("locking graph: %w", err)
	}

	return g, nil
}

// filterExistingIDs returns the subset of ids with no row in the table.
func filterExistingIDs(ctx context.Context, tx pgx.Tx, table string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := tx.Query(ctx,
		fmt.Sprintf("SELECT id FROM %s WHERE id = ANY($1)", table), ids)
	if err != nil {
		return nil, fmt.Errorf("checking ids in %s: %w", table, err)
	}
	defer rows.Close()

	existing := make(map[string]bool, len(ids))

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning id from %s: %w", table, err)
		}

		existing[id] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ids from %s: %w", table, err)
	}

	missing := make([]string, 0)
	for _, id := range ids {
		if !existing[id] {
			missing = append(missing, id)
		}
	}

	return missing, nil
}

// appendMissing appends ids not already present in *set and returns how many
// were added. Duplicates within ids are collapsed.
func appendMissing(set *[]string, ids []string) int {
	present := make(map[string]bool, len(*set))
	for _, id := range *set {
		present[id] = true
	}

	added := 0

	for _, id := range ids {
		if present[id] {
			continue
		}

		present[id] = true
		*set = append(*set, id)
		added++
	}

	return added
}

// saveMembership persists the included sets and counters inside tx.
func saveMembership(ctx context.Context, tx pgx.Tx, graph *models.KnowledgeGraph) (*models.KnowledgeGraph, error) {
	row := tx.QueryRow(ctx,
		`UPDATE kg_graphs
		 SET included_units = $2, included_triples = $3,
		     entity_count = $4, relation_count = $5, updated_at = now()
		 WHERE id = $1
		 RETURNING `+graphColumns,
		graph.ID, emptyIfNil(graph.IncludedUnits), emptyIfNil(graph.IncludedTriples),
		graph.EntityCount, graph.RelationCount,
	)

	updated, err := scanGraph(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("saving graph membership: %w", err)
	}

	return updated, nil
}
