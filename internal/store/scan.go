package store

import (
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/graphein/graphein/internal/models"
)

// unitColumns lists the columns selected for unit queries (excluding search_tsv).
const unitColumns = `id, title, content, unit_type, canonical_name, aliases, tags,
	source, state, is_duplicate, validation,
	domain, entity_type, importance, abstraction_level, properties,
	confidence, completeness, outgoing_relations, incoming_relations,
	citation_count, view_count, created_by, merged_units, parent_units,
	metadata, created_at, updated_at`

// tripleColumns lists the columns selected for triple queries.
const tripleColumns = `id, subject_id, predicate, object_id, relation_type,
	confidence, bidirectional, context, source_id, metadata, properties,
	created_at, updated_at`

// graphColumns lists the columns selected for graph queries.
const graphColumns = `id, name, description, owner_id, is_public,
	root_units, included_units, included_triples, status, version,
	entity_count, relation_count, metadata, visual_settings,
	created_at, updated_at`

// scanUnit scans a single row into a models.KnowledgeUnit.
func scanUnit(scan func(dest ...any) error) (*models.KnowledgeUnit, error) {
	var u models.KnowledgeUnit
	var source, properties, metadata []byte

	err := scan(
		&u.ID,
		&u.Title,
		&u.Content,
		&u.UnitType,
		&u.CanonicalName,
		&u.Aliases,
		&u.Tags,
		&source,
		&u.Status.State,
		&u.Status.IsDuplicate,
		&u.Status.Validation,
		&u.Knowledge.Domain,
		&u.Knowledge.EntityType,
		&u.Knowledge.Importance,
		&u.Knowledge.AbstractionLevel,
		&properties,
		&u.Metrics.Confidence,
		&u.Metrics.Completeness,
		&u.Metrics.OutgoingRelations,
		&u.Metrics.IncomingRelations,
		&u.Metrics.CitationCount,
		&u.Metrics.ViewCount,
		&u.CreatedBy,
		&u.MergedUnits,
		&u.ParentUnits,
		&metadata,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(source, &u.Source); err != nil {
		return nil, fmt.Errorf("unmarshalling unit source: %w", err)
	}

	if err := json.Unmarshal(properties, &u.Knowledge.Properties); err != nil {
		return nil, fmt.Errorf("unmarshalling unit properties: %w", err)
	}

	if err := json.Unmarshal(metadata, &u.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshalling unit metadata: %w", err)
	}

	return &u, nil
}

// scanTriple scans a single row into a models.SemanticTriple.
func scanTriple(scan func(dest ...any) error) (*models.SemanticTriple, error) {
	var t models.SemanticTriple
	var metadata, properties []byte

	err := scan(
		&t.ID,
		&t.SubjectID,
		&t.Predicate,
		&t.ObjectID,
		&t.RelationType,
		&t.Confidence,
		&t.Bidirectional,
		&t.Context,
		&t.SourceID,
		&metadata,
		&properties,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(metadata, &t.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshalling triple metadata: %w", err)
	}

	if err := json.Unmarshal(properties, &t.Properties); err != nil {
		return nil, fmt.Errorf("unmarshalling triple properties: %w", err)
	}

	return &t, nil
}

// scanGraph scans a single row into a models.KnowledgeGraph.
func scanGraph(scan func(dest ...any) error) (*models.KnowledgeGraph, error) {
	var g models.KnowledgeGraph
	var metadata, visualSettings []byte

	err := scan(
		&g.ID,
		&g.Name,
		&g.Description,
		&g.OwnerID,
		&g.IsPublic,
		&g.RootUnits,
		&g.IncludedUnits,
		&g.IncludedTriples,
		&g.Status,
		&g.Version,
		&g.EntityCount,
		&g.RelationCount,
		&metadata,
		&visualSettings,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(metadata, &g.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshalling graph metadata: %w", err)
	}

	if err := json.Unmarshal(visualSettings, &g.VisualSettings); err != nil {
		return nil, fmt.Errorf("unmarshalling graph visual settings: %w", err)
	}

	return &g, nil
}

// collectUnits scans all rows into a unit slice.
func collectUnits(rows pgx.Rows) ([]models.KnowledgeUnit, error) {
	units := make([]models.KnowledgeUnit, 0, 16)

	for rows.Next() {
		u, err := scanUnit(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning unit row: %w", err)
		}

		units = append(units, *u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating unit rows: %w", err)
	}

	return units, nil
}

// collectTriples scans all rows into a triple slice.
func collectTriples(rows pgx.Rows) ([]models.SemanticTriple, error) {
	triples := make([]models.SemanticTriple, 0, 16)

	for rows.Next() {
		t, err := scanTriple(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning triple row: %w", err)
		}

		triples = append(triples, *t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating triple rows: %w", err)
	}

	return triples, nil
}

// collectGraphs scans all rows into a graph slice.
func collectGraphs(rows pgx.Rows) ([]models.KnowledgeGraph, error) {
	graphs := make([]models.KnowledgeGraph, 0, 8)

	for rows.Next() {
		g, err := scanGraph(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning graph row: %w", err)
		}

		graphs = append(graphs, *g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating graph rows: %w", err)
	}

	return graphs, nil
}
