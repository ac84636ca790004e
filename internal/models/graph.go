package models

import (
	"strings"
	"time"
)

// Graph lifecycle states.
const (
	GraphActive   = "active"
	GraphArchived = "archived"
)

// KnowledgeGraph is a named, curated subset of units and triples plus
// visualization metadata. Name is unique per owner. The entity and relation
// counters track the sizes of the included sets; additions are monotonic.
type KnowledgeGraph struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	OwnerID         string         `json:"owner_id"`
	IsPublic        bool           `json:"is_public"`
	RootUnits       []string       `json:"root_units"`
	IncludedUnits   []string       `json:"included_units"`
	IncludedTriples []string       `json:"included_triples"`
	Status          string         `json:"status"`
	Version         string         `json:"version"`
	EntityCount     int            `json:"entity_count"`
	RelationCount   int            `json:"relation_count"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	VisualSettings  map[string]any `json:"visual_settings,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Validate checks required graph fields.
func (g *KnowledgeGraph) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrMissingName
	}

	if g.OwnerID == "" {
		return ErrMissingOwner
	}

	return nil
}

// Normalize fills defaulted fields and syncs counters with the included sets.
func (g *KnowledgeGraph) Normalize() {
	if g.Status == "" {
		g.Status = GraphActive
	}

	if g.Version == "" {
		g.Version = "1.0"
	}

	if g.EntityCount == 0 {
		g.EntityCount = len(g.IncludedUnits)
	}

	if g.RelationCount == 0 {
		g.RelationCount = len(g.IncludedTriples)
	}
}

// UpdateGraphRequest is the payload for updating a graph.
type UpdateGraphRequest struct {
	Name           *string        `json:"name,omitempty"`
	Description    *string        `json:"description,omitempty"`
	IsPublic       *bool          `json:"is_public,omitempty"`
	RootUnits      []string       `json:"root_units,omitempty"`
	Status         *string        `json:"status,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	VisualSettings map[string]any `json:"visual_settings,omitempty"`
}

// Validate checks UpdateGraphRequest fields.
func (r *UpdateGraphRequest) Validate() error {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return ErrMissingName
	}

	return nil
}

// GraphFilter narrows graph list queries.
type GraphFilter struct {
	OwnerID  string
	IsPublic *bool
	Status   string
}

// VisualNode is one rendered node in a visual subgraph.
type VisualNode struct {
	ID         string         `json:"id"`
	Label      string         `json:"label"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
}

// VisualEdge is one rendered edge in a visual subgraph.
type VisualEdge struct {
	ID         string         `json:"id"`
	Source     string         `json:"source"`
	Target     string         `json:"target"`
	Label      string         `json:"label"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
}

// VisualData is the depth- and membership-bounded neighborhood returned for
// rendering a graph.
type VisualData struct {
	Nodes    []VisualNode   `json:"nodes"`
	Edges    []VisualEdge   `json:"edges"`
	Metadata VisualMetadata `json:"metadata"`
}

// VisualMetadata summarizes a visual subgraph.
type VisualMetadata struct {
	GraphID        string `json:"graph_id"`
	GraphName      string `json:"graph_name"`
	TotalUnits     int    `json:"total_units"`
	TotalRelations int    `json:"total_relations"`
	Depth          int    `json:"depth"`
}

// TypeCount is one bucket in a grouped statistic.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// GraphStats aggregates per-graph statistics by unit type, relation type
// and knowledge domain.
type GraphStats struct {
	TotalUnits    int         `json:"total_units"`
	TotalTriples  int         `json:"total_triples"`
	UnitTypes     []TypeCount `json:"unit_types"`
	RelationTypes []TypeCount `json:"relation_types"`
	Domains       []TypeCount `json:"domains"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}
