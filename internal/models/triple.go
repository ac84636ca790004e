package models

import (
	"strings"
	"time"
)

// Relation type categories. RelationTypeFromPredicate infers one of these
// from predicate keywords when the caller does not supply a type.
const (
	RelationIsA         = "is_a"
	RelationPartOf      = "part_of"
	RelationHasProperty = "has_property"
	RelationCauses      = "causes"
	RelationPrecedes    = "precedes"
	RelationSimilarTo   = "similar_to"
	RelationLocatedIn   = "located_in"
	RelationUsedFor     = "used_for"
	RelationGeneric     = "generic"
)

// SemanticTriple is a directed labeled edge between two knowledge units.
// (SubjectID, Predicate, ObjectID) is unique.
type SemanticTriple struct {
	ID            string         `json:"id"`
	SubjectID     string         `json:"subject_id"`
	Predicate     string         `json:"predicate"`
	ObjectID      string         `json:"object_id"`
	RelationType  string         `json:"relation_type"`
	Confidence    float64        `json:"confidence"`
	Bidirectional bool           `json:"bidirectional"`
	Context       string         `json:"context,omitempty"`
	SourceID      string         `json:"source_id,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	Properties    map[string]any `json:"properties,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Validate checks the triple's structural invariants.
func (t *SemanticTriple) Validate() error {
	if t.SubjectID == "" {
		return ErrMissingSubject
	}

	if t.ObjectID == "" {
		return ErrMissingObject
	}

	if strings.TrimSpace(t.Predicate) == "" {
		return ErrMissingPredicate
	}

	if t.SubjectID == t.ObjectID {
		return ErrSelfReference
	}

	return nil
}

// Normalize fills defaulted fields in place.
func (t *SemanticTriple) Normalize() {
	if t.RelationType == "" {
		t.RelationType = RelationTypeFromPredicate(t.Predicate)
	}

	if t.Confidence == 0 {
		t.Confidence = 0.8
	}
}

// predicateKeywords maps relation types to predicate substrings that imply them.
var predicateKeywords = []struct {
	relationType string
	keywords     []string
}{
	{RelationIsA, []string{"is a", "is an", "type of", "kind of", "subclass of", "belongs to"}},
	{RelationPartOf, []string{"part of", "contains", "composed of", "consists of", "includes"}},
	{RelationHasProperty, []string{"has property", "has attribute", "has feature", "characterized by"}},
	{RelationCauses, []string{"causes", "results in", "leads to", "triggers"}},
	{RelationPrecedes, []string{"precedes", "before", "after", "follows"}},
	{RelationSimilarTo, []string{"similar to", "like", "resembles"}},
	{RelationLocatedIn, []string{"located in", "found in", "situated in"}},
	{RelationUsedFor, []string{"used for", "used to", "purpose is"}},
}

// RelationTypeFromPredicate infers a categorical relation type from the
// free-text predicate, falling back to generic.
func RelationTypeFromPredicate(predicate string) string {
	p := strings.ToLower(predicate)

	for _, m := range predicateKeywords {
		for _, kw := range m.keywords {
			if strings.Contains(p, kw) {
				return m.relationType
			}
		}
	}

	return RelationGeneric
}

// UpdateTripleRequest is the payload for updating a triple. Subject, object
// and predicate identity are immutable once created.
type UpdateTripleRequest struct {
	RelationType *string        `json:"relation_type,omitempty"`
	Confidence   *float64       `json:"confidence,omitempty"`
	Context      *string        `json:"context,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	Properties   map[string]any `json:"properties,omitempty"`
}

// TripleFilter narrows triple list queries.
type TripleFilter struct {
	SubjectID    string
	ObjectID     string
	RelationType string
	SourceID     string
}

// Relation traversal directions.
const (
	DirectionOutgoing = "outgoing"
	DirectionIncoming = "incoming"
	DirectionBoth     = "both"
)

// PathStep is one hop in a relation path between two units: the triple that
// was traversed and the direction it was crossed in.
type PathStep struct {
	TripleID  string `json:"triple_id"`
	Direction string `json:"direction"`
}
