// Package models defines data types for the knowledge graph.
package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Unit lifecycle states.
const (
	StateDraft    = "draft"
	StateActive   = "active"
	StateMerged   = "merged"
	StateArchived = "archived"
)

// Source records where a knowledge unit came from.
type Source struct {
	FileID   string `json:"file_id,omitempty"`
	FileName string `json:"file_name,omitempty"`
	ImportID string `json:"import_id,omitempty"`
	Position int    `json:"position"`
	Section  string `json:"section,omitempty"`
}

// UnitStatus tracks the lifecycle and validation state of a unit.
type UnitStatus struct {
	State       string `json:"state"`
	IsDuplicate bool   `json:"is_duplicate"`
	Validation  string `json:"validation"` // pending, validated, rejected
}

// Knowledge holds structured knowledge descriptors for a unit.
type Knowledge struct {
	Domain           string         `json:"domain,omitempty"`
	EntityType       string         `json:"entity_type,omitempty"`
	Importance       int            `json:"importance"`        // 1-5
	AbstractionLevel int            `json:"abstraction_level"` // 1-5
	Properties       map[string]any `json:"properties,omitempty"`
}

// Metrics holds per-unit quality and usage counters. The relation counters
// are maintained by the triple store as triples are created and deleted.
type Metrics struct {
	Confidence        float64 `json:"confidence"`
	Completeness      float64 `json:"completeness"`
	OutgoingRelations int     `json:"outgoing_relations"`
	IncomingRelations int     `json:"incoming_relations"`
	CitationCount     int     `json:"citation_count"`
	ViewCount         int     `json:"view_count"`
}

// KnowledgeUnit is an atomic stored fact, concept or entity.
type KnowledgeUnit struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Content       string         `json:"content"`
	UnitType      string         `json:"unit_type"`
	CanonicalName string         `json:"canonical_name"`
	Aliases       []string       `json:"aliases"`
	Tags          []string       `json:"tags"`
	Source        Source         `json:"source"`
	Status        UnitStatus     `json:"status"`
	Knowledge     Knowledge      `json:"knowledge"`
	Metrics       Metrics        `json:"metrics"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	CreatedBy     string         `json:"created_by"`
	MergedUnits   []string       `json:"merged_units"`
	ParentUnits   []string       `json:"parent_units"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// Field limits for knowledge units.
const (
	maxTitleLen         = 100
	maxCanonicalNameLen = 50
)

// Normalize applies the unit invariants in place: the title is truncated to
// its limit, the canonical name is derived from the title when absent, and
// defaulted enum-like fields are filled.
func (u *KnowledgeUnit) Normalize(now time.Time) {
	if runes := []rune(u.Title); len(runes) > maxTitleLen {
		u.Title = string(runes[:maxTitleLen-3]) + "..."
	}

	if u.CanonicalName == "" {
		u.CanonicalName = CanonicalName(u.Title, now)
	}

	if u.UnitType == "" {
		u.UnitType = "note"
	}

	if u.Status.State == "" {
		u.Status.State = StateDraft
	}

	if u.Status.Validation == "" {
		u.Status.Validation = "pending"
	}

	if u.Knowledge.Importance == 0 {
		u.Knowledge.Importance = 3
	}

	if u.Knowledge.AbstractionLevel == 0 {
		u.Knowledge.AbstractionLevel = 3
	}

	if u.CreatedBy == "" {
		u.CreatedBy = "system"
	}
}

// Validate checks required unit fields.
func (u *KnowledgeUnit) Validate() error {
	if strings.TrimSpace(u.Title) == "" {
		return ErrMissingTitle
	}

	return nil
}

var (
	nonWordRe  = regexp.MustCompile(`[^\w\s]`)
	spaceRunRe = regexp.MustCompile(`\s+`)
	underRunRe = regexp.MustCompile(`_+`)
)

// CanonicalName derives a deterministic slug from a title: lower-cased,
// punctuation stripped, whitespace collapsed to underscores, non-ASCII
// removed, capped at 50 characters. A timestamp-based name is used when
// nothing survives the stripping, so the result is never empty.
func CanonicalName(title string, now time.Time) string {
	name := strings.ToLower(title)
	name = nonWordRe.ReplaceAllString(name, "")
	name = spaceRunRe.ReplaceAllString(strings.TrimSpace(name), "_")

	var b strings.Builder
	for _, r := range name {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	name = underRunRe.ReplaceAllString(b.String(), "_")
	name = strings.Trim(name, "_")

	if len(name) > maxCanonicalNameLen {
		name = name[:maxCanonicalNameLen]
	}

	if name == "" {
		name = fmt.Sprintf("unit_%d", now.Unix())
	}

	return name
}

// UpdateUnitRequest is the payload for partially updating a unit.
// Nil fields are left untouched.
type UpdateUnitRequest struct {
	Title      *string         `json:"title,omitempty"`
	Content    *string         `json:"content,omitempty"`
	UnitType   *string         `json:"unit_type,omitempty"`
	Aliases    []string        `json:"aliases,omitempty"`
	Tags       []string        `json:"tags,omitempty"`
	Status     *UnitStatus     `json:"status,omitempty"`
	Knowledge  *Knowledge      `json:"knowledge,omitempty"`
	Metadata   map[string]any  `json:"metadata,omitempty"`
	MergedInto *string         `json:"merged_into,omitempty"`
	Merged     []string        `json:"merged_units,omitempty"`
}

// Validate checks UpdateUnitRequest fields.
func (r *UpdateUnitRequest) Validate() error {
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return ErrMissingTitle
	}

	if r.Title != nil && utf8.RuneCountInString(*r.Title) > maxTitleLen {
		return ErrFieldTooLong("title", maxTitleLen)
	}

	return nil
}

// UnitFilter narrows unit list queries.
type UnitFilter struct {
	UnitType string
	State    string
	Tag      string
	ImportID string
	Domain   string
}
