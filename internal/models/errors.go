package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for validation.
var (
	ErrMissingTitle     = errors.New("title is required")
	ErrMissingPredicate = errors.New("predicate is required")
	ErrMissingSubject   = errors.New("subject_id is required")
	ErrMissingObject    = errors.New("object_id is required")
	ErrMissingName      = errors.New("name is required")
	ErrMissingOwner     = errors.New("owner_id is required")
	ErrSelfReference    = errors.New("subject and object must differ")
)

// Sentinel errors for entity lookups.
var (
	ErrUnitNotFound   = errors.New("knowledge unit not found")
	ErrTripleNotFound = errors.New("semantic triple not found")
	ErrGraphNotFound  = errors.New("knowledge graph not found")
	ErrImportNotFound = errors.New("import not found")
)

// ErrGraphEmpty indicates a visualization request against a graph with no
// included units and no derivable roots.
var ErrGraphEmpty = errors.New("graph contains no units")

// ErrDuplicateKey indicates a unique constraint violation (maps to HTTP 409 Conflict).
var ErrDuplicateKey = errors.New("duplicate key")

// DuplicateError reports a constraint collision together with the id of the
// record already holding the key, so callers can decide whether to treat the
// duplicate as an error or adopt the existing record.
type DuplicateError struct {
	Entity     string // "unit" or "triple"
	ExistingID string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s: existing id %s", e.Entity, e.ExistingID)
}

// Is makes errors.Is(err, ErrDuplicateKey) match any DuplicateError.
func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicateKey
}

// ErrFieldTooLong returns an error indicating a field exceeds its maximum length.
func ErrFieldTooLong(field string, maxLen int) error {
	return fmt.Errorf("%s exceeds maximum length of %d", field, maxLen)
}
