package store

import (
	"encoding/json"
	"strings"
)

// maxListLimit is a defense-in-depth cap on limit values for list queries.
const maxListLimit = 1000

// clampLimit applies defaults and the global cap to a caller-supplied limit.
func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}

	if limit > maxListLimit {
		return maxListLimit
	}

	return limit
}

// marshalMap encodes a possibly-nil map as jsonb, defaulting to "{}".
func marshalMap(m map[string]any) ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}

	return json.Marshal(m)
}

// emptyIfNil normalizes a nil string slice to an empty one so text[] columns
// never receive NULL.
func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}

// joinAliases flattens an alias set for the aliases_text search mirror column.
func joinAliases(aliases []string) string {
	return strings.Join(aliases, " ")
}
