// Package importer parses uploaded documents and runs the asynchronous
// import pipeline that turns them into stored knowledge units, relations
// and a knowledge graph.
package importer

import (
	"crypto/md5" //nolint:gosec // content fingerprint, not a security boundary.
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
)

// DocSection is one titled region of a parsed document.
type DocSection struct {
	Title      string
	Content    string
	Position   int
	Importance int
	Tags       []string
}

// Document is the format-independent result of parsing an upload.
type Document struct {
	Title    string
	Sections []DocSection
	Tags     []string
	Metadata map[string]any
}

// Importer parses one upload format into a Document.
type Importer interface {
	Extensions() []string
	Parse(fileName string, content []byte) (*Document, error)
}

// ErrUnsupportedFormat is returned for files no importer claims.
var ErrUnsupportedFormat = fmt.Errorf("unsupported file format")

// FileHash fingerprints upload content for duplicate detection.
func FileHash(content []byte) string {
	sum := md5.Sum(content) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// titleFromFileName derives a document title from the upload's file name.
func titleFromFileName(fileName string) string {
	base := filepath.Base(fileName)
	ext := filepath.Ext(base)

	return strings.TrimSuffix(base, ext)
}

// fileType normalizes a file name to its lower-cased extension without dot.
func fileType(fileName string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
}
