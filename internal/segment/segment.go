// Package segment splits raw document text into size-bounded chunks and
// titled sections for the import pipeline.
package segment

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// DefaultChunkSize is the chunk bound used when callers pass zero.
	DefaultChunkSize = 4000

	// mergeThreshold is the section length below which adjacent sections
	// are merged when a document splits into too many of them.
	mergeThreshold = 200
	// mergeSectionCount triggers merging of short sections.
	mergeSectionCount = 20
)

// sentenceEnders are the characters a sentence can end on, Latin and CJK.
const sentenceEnders = ".!?。！？"

// Section is one titled region of a document.
type Section struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Position int    `json:"position"`
}

// Chunks splits text into pieces no longer than maxSize runes, preferring
// paragraph boundaries, then sentence boundaries, then hard cuts. The
// concatenated chunks preserve all non-whitespace content of the input.
func Chunks(text string, maxSize int) []string {
	if maxSize <= 0 {
		maxSize = DefaultChunkSize
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if len([]rune(text)) <= maxSize {
		return []string{text}
	}

	chunks := make([]string, 0, len(text)/maxSize+1)

	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			chunks = append(chunks, s)
		}

		current.Reset()
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		paraLen := len([]rune(para))

		if len([]rune(current.String()))+paraLen+2 > maxSize && current.Len() > 0 {
			flush()
		}

		if paraLen <= maxSize {
			if current.Len() > 0 {
				current.WriteString("\n\n")
			}

			current.WriteString(para)

			continue
		}

		flush()

		chunks = append(chunks, splitSentences(para, maxSize)...)
	}

	flush()

	return chunks
}

// splitSentences breaks an oversized paragraph at sentence boundaries, hard
// cutting any single sentence that still exceeds maxSize.
func splitSentences(para string, maxSize int) []string {
	sentences := make([]string, 0, 8)

	var sentence strings.Builder

	for _, r := range para {
		sentence.WriteRune(r)

		if strings.ContainsRune(sentenceEnders, r) {
			if s := strings.TrimSpace(sentence.String()); s != "" {
				sentences = append(sentences, s)
			}

			sentence.Reset()
		}
	}

	if s := strings.TrimSpace(sentence.String()); s != "" {
		sentences = append(sentences, s)
	}

	pieces := make([]string, 0, len(sentences))

	var current strings.Builder

	for _, s := range sentences {
		sLen := len([]rune(s))

		if len([]rune(current.String()))+sLen+1 > maxSize && current.Len() > 0 {
			pieces = append(pieces, strings.TrimSpace(current.String()))
			current.Reset()
		}

		if sLen > maxSize {
			pieces = append(pieces, hardCut(s, maxSize)...)
			continue
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}

		current.WriteString(s)
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		pieces = append(pieces, s)
	}

	return pieces
}

// hardCut slices s into maxSize-rune pieces.
func hardCut(s string, maxSize int) []string {
	runes := []rune(s)
	pieces := make([]string, 0, len(runes)/maxSize+1)

	for start := 0; start < len(runes); start += maxSize {
		end := min(start+maxSize, len(runes))
		pieces = append(pieces, strings.TrimSpace(string(runes[start:end])))
	}

	return pieces
}

// Section heading patterns, checked per line.
var (
	markdownHeadingRe = regexp.MustCompile(`^#{1,6}\s+(.+)$`)
	cjkChapterRe      = regexp.MustCompile(`^第[一二三四五六七八九十百千0-9]+[章节回部篇]\s*(.*)$`)
	chapterRe         = regexp.MustCompile(`(?i)^chapter\s+\d+[.:]?\s*(.*)$`)
	numberedRe        = regexp.MustCompile(`^\d+(\.\d+)*[.、]\s+(.+)$`)
)

// headingTitle reports whether line is a section heading and, if so, its
// title text.
func headingTitle(line string) (string, bool) {
	if m := markdownHeadingRe.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1]), true
	}

	if m := cjkChapterRe.FindStringSubmatch(line); m != nil {
		title := strings.TrimSpace(m[1])
		if title == "" {
			title = line
		}

		return title, true
	}

	if m := chapterRe.FindStringSubmatch(line); m != nil {
		title := strings.TrimSpace(m[1])
		if title == "" {
			title = line
		}

		return title, true
	}

	if m := numberedRe.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[2]), true
	}

	return "", false
}

var blankRunRe = regexp.MustCompile(`\n{2,}`)

// Sections splits a document at heading lines. Text before the first heading
// becomes an untitled preamble section. A document with no headings at all
// falls back to blank-line paragraph splitting. Documents with many tiny
// sections get adjacent short sections merged.
func Sections(text string) []Section {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	sections := make([]Section, 0, 8)

	var (
		title       string
		headingSeen bool
		content     strings.Builder
	)

	flush := func() {
		body := strings.TrimSpace(content.String())
		if body == "" && title == "" {
			content.Reset()
			return
		}

		sections = append(sections, Section{
			Title:    title,
			Content:  body,
			Position: len(sections),
		})
		content.Reset()
	}

	for _, line := range strings.Split(text, "\n") {
		if t, ok := headingTitle(strings.TrimSpace(line)); ok {
			flush()
			title = t
			headingSeen = true

			continue
		}

		content.WriteString(line)
		content.WriteString("\n")
	}

	flush()

	if !headingSeen {
		sections = paragraphSections(text)
	}

	if len(sections) == 0 {
		return []Section{{Content: text}}
	}

	if len(sections) > mergeSectionCount {
		sections = mergeShort(sections)
	}

	return sections
}

// paragraphSections splits a heading-less document on blank-line runs, one
// untitled section per paragraph.
func paragraphSections(text string) []Section {
	sections := make([]Section, 0, 8)

	for _, para := range blankRunRe.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		sections = append(sections, Section{
			Content:  para,
			Position: len(sections),
		})
	}

	return sections
}

// mergeShort folds sections shorter than mergeThreshold into their
// predecessor, renumbering positions.
func mergeShort(sections []Section) []Section {
	merged := make([]Section, 0, len(sections))

	for _, sec := range sections {
		if len(merged) > 0 && len([]rune(sec.Content)) < mergeThreshold {
			prev := &merged[len(merged)-1]

			if sec.Title != "" {
				prev.Content = fmt.Sprintf("%s\n\n%s\n%s", prev.Content, sec.Title, sec.Content)
			} else {
				prev.Content = prev.Content + "\n\n" + sec.Content
			}

			prev.Content = strings.TrimSpace(prev.Content)

			continue
		}

		sec.Position = len(merged)
		merged = append(merged, sec)
	}

	return merged
}
