package importer

import (
	"regexp"
	"strings"

	"github.com/graphein/graphein/internal/segment"
)

// Inline tag markers recognized in plain text: #tag#, [tag] and 【tag】.
var txtTagRes = []*regexp.Regexp{
	regexp.MustCompile(`#([^#\s]+)#`),
	regexp.MustCompile(`\[([^\[\]\s]+)\]`),
	regexp.MustCompile(`【([^【】\s]+)】`),
}

const (
	maxInlineTagLen = 20
	maxInlineTags   = 10
	maxTitleLineLen = 100
)

// TxtImporter parses plain text files, splitting them at heading-like lines.
type TxtImporter struct{}

// NewTxtImporter creates a TxtImporter.
func NewTxtImporter() *TxtImporter {
	return &TxtImporter{}
}

// Extensions implements Importer.
func (i *TxtImporter) Extensions() []string {
	return []string{"txt", "text"}
}

// Parse implements Importer.
func (i *TxtImporter) Parse(fileName string, content []byte) (*Document, error) {
	sections := segment.Sections(string(content))

	doc := &Document{
		Title:    titleFromFileName(fileName),
		Sections: make([]DocSection, 0, len(sections)),
		Metadata: map[string]any{"format": "txt"},
	}

	for _, sec := range sections {
		title, body := sec.Title, sec.Content
		if title == "" {
			title, body = splitTitleContent(sec.Content)
		}

		doc.Sections = append(doc.Sections, DocSection{
			Title:      title,
			Content:    body,
			Position:   sec.Position,
			Importance: 3,
			Tags:       inlineTags(sec.Content),
		})
	}

	return doc, nil
}

// splitTitleContent derives a title for an untitled section. A short first
// line followed by a blank line becomes the title and is removed from the
// body; failing that, the first sentence of a short first line becomes the
// title and the body is kept whole.
func splitTitleContent(section string) (string, string) {
	lines := strings.Split(section, "\n")
	if len(lines) == 0 {
		return "", section
	}

	first := strings.TrimSpace(lines[0])
	if first == "" || len([]rune(first)) >= maxTitleLineLen {
		return "", section
	}

	if len(lines) > 1 && strings.TrimSpace(lines[1]) == "" {
		return first, strings.TrimSpace(strings.Join(lines[2:], "\n"))
	}

	if sentence := firstSentence(first); sentence != "" {
		return sentence, section
	}

	return "", section
}

// firstSentence returns the leading sentence of line including its ender, or
// "" when the line holds no sentence boundary. Latin enders only count when
// followed by a space or the end of the line, so dotted abbreviations are
// left alone.
func firstSentence(line string) string {
	for idx, r := range line {
		if strings.ContainsRune("。！？", r) {
			return line[:idx+len(string(r))]
		}

		if strings.ContainsRune(".!?", r) {
			rest := line[idx+1:]
			if rest == "" || strings.HasPrefix(rest, " ") {
				return line[:idx+1]
			}
		}
	}

	return ""
}

// inlineTags collects inline tag markers from content, keeping short tags
// and capping the total.
func inlineTags(content string) []string {
	tags := make([]string, 0, maxInlineTags)
	seen := make(map[string]bool, maxInlineTags)

	for _, re := range txtTagRes {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			tag := strings.TrimSpace(m[1])
			if tag == "" || len([]rune(tag)) >= maxInlineTagLen || seen[tag] {
				continue
			}

			seen[tag] = true
			tags = append(tags, tag)

			if len(tags) == maxInlineTags {
				return tags
			}
		}
	}

	if len(tags) == 0 {
		return nil
	}

	return tags
}
