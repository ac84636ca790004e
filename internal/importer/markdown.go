package importer

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// MarkdownImporter parses Markdown files: optional YAML frontmatter, heading
// hierarchy to sections, hashtags to tags.
type MarkdownImporter struct{}

// NewMarkdownImporter creates a MarkdownImporter.
func NewMarkdownImporter() *MarkdownImporter {
	return &MarkdownImporter{}
}

// Extensions implements Importer.
func (i *MarkdownImporter) Extensions() []string {
	return []string{"md", "markdown"}
}

// frontmatter is the recognized subset of YAML frontmatter keys.
type frontmatter struct {
	Title  string         `yaml:"title"`
	Tags   []string       `yaml:"tags"`
	Author string         `yaml:"author"`
	Extra  map[string]any `yaml:",inline"`
}

var (
	mdHeadingRe = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	hashtagRe   = regexp.MustCompile(`(^|\s)#([\p{L}\p{N}_-]{2,})`)
)

// Parse implements Importer.
func (i *MarkdownImporter) Parse(fileName string, content []byte) (*Document, error) {
	body, fm, err := splitFrontmatter(string(content))
	if err != nil {
		return nil, fmt.Errorf("parsing frontmatter: %w", err)
	}

	doc := &Document{
		Title:    titleFromFileName(fileName),
		Metadata: map[string]any{"format": "markdown"},
	}

	if fm != nil {
		if fm.Title != "" {
			doc.Title = fm.Title
		}

		doc.Tags = fm.Tags

		if fm.Author != "" {
			doc.Metadata["author"] = fm.Author
		}

		for k, v := range fm.Extra {
			doc.Metadata[k] = v
		}
	}

	doc.Sections = markdownSections(body)

	return doc, nil
}

// splitFrontmatter separates a leading YAML frontmatter block from the body.
func splitFrontmatter(text string) (string, *frontmatter, error) {
	if !strings.HasPrefix(text, "---\n") && !strings.HasPrefix(text, "---\r\n") {
		return text, nil, nil
	}

	rest := text[strings.Index(text, "\n")+1:]

	endIdx := strings.Index(rest, "\n---")
	if endIdx < 0 {
		return text, nil, nil
	}

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(rest[:endIdx]), &fm); err != nil {
		return "", nil, err
	}

	body := rest[endIdx+len("\n---"):]
	if idx := strings.Index(body, "\n"); idx >= 0 {
		body = body[idx+1:]
	} else {
		body = ""
	}

	return body, &fm, nil
}

// markdownSections splits the body at headings. Heading level drives the
// section importance: top-level headings matter most.
func markdownSections(body string) []DocSection {
	sections := make([]DocSection, 0, 8)

	var (
		title   string
		level   int
		content strings.Builder
	)

	flush := func() {
		text := strings.TrimSpace(content.String())
		if text == "" && title == "" {
			content.Reset()
			return
		}

		sections = append(sections, DocSection{
			Title:      title,
			Content:    text,
			Position:   len(sections),
			Importance: headingImportance(level),
			Tags:       extractHashtags(text),
		})
		content.Reset()
	}

	inFence := false

	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
		}

		if !inFence {
			if m := mdHeadingRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
				flush()
				level = len(m[1])
				title = strings.TrimSpace(m[2])

				continue
			}
		}

		content.WriteString(line)
		content.WriteString("\n")
	}

	flush()

	return sections
}

// headingImportance maps heading depth to a 1-5 importance score.
func headingImportance(level int) int {
	if level == 0 {
		return 3
	}

	return 5 - min(level, 4)
}

// extractHashtags finds inline #tags in section text.
func extractHashtags(text string) []string {
	matches := hashtagRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	tags := make([]string, 0, len(matches))

	for _, m := range matches {
		tag := strings.ToLower(m[2])
		if seen[tag] {
			continue
		}

		seen[tag] = true
		tags = append(tags, tag)
	}

	return tags
}
