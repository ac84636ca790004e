package extract

import (
	"fmt"
	"strings"

	"github.com/graphein/graphein/internal/models"
)

const unitSystemPrompt = `You extract discrete knowledge units from text.
A knowledge unit is a self-contained concept, fact, method or entity.
Respond with a JSON array only. Each element has the fields:
title (short, specific), content (the full relevant text),
unit_type (one of: concept, fact, method, entity, event, note),
domain (one or two words), entity_type, importance (1-5),
tags (array of lowercase strings), aliases (array of strings).
Do not invent facts that are not in the text.`

const enhanceSystemPrompt = `You refine a knowledge unit. Improve the title,
expand tags and aliases, and classify domain and entity type. Keep the
content unchanged. Respond with a single JSON object with the fields:
title, unit_type, domain, entity_type, importance (1-5), tags, aliases.`

const relationSystemPrompt = `You identify semantic relations between two
knowledge units. Respond with a JSON array only. Each element has the
fields: subject ("a" or "b"), predicate (short verb phrase),
confidence (0.0-1.0), bidirectional (boolean),
context (one sentence of evidence). Return an empty array when the units
are unrelated. Do not force a relation.`

// unitUserPrompt renders one text chunk for unit extraction.
func unitUserPrompt(chunk string) string {
	return fmt.Sprintf("Extract the knowledge units from this text:\n\n%s", chunk)
}

// enhanceUserPrompt renders one unit for enhancement.
func enhanceUserPrompt(u models.KnowledgeUnit) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Title: %s\n", u.Title)
	fmt.Fprintf(&sb, "Type: %s\n", u.UnitType)

	if len(u.Tags) > 0 {
		fmt.Fprintf(&sb, "Tags: %s\n", strings.Join(u.Tags, ", "))
	}

	fmt.Fprintf(&sb, "Content:\n%s\n", u.Content)

	return sb.String()
}

// relationUserPrompt renders a unit pair for relation extraction.
func relationUserPrompt(a, b models.KnowledgeUnit) string {
	return fmt.Sprintf(
		"Unit a: %s\n%s\n\nUnit b: %s\n%s",
		a.Title, truncateForPrompt(a.Content),
		b.Title, truncateForPrompt(b.Content),
	)
}

const promptContentLimit = 800

// truncateForPrompt keeps pair prompts bounded.
func truncateForPrompt(content string) string {
	runes := []rune(content)
	if len(runes) <= promptContentLimit {
		return content
	}

	return string(runes[:promptContentLimit]) + "..."
}
