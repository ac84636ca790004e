package importer

import (
	"strings"
	"testing"
)

func TestTxtImporterSections(t *testing.T) {
	content := []byte("# Intro\nfirst section body\n\n# Methods\nsecond section body")

	doc, err := NewTxtImporter().Parse("notes.txt", content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "notes" {
		t.Errorf("expected title from file name, got %q", doc.Title)
	}

	if len(doc.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(doc.Sections))
	}

	if doc.Sections[0].Title != "Intro" || doc.Sections[1].Title != "Methods" {
		t.Errorf("unexpected section titles: %+v", doc.Sections)
	}
}

func TestTxtImporterPlainBody(t *testing.T) {
	doc, err := NewTxtImporter().Parse("plain.txt", []byte("no headings here at all"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(doc.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(doc.Sections))
	}

	if doc.Sections[0].Importance != 3 {
		t.Errorf("expected default importance, got %d", doc.Sections[0].Importance)
	}
}

func TestTxtImporterInlineTags(t *testing.T) {
	content := []byte("# Notes\nsome text with #physics# and [gravity] plus 【力学】 markers")

	doc, err := NewTxtImporter().Parse("tagged.txt", content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(doc.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(doc.Sections))
	}

	tags := doc.Sections[0].Tags
	want := []string{"physics", "gravity", "力学"}

	if len(tags) != len(want) {
		t.Fatalf("expected tags %v, got %v", want, tags)
	}

	for i, tag := range want {
		if tags[i] != tag {
			t.Errorf("tag %d: expected %q, got %q", i, tag, tags[i])
		}
	}
}

func TestTxtImporterInlineTagsCapped(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("# All\n")
	for i := 0; i < 15; i++ {
		sb.WriteString("#tag")
		sb.WriteByte(byte('a' + i))
		sb.WriteString("# ")
	}
	sb.WriteString("and one [averylongtagthatexceedstwentychars] too")

	doc, err := NewTxtImporter().Parse("many.txt", []byte(sb.String()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tags := doc.Sections[0].Tags

	if len(tags) != 10 {
		t.Errorf("expected tag cap of 10, got %d: %v", len(tags), tags)
	}

	for _, tag := range tags {
		if len([]rune(tag)) >= 20 {
			t.Errorf("over-length tag kept: %q", tag)
		}
	}
}

func TestTxtImporterShortLineTitle(t *testing.T) {
	content := []byte("A Short Heading\n\nthe body of the section follows here\n\n# Next\nmore text")

	doc, err := NewTxtImporter().Parse("untitled.txt", content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(doc.Sections) == 0 {
		t.Fatal("expected at least one section")
	}

	first := doc.Sections[0]

	if first.Title != "A Short Heading" {
		t.Errorf("expected short first line as title, got %q", first.Title)
	}

	if strings.Contains(first.Content, "A Short Heading") {
		t.Errorf("expected title removed from body, got %q", first.Content)
	}
}

func TestTxtImporterFirstSentenceTitle(t *testing.T) {
	content := []byte("Gravity bends light. The effect was confirmed in 1919\nand repeated many times since")

	doc, err := NewTxtImporter().Parse("sentence.txt", content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first := doc.Sections[0]

	if first.Title != "Gravity bends light." {
		t.Errorf("expected first sentence as title, got %q", first.Title)
	}

	if !strings.Contains(first.Content, "confirmed in 1919") {
		t.Errorf("expected full body kept, got %q", first.Content)
	}
}

func TestMarkdownImporterFrontmatter(t *testing.T) {
	content := []byte(`---
title: My Document
tags: [research, graphs]
author: someone
---
# Overview
body text with #inline-tag mentioned
`)

	doc, err := NewMarkdownImporter().Parse("doc.md", content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "My Document" {
		t.Errorf("expected frontmatter title, got %q", doc.Title)
	}

	if len(doc.Tags) != 2 || doc.Tags[0] != "research" {
		t.Errorf("expected frontmatter tags, got %v", doc.Tags)
	}

	if doc.Metadata["author"] != "someone" {
		t.Errorf("expected author carried into metadata, got %v", doc.Metadata)
	}

	if len(doc.Sections) != 1 || doc.Sections[0].Title != "Overview" {
		t.Fatalf("unexpected sections: %+v", doc.Sections)
	}

	tags := doc.Sections[0].Tags
	if len(tags) != 1 || tags[0] != "inline-tag" {
		t.Errorf("expected inline hashtag extracted, got %v", tags)
	}
}

func TestMarkdownImporterNoFrontmatter(t *testing.T) {
	doc, err := NewMarkdownImporter().Parse("plain.md", []byte("# Only Heading\ntext"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "plain" {
		t.Errorf("expected file name title, got %q", doc.Title)
	}

	if len(doc.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(doc.Sections))
	}

	if doc.Sections[0].Importance != 4 {
		t.Errorf("expected h1 importance 4, got %d", doc.Sections[0].Importance)
	}
}

func TestMarkdownImporterHeadingImportance(t *testing.T) {
	content := []byte("# Top\na\n## Mid\nb\n#### Deep\nc\n###### Deepest\nd")

	doc, err := NewMarkdownImporter().Parse("levels.md", content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int{4, 3, 1, 1}

	if len(doc.Sections) != len(want) {
		t.Fatalf("expected %d sections, got %d", len(want), len(doc.Sections))
	}

	for i, sec := range doc.Sections {
		if sec.Importance != want[i] {
			t.Errorf("section %d: expected importance %d, got %d", i, want[i], sec.Importance)
		}
	}
}

func TestMarkdownImporterIgnoresHeadingsInFences(t *testing.T) {
	content := []byte("# Real\ntext\n```\n# not a heading\n```\nmore text")

	doc, err := NewMarkdownImporter().Parse("code.md", content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(doc.Sections) != 1 {
		t.Fatalf("expected fenced heading ignored, got %d sections", len(doc.Sections))
	}

	if !strings.Contains(doc.Sections[0].Content, "# not a heading") {
		t.Errorf("expected fence content kept: %q", doc.Sections[0].Content)
	}
}

func TestFileHashStable(t *testing.T) {
	a := FileHash([]byte("same content"))
	b := FileHash([]byte("same content"))
	c := FileHash([]byte("different content"))

	if a != b {
		t.Errorf("expected identical hashes, got %q and %q", a, b)
	}

	if a == c {
		t.Errorf("expected different hashes for different content")
	}
}
