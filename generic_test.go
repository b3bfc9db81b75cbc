package main

import (
	"strings"
	"testing"
)

func TestGenericConvert(t *testing.T) {
	page := `<html><head><title>Drifted Layout</title></head><body>` +
		`<h1>Heading</h1><p>Some <strong>bold</strong> text.</p>` +
		`</body></html>`

	article, err := NewGenericConverter().Convert(page, 7)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	if !strings.Contains(article.Markdown, "# Heading") {
		t.Errorf("Markdown missing heading: %q", article.Markdown)
	}
	if !strings.Contains(article.Markdown, "**bold**") {
		t.Errorf("Markdown missing bold text: %q", article.Markdown)
	}
	if article.HTML != page {
		t.Error("Convert() should keep the raw page as the HTML output")
	}
	if article.Slug != "007-drifted-layout" {
		t.Errorf("Slug = %q, want %q", article.Slug, "007-drifted-layout")
	}
	if article.Title != "Drifted Layout" {
		t.Errorf("Title = %q, want %q", article.Title, "Drifted Layout")
	}
}

func TestGenericConvertNoTitle(t *testing.T) {
	article, err := NewGenericConverter().Convert("<html><body><p>x</p></body></html>", 0)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if article.Slug != "000-article" {
		t.Errorf("Slug = %q, want %q", article.Slug, "000-article")
	}
}

func TestPageTitleHelper(t *testing.T) {
	tests := []struct {
		name string
		page string
		want string
	}{
		{"simple", "<html><head><title>Hi</title></head></html>", "Hi"},
		{"multiline", "<html><head><title>Two\n Lines</title></head></html>", "Two Lines"},
		{"absent", "<html><body></body></html>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pageTitle(tt.page); got != tt.want {
				t.Errorf("pageTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}
