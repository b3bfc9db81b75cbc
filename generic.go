package main

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// GenericConverter renders a whole page as Markdown with the generic
// library converter. It is the degraded mode for when the what-if
// layout drifts and the site-specific walker cannot find its anchors:
// the output loses footnotes and reference-style links but keeps the
// text readable.
type GenericConverter struct {
	converter *md.Converter
}

func NewGenericConverter() *GenericConverter {
	return &GenericConverter{converter: md.NewConverter("", true, nil)}
}

// Convert renders the full page as Markdown and derives the slug from
// the page title.
func (g *GenericConverter) Convert(pageHTML string, num int) (*Article, error) {
	markdown, err := g.converter.ConvertString(pageHTML)
	if err != nil {
		return nil, fmt.Errorf("converting page to markdown: %w", err)
	}
	title := pageTitle(pageHTML)
	return &Article{
		Num:      num,
		Title:    title,
		HTML:     pageHTML,
		Markdown: strings.TrimSpace(markdown),
		Slug:     makeSlug(num, title),
	}, nil
}

// pageTitle extracts the <title> text from a page, "" when absent.
func pageTitle(pageHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return ""
	}
	return collapseLines(doc.Find("title").First().Text())
}
