package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"
)

// ArticleWriter persists one fetched article as a raw-HTML and a
// Markdown file pair named <slug>-<timestamp>.{html,md}. The timestamp
// carries the configured fixed zone offset, so repeated runs never
// collide.
type ArticleWriter struct {
	outputDir     string
	zone          *time.Location
	nativeNewline bool
}

func NewArticleWriter(outputDir string, tzOffsetHours int, nativeNewline bool) *ArticleWriter {
	if outputDir == "" {
		outputDir = "."
	}
	name := fmt.Sprintf("UTC%+d", tzOffsetHours)
	return &ArticleWriter{
		outputDir:     outputDir,
		zone:          time.FixedZone(name, tzOffsetHours*3600),
		nativeNewline: nativeNewline,
	}
}

// Save writes both files for an article. The pair is both-or-neither:
// a failed Markdown write removes the HTML file written just before it.
func (w *ArticleWriter) Save(article *Article) (htmlFile, mdFile string, err error) {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return "", "", fmt.Errorf("creating output directory: %w", err)
	}

	stamp := article.FetchedAt.In(w.zone).Format("20060102-150405-0700")
	htmlFile = filepath.Join(w.outputDir, fmt.Sprintf("%s-%s.html", article.Slug, stamp))
	mdFile = filepath.Join(w.outputDir, fmt.Sprintf("%s-%s.md", article.Slug, stamp))

	if err := w.writeFile(htmlFile, article.HTML); err != nil {
		return "", "", err
	}
	if err := w.writeFile(mdFile, article.Markdown); err != nil {
		os.Remove(htmlFile)
		return "", "", err
	}
	return htmlFile, mdFile, nil
}

func (w *ArticleWriter) writeFile(name, content string) error {
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if w.nativeNewline && runtime.GOOS == "windows" {
		content = strings.ReplaceAll(content, "\n", "\r\n")
	}
	if err := os.WriteFile(name, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	infoLog("Wrote %s", name)
	return nil
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// slugify normalizes a title into filename-safe words.
func slugify(title string) string {
	slug := strings.ToLower(title)
	slug = nonSlugChars.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	// Keep filenames short enough for any filesystem.
	if len(slug) > 50 {
		slug = strings.Trim(slug[:50], "-")
	}
	if slug == "" {
		return "article"
	}
	return slug
}

// makeSlug builds the filename stem: the article number zero-padded to
// three digits, then the normalized title.
func makeSlug(num int, title string) string {
	return fmt.Sprintf("%03d-%s", num, slugify(title))
}
