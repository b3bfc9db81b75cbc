package main

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// RetrievalError reports a response the site returned but we cannot use:
// a non-2xx status or a non-HTML body.
type RetrievalError struct {
	StatusCode  int
	ContentType string
	URL         string
}

func (e *RetrievalError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("unexpected content type %q for %s", e.ContentType, e.URL)
}

// ConnectionError reports a transport failure before any status code
// became available.
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connecting to %s: %v", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// PageFetcher downloads article pages from the configured site. One GET
// per article, no retries, no caching.
type PageFetcher struct {
	baseURL string
	client  *http.Client
}

func NewPageFetcher(baseURL string) *PageFetcher {
	return &PageFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// ArticleURL returns the page URL for an article number, or the latest
// article's URL when num is not positive.
func (f *PageFetcher) ArticleURL(num int) string {
	if num <= 0 {
		return f.baseURL
	}
	return fmt.Sprintf("%s/%d/", f.baseURL, num)
}

// FetchArticle performs a single GET for the article page. It returns
// the raw page HTML and the article number resolved from the final
// request URL, which stays 0 for the latest-article endpoint when the
// site does not redirect to a numbered page.
func (f *PageFetcher) FetchArticle(num int) (string, int, error) {
	url := f.ArticleURL(num)
	resp, err := f.client.Get(url)
	if err != nil {
		return "", 0, &ConnectionError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, &RetrievalError{StatusCode: resp.StatusCode, URL: url}
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		return "", 0, &RetrievalError{ContentType: ct, URL: url}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, &ConnectionError{URL: url, Err: err}
	}

	resolved := num
	if resolved <= 0 && resp.Request != nil && resp.Request.URL != nil {
		resolved = numberFromURL(resp.Request.URL.String())
	}
	return string(body), resolved, nil
}

// numberFromURL extracts a trailing /<num>/ article number, 0 if absent.
func numberFromURL(url string) int {
	trimmed := strings.TrimRight(url, "/")
	i := strings.LastIndex(trimmed, "/")
	if i < 0 {
		return 0
	}
	num, err := strconv.Atoi(trimmed[i+1:])
	if err != nil || num <= 0 {
		return 0
	}
	return num
}

// titlePlaceholder stands in for reference titles that could not be
// resolved; the value is meant to be grepped for during review.
const titlePlaceholder = "TODO"

// PageTitle fetches a page and returns its <title> text, used to
// decorate reference-style link definitions. Lookups are best effort: a
// failed download or a missing title degrades to a placeholder and
// never aborts a conversion.
func (f *PageFetcher) PageTitle(url string) string {
	resp, err := f.client.Get(url)
	if err != nil {
		log.Printf("Warning: cannot get a title for %s: %v", url, err)
		return titlePlaceholder
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Warning: cannot get a title for %s: HTTP %d", url, resp.StatusCode)
		return titlePlaceholder
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		return titlePlaceholder
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		log.Printf("Warning: cannot parse %s: %v", url, err)
		return titlePlaceholder
	}
	title := collapseLines(findTitle(doc))
	if title == "" {
		return titlePlaceholder
	}
	return title
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if title := findTitle(c); title != "" {
			return title
		}
	}
	return ""
}

// collapseLines joins a multi-line string into one space-separated line.
func collapseLines(s string) string {
	var parts []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}
