package main

import (
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Markdown block separators shared by every conversion rule.
const (
	lineBreak = "\n"
	parSep    = "\n\n"
)

const defaultFootnoteIndent = "    "

// ParseError reports that the expected article structure is missing
// from the page. In practice this means the site layout changed and the
// locator below needs to be re-versioned against the live markup.
type ParseError struct {
	Missing string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("page layout not recognized: no %s found", e.Missing)
}

// TitleResolver supplies page titles for reference-style link
// definitions. The converter itself never touches the network; the CLI
// wires the fetcher in here and tests wire a stub.
type TitleResolver interface {
	PageTitle(url string) string
}

// Converter renders a what-if article page as Markdown by walking the
// direct children of the <article> element and dispatching each one to
// a per-tag rule.
type Converter struct {
	BaseURL string
	Titles  TitleResolver
	// FootnoteIndent replaces the four-space indent of multi-paragraph
	// footnote bodies. The translation site swallows leading spaces, so
	// the config ships a visible marker to be replaced by hand.
	FootnoteIndent string
}

// reference is one pending reference-style link definition.
type reference struct {
	num int
	url string
}

// footnote is one pending footnote definition, flushed after the block
// that introduced it.
type footnote struct {
	num      int
	body     string
	multipar bool
}

// convState accumulates the output of one conversion run. It is owned
// by a single Convert call and passed explicitly through the rules.
type convState struct {
	out        strings.Builder
	title      string
	slug       string
	url        string
	num        int
	refCounter int
	fnCounter  int
	references []reference
	footnotes  []footnote
}

type toplevelRule func(c *Converter, n *html.Node, st *convState)

// toplevelRules maps a tag name of a direct <article> child to its
// conversion rule. Anything not listed here is skipped with a warning.
var toplevelRules = map[string]toplevelRule{
	"a":          (*Converter).toplevelAnchor,
	"p":          (*Converter).toplevelParagraph,
	"blockquote": (*Converter).toplevelBlockquote,
	"img":        (*Converter).toplevelImage,
	"ul":         (*Converter).toplevelList,
	"ol":         (*Converter).toplevelList,
	"h1":         (*Converter).toplevelHeading,
	"h2":         (*Converter).toplevelHeading,
	"h3":         (*Converter).toplevelHeading,
	"h4":         (*Converter).toplevelHeading,
	"h5":         (*Converter).toplevelHeading,
	"h6":         (*Converter).toplevelHeading,
}

// Convert parses a full page, locates the article body and renders it
// as Markdown. The num argument is a hint from the fetcher; the header
// anchor inside the article overrides it when present. Same page plus
// same resolver answers always produce byte-identical output.
func (c *Converter) Convert(pageHTML string, num int) (*Article, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return nil, &ParseError{Missing: "parsable HTML document"}
	}
	sel := doc.Find("body article").First()
	if sel.Length() == 0 {
		return nil, &ParseError{Missing: "article element"}
	}
	article := sel.Nodes[0]

	st := &convState{
		num:        num,
		refCounter: 1,
		fnCounter:  1,
	}

	total := 0
	for child := article.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode {
			total++
		}
	}

	processed := 0
	for child := article.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.ElementNode {
			continue
		}
		infoLog("Processed %d/%d top level elements", processed, total)
		if rule, ok := toplevelRules[child.Data]; ok {
			rule(c, child, st)
		} else {
			log.Printf("Warning: unexpected toplevel element: %s", child.Data)
		}
		processed++
	}
	infoLog("Processed %d/%d top level elements", processed, total)

	c.appendReferences(st)

	if st.title == "" {
		st.title = collapseLines(doc.Find("title").First().Text())
	}
	if st.slug == "" {
		st.slug = makeSlug(st.num, st.title)
	}
	if st.url == "" {
		st.url = c.BaseURL
	}

	return &Article{
		Num:      st.num,
		Title:    st.title,
		URL:      st.url,
		HTML:     innerHTML(article),
		Markdown: strings.TrimSpace(st.out.String()),
		Slug:     st.slug,
	}, nil
}

// toplevelAnchor handles the article header: an <a> wrapping the <h1>
// title and linking to the article's canonical URL. It is the primary
// source of the number, title and slug.
func (c *Converter) toplevelAnchor(n *html.Node, st *convState) {
	h1 := findChild(n, "h1")
	if h1 == nil {
		log.Printf("Warning: header anchor without h1, skipping")
		return
	}
	title := strings.TrimSpace(textContent(h1))

	articleURL, err := fullURL(attr(n, "href"), c.BaseURL)
	if err != nil {
		log.Printf("Warning: header anchor url: %v", err)
		articleURL = c.BaseURL
	}
	if num := numberFromURL(articleURL); num > 0 {
		st.num = num
	}

	st.title = title
	st.url = articleURL
	st.slug = makeSlug(st.num, title)

	st.out.WriteString(title + lineBreak)
	st.out.WriteString(articleURL + parSep)
}

func (c *Converter) toplevelHeading(n *html.Node, st *convState) {
	level := int(n.Data[1] - '0')
	text := collapseLines(textContent(n))
	st.out.WriteString(strings.Repeat("#", level) + " " + text + parSep)
}

// toplevelParagraph handles a <p> child. Paragraphs with id "question"
// or "attribute" are the asker's quote and render as a blockquote; a
// paragraph holding only a display formula renders as $$ .. $$.
// Footnotes collected while processing the paragraph are flushed right
// after it.
func (c *Converter) toplevelParagraph(n *html.Node, st *convState) {
	id := attr(n, "id")
	isQuestion := id == "question"
	isAttribute := id == "attribute"

	if isQuestion || isAttribute {
		st.out.WriteString("> ")
	}
	st.out.WriteString(c.blockContent(n, st))
	if isQuestion {
		st.out.WriteString(lineBreak + ">" + lineBreak)
	} else {
		st.out.WriteString(parSep)
	}
	st.out.WriteString(c.popFootnotes(st))
}

func (c *Converter) toplevelBlockquote(n *html.Node, st *convState) {
	body := c.blockContent(n, st)
	for i, line := range strings.Split(body, "\n") {
		if i > 0 {
			st.out.WriteString("\n")
		}
		if line == "" {
			st.out.WriteString(">")
		} else {
			st.out.WriteString("> " + line)
		}
	}
	st.out.WriteString(parSep)
	st.out.WriteString(c.popFootnotes(st))
}

func (c *Converter) toplevelImage(n *html.Node, st *convState) {
	st.out.WriteString(c.imageMarkdown(n) + parSep)
}

func (c *Converter) toplevelList(n *html.Node, st *convState) {
	ordered := n.Data == "ol"
	idx := 1
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		item := strings.TrimSpace(c.inlineContent(li, st))
		if ordered {
			fmt.Fprintf(&st.out, "%d. %s\n", idx, item)
		} else {
			st.out.WriteString("- " + item + "\n")
		}
		idx++
	}
	st.out.WriteString(lineBreak)
	st.out.WriteString(c.popFootnotes(st))
}

// blockContent renders the content of a block element, recognizing a
// MathJax display formula when the block holds nothing but text.
func (c *Converter) blockContent(n *html.Node, st *convState) string {
	if !hasElementChildren(n) {
		if formula, ok := displayFormula(textContent(n)); ok {
			return formula
		}
	}
	return strings.TrimSpace(c.inlineContent(n, st))
}

// imageMarkdown renders one <img>. Missing attributes become empty
// strings rather than errors.
func (c *Converter) imageMarkdown(n *html.Node) string {
	src := attr(n, "src")
	if src != "" {
		if full, err := fullURL(src, c.BaseURL); err == nil {
			src = full
		}
	}
	alt := attr(n, "alt")
	if title := attr(n, "title"); title != "" {
		return fmt.Sprintf("![%s](%s %q)", alt, src, title)
	}
	return fmt.Sprintf("![%s](%s)", alt, src)
}

// popFootnotes renders and clears the footnotes collected so far.
// Multi-paragraph bodies go on their own lines; when a non-default
// indent marker is configured a reminder line flags the spots to fix up
// after pasting into the translation site.
func (c *Converter) popFootnotes(st *convState) string {
	var b strings.Builder
	for _, fn := range st.footnotes {
		if fn.multipar {
			if indent := c.footnoteIndent(); indent != defaultFootnoteIndent {
				fmt.Fprintf(&b, "TODO: replace %q with %q\n", indent, defaultFootnoteIndent)
			}
			fmt.Fprintf(&b, "[^%d]:\n%s", fn.num, fn.body)
		} else {
			fmt.Fprintf(&b, "[^%d]: %s", fn.num, fn.body)
		}
		b.WriteString(parSep)
	}
	st.footnotes = st.footnotes[:0]
	return b.String()
}

func (c *Converter) footnoteIndent() string {
	if c.FootnoteIndent == "" {
		return defaultFootnoteIndent
	}
	return c.FootnoteIndent
}

// appendReferences emits the reference-style link definitions gathered
// during the walk.
func (c *Converter) appendReferences(st *convState) {
	if len(st.references) == 0 {
		return
	}
	infoLog("Postprocessing references...")
	total := len(st.references)
	for i, ref := range st.references {
		title := titlePlaceholder
		if c.Titles != nil {
			infoLog("[title %d/%d] Resolving %s", i+1, total, ref.url)
			title = c.Titles.PageTitle(ref.url)
		}
		title = strings.ReplaceAll(title, `"`, `\"`)
		fmt.Fprintf(&st.out, "[%d]: %s \"%s\"", ref.num, ref.url, title)
		st.out.WriteString(parSep)
	}
}

// displayFormula detects a MathJax display formula and rewrites it in
// the $$ .. $$ form.
func displayFormula(text string) (string, bool) {
	t := strings.TrimSpace(text)
	if strings.HasPrefix(t, `\[`) && strings.HasSuffix(t, `\]`) && len(t) >= 4 {
		return "$$ " + strings.TrimSpace(t[2:len(t)-2]) + " $$", true
	}
	return "", false
}

// fullURL resolves a link target against the page it appeared on. The
// context URL is assumed absolute. Bare relative paths are rejected:
// the site does not use them, so meeting one means the layout changed.
func fullURL(rawURL, contextURL string) (string, error) {
	switch {
	case rawURL == "":
		return "", fmt.Errorf("empty url")
	case strings.HasPrefix(rawURL, "#"):
		page := strings.SplitN(contextURL, "#", 2)[0]
		return page + rawURL, nil
	case strings.HasPrefix(rawURL, "//"):
		proto := strings.SplitN(contextURL, ":", 2)[0]
		return proto + ":" + rawURL, nil
	case strings.HasPrefix(rawURL, "/"):
		base, err := url.Parse(contextURL)
		if err != nil {
			return "", fmt.Errorf("parsing context url %q: %w", contextURL, err)
		}
		return base.Scheme + "://" + base.Host + rawURL, nil
	case strings.HasPrefix(rawURL, "http://"),
		strings.HasPrefix(rawURL, "https://"),
		strings.HasPrefix(rawURL, "ftp://"):
		return rawURL, nil
	default:
		return "", fmt.Errorf("cannot resolve relative url %q", rawURL)
	}
}
