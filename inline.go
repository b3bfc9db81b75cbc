package main

import (
	"fmt"
	"log"
	"strings"

	"golang.org/x/net/html"
)

// Inline conversion: everything below the top-level blocks. The rules
// recurse through nested markup, alternating emphasis markers per
// nesting level so that *a_b_c* style output stays unambiguous.

// inlineContent renders the inline content of an element with the
// default emphasis markers.
func (c *Converter) inlineContent(n *html.Node, st *convState) string {
	return c.inlineChildren(n, st, "*", "**")
}

func (c *Converter) inlineChildren(n *html.Node, st *convState, emMark, strongMark string) string {
	var b strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case html.TextNode:
			b.WriteString(child.Data)
		case html.ElementNode:
			b.WriteString(c.inlineElement(child, st, emMark, strongMark))
		}
	}
	return b.String()
}

func (c *Converter) inlineElement(n *html.Node, st *convState, emMark, strongMark string) string {
	switch n.Data {
	case "em":
		childMark := "_"
		if emMark == "_" {
			childMark = "*"
		}
		return emMark + c.inlineChildren(n, st, childMark, "**") + emMark
	case "strong":
		childMark := "__"
		if strongMark == "__" {
			childMark = "**"
		}
		return strongMark + c.inlineChildren(n, st, "*", childMark) + strongMark
	case "a":
		return c.inlineLink(n, st)
	case "span":
		return c.inlineSpan(n, st)
	case "sup":
		return "^{" + c.inlineChildren(n, st, "*", "**") + "}"
	case "sub":
		return "_{" + c.inlineChildren(n, st, "*", "**") + "}"
	case "br":
		return parSep
	case "img":
		return c.imageMarkdown(n)
	default:
		// Unknown inline markup passes through as raw HTML rather than
		// losing content or aborting the article.
		return rawHTML(n)
	}
}

// inlineLink renders an <a> as a reference-style link [text][n] and
// queues the definition for the end of the document.
func (c *Converter) inlineLink(n *html.Node, st *convState) string {
	res := fmt.Sprintf("[%s][%d]", innerHTML(n), st.refCounter)

	target := attr(n, "href")
	if full, err := fullURL(target, c.BaseURL); err == nil {
		target = full
	} else {
		log.Printf("Warning: link target: %v", err)
	}
	st.references = append(st.references, reference{num: st.refCounter, url: target})
	st.refCounter++
	return res
}

// inlineSpan recognizes the site's footnote markup: <span class="ref">
// wrapping a <span class="refbody"> with the note text. The marker
// [^n] goes inline and the body is queued until the enclosing block
// flushes it. Any other span passes through as raw HTML.
func (c *Converter) inlineSpan(n *html.Node, st *convState) string {
	if !hasClass(n, "ref") {
		return rawHTML(n)
	}
	body := findChildWithClass(n, "span", "refbody")
	if body == nil {
		log.Printf("Warning: footnote span without refbody, keeping raw")
		return rawHTML(n)
	}

	res := fmt.Sprintf("[^%d]", st.fnCounter)
	parsed := strings.TrimSpace(c.inlineContent(body, st))
	multipar := strings.Contains(parsed, parSep)
	if multipar {
		parsed = c.indentFootnote(parsed)
	}
	st.footnotes = append(st.footnotes, footnote{
		num:      st.fnCounter,
		body:     parsed,
		multipar: multipar,
	})
	st.fnCounter++
	return res
}

// indentFootnote prefixes every line of a multi-paragraph footnote body
// with the configured indent so Markdown keeps the paragraphs attached
// to the note.
func (c *Converter) indentFootnote(body string) string {
	indent := c.footnoteIndent()
	var b strings.Builder
	for _, par := range strings.Split(body, parSep) {
		var block strings.Builder
		for _, line := range strings.Split(par, lineBreak) {
			block.WriteString(indent + line + lineBreak)
		}
		b.WriteString(strings.TrimRight(block.String(), "\n"))
		b.WriteString(parSep)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Node helpers shared by the conversion rules.

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func findChild(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
	}
	return nil
}

func findChildWithClass(n *html.Node, tag, class string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag && hasClass(c, class) {
			return c
		}
	}
	return nil
}

func hasElementChildren(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return true
		}
	}
	return false
}

// textContent concatenates all text under a node, dropping markup.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// innerHTML serializes the children of a node, markup included.
func innerHTML(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&b, c)
	}
	return strings.TrimSpace(b.String())
}

// rawHTML serializes a node itself, markup included.
func rawHTML(n *html.Node) string {
	var b strings.Builder
	_ = html.Render(&b, n)
	return b.String()
}
