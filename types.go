package main

import "time"

// Article is one fetched what-if article together with its conversion
// products. Created by the fetcher, fully populated by a converter,
// immutable after that, persisted as an HTML/Markdown file pair.
type Article struct {
	Num       int // article number, 0 when it could not be resolved
	Title     string
	URL       string // canonical article URL
	HTML      string // raw article markup saved alongside the Markdown
	Markdown  string
	Slug      string // filename stem: zero-padded number plus title words
	FetchedAt time.Time
}
