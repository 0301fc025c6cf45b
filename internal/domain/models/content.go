package models

import "time"

// SourceKind selects the extraction strategy for a scraped page.
type SourceKind string

const (
	KindFeeTables          SourceKind = "fee_tables"
	KindFeeSections        SourceKind = "fee_sections"
	KindScholarshipSection SourceKind = "scholarship_section"
	KindEventsAnchor       SourceKind = "events_anchor"
	KindEventsTable        SourceKind = "events_table"
	KindEventsText         SourceKind = "events_text"
)

// ContentSource is one configured page to scrape.
type ContentSource struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	URL           string     `json:"url"`
	Kind          SourceKind `json:"kind"`
	Title         string     `json:"title,omitempty"`
	SectionTitles []string   `json:"section_titles,omitempty"`
}

// Event is a dated listing.
type Event struct {
	Title string  `json:"title"`
	Date  *string `json:"date"`
}

// Content is what an extraction strategy found on a page. Exactly one of the
// fields is populated, depending on the source kind.
type Content struct {
	Rows       []map[string]string            `json:"rows,omitempty"`
	Sections   map[string][]map[string]string `json:"sections,omitempty"`
	Paragraphs []string                       `json:"paragraphs,omitempty"`
	Events     []Event                        `json:"events,omitempty"`
}

// Empty reports whether nothing was extracted.
func (c *Content) Empty() bool {
	if c == nil {
		return true
	}
	if len(c.Rows) > 0 || len(c.Paragraphs) > 0 || len(c.Events) > 0 {
		return false
	}
	for _, rows := range c.Sections {
		if len(rows) > 0 {
			return false
		}
	}
	return true
}

// ContentSnapshot is a scraped result as cached and served.
type ContentSnapshot struct {
	SourceID    string     `json:"source_id"`
	Source      string     `json:"source"`
	URL         string     `json:"url"`
	Kind        SourceKind `json:"kind"`
	Content     Content    `json:"content"`
	LastUpdated time.Time  `json:"last_updated"`
	FromCache   bool       `json:"from_cache"`
	Note        string     `json:"note,omitempty"`
}
