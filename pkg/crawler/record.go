package crawler

import "ohoucrawl/pkg/ohou"

// Record is one normalized crawl result.
//
// URL is nil for feed cards. Keywords distinguishes three states: nil when the
// item carries no tags, empty when the upstream sent an empty list, and
// non-empty otherwise. Timestamp is nil when the listing omitted created_at.
type Record struct {
	Query     string        `json:"query" yaml:"query"`
	Type      ohou.Category `json:"type" yaml:"type"`
	URL       *string       `json:"url,omitempty" yaml:"url,omitempty"`
	Text      string        `json:"text" yaml:"text"`
	Keywords  []string      `json:"keywords" yaml:"keywords"`
	Timestamp *string       `json:"timestamp" yaml:"timestamp"`
}

func feedRecord(query string, item ohou.Item) Record {
	rec := Record{
		Query:     query,
		Type:      ohou.Feeds,
		Keywords:  item.Keywords,
		Timestamp: item.CreatedAt,
	}
	if item.Description != nil {
		rec.Text = *item.Description
	}
	return rec
}
