// Package query provides read-only queries over a document snapshot:
// free-text search, tag filtering, and aggregate stats. Everything here
// is a pure function; results are derived on demand and never cached.
package query

import (
	"strings"

	"github.com/linkdeckapp/linkdeck/internal/domain"
)

// Match pairs a bookmark with its owning category.
type Match struct {
	Bookmark domain.Bookmark
	Category domain.Category
}

// Stats holds the aggregate counts shown in the header bar.
type Stats struct {
	CategoryCount int `json:"category_count"`
	BookmarkCount int `json:"bookmark_count"`
}

// Search returns bookmarks whose name, URL, or description contains the
// query, matched case-insensitively. An empty query yields an empty
// result: "show everything" is the unfiltered document, not a search.
func Search(doc *domain.Document, q string) []Match {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return nil
	}

	var matches []Match
	for _, cat := range doc.Categories {
		for _, bm := range cat.Bookmarks {
			if strings.Contains(strings.ToLower(bm.Name), q) ||
				strings.Contains(strings.ToLower(bm.URL), q) ||
				strings.Contains(strings.ToLower(bm.Description), q) {
				matches = append(matches, Match{Bookmark: bm, Category: cat})
			}
		}
	}
	return matches
}

// FilterByTag returns every bookmark whose tag set contains the given
// tag id, paired with its owning category.
func FilterByTag(doc *domain.Document, tagID string) []Match {
	var matches []Match
	for _, cat := range doc.Categories {
		for _, bm := range cat.Bookmarks {
			if bm.HasTag(tagID) {
				matches = append(matches, Match{Bookmark: bm, Category: cat})
			}
		}
	}
	return matches
}

// GetStats recomputes the aggregate counts.
func GetStats(doc *domain.Document) Stats {
	s := Stats{CategoryCount: len(doc.Categories)}
	for _, cat := range doc.Categories {
		s.BookmarkCount += len(cat.Bookmarks)
	}
	return s
}
