// Package domain defines the bookmark document model shared by the local
// store, the sync engine, and the mirror server.
package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/linkdeckapp/linkdeck/internal/id"
)

// Tag is a named label applicable to bookmarks across categories.
// Tags are owned by the root document; bookmarks hold id references only.
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Bookmark is a single saved link. Tags holds tag ids, not tag values;
// a dangling reference is a store bug (DeleteTag prunes in the same
// operation that removes the tag).
type Bookmark struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
}

// HasTag reports whether the bookmark references the given tag id.
func (b *Bookmark) HasTag(tagID string) bool {
	return slices.Contains(b.Tags, tagID)
}

// Category is a named, colored, ordered group of bookmarks. Bookmark
// order is user-controlled and survives save/load/import/export.
type Category struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Color     string     `json:"color"`
	Bookmarks []Bookmark `json:"bookmarks"`
}

// Bookmark returns the bookmark with the given id, or nil.
func (c *Category) Bookmark(bookmarkID string) *Bookmark {
	for i := range c.Bookmarks {
		if c.Bookmarks[i].ID == bookmarkID {
			return &c.Bookmarks[i]
		}
	}
	return nil
}

// Document is the full per-user bookmark collection. LastModified is the
// sole arbiter of sync precedence: it never decreases under any mutation.
type Document struct {
	Categories   []Category `json:"categories"`
	Tags         []Tag      `json:"tags,omitempty"`
	LastModified time.Time  `json:"last_modified"`
}

// Category returns the category with the given id, or nil.
func (d *Document) Category(categoryID string) *Category {
	for i := range d.Categories {
		if d.Categories[i].ID == categoryID {
			return &d.Categories[i]
		}
	}
	return nil
}

// Tag returns the tag with the given id, or nil.
func (d *Document) Tag(tagID string) *Tag {
	for i := range d.Tags {
		if d.Tags[i].ID == tagID {
			return &d.Tags[i]
		}
	}
	return nil
}

// TagByName returns the tag with the given name, matched
// case-insensitively, or nil. Tag names are unique under this comparison.
func (d *Document) TagByName(name string) *Tag {
	for i := range d.Tags {
		if strings.EqualFold(d.Tags[i].Name, name) {
			return &d.Tags[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the document. Snapshots handed to
// observers and query functions are clones so callers can never mutate
// the canonical document.
func (d *Document) Clone() *Document {
	out := &Document{
		Categories:   make([]Category, len(d.Categories)),
		LastModified: d.LastModified,
	}
	for i, c := range d.Categories {
		cc := c
		cc.Bookmarks = make([]Bookmark, len(c.Bookmarks))
		for j, b := range c.Bookmarks {
			bb := b
			if b.Tags != nil {
				bb.Tags = slices.Clone(b.Tags)
			}
			cc.Bookmarks[j] = bb
		}
		out.Categories[i] = cc
	}
	if d.Tags != nil {
		out.Tags = slices.Clone(d.Tags)
	}
	return out
}

// Normalize migrates a document loaded from storage or an imported
// snapshot into the canonical in-memory form: nil collections become
// empty, and tag references to ids missing from the tag registry are
// dropped. Applied once on load so consumers never see optional fields.
func (d *Document) Normalize() {
	if d.Categories == nil {
		d.Categories = []Category{}
	}
	if d.Tags == nil {
		d.Tags = []Tag{}
	}
	known := make(map[string]bool, len(d.Tags))
	for _, t := range d.Tags {
		known[t.ID] = true
	}
	for i := range d.Categories {
		c := &d.Categories[i]
		if c.Bookmarks == nil {
			c.Bookmarks = []Bookmark{}
		}
		for j := range c.Bookmarks {
			b := &c.Bookmarks[j]
			b.URL = NormalizeURL(b.URL)
			if len(b.Tags) == 0 {
				continue
			}
			b.Tags = slices.DeleteFunc(b.Tags, func(tagID string) bool {
				return !known[tagID]
			})
		}
	}
}

// Touch advances LastModified to now. Clock skew aside, time.Now is
// monotonic within a process, so LastModified never moves backwards.
func (d *Document) Touch() {
	d.LastModified = time.Now().UTC()
}

// NormalizeURL ensures a URL begins with an explicit scheme, defaulting
// to https.
func NormalizeURL(url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return url
	}
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	return "https://" + url
}

// DefaultDocument returns the starter document seeded on first load when
// nothing is persisted for the user.
func DefaultDocument() *Document {
	doc := &Document{
		Categories: []Category{
			{
				ID:    id.MustGenerate(id.PrefixCategory),
				Name:  "Hobbies",
				Color: "#4CAF50",
				Bookmarks: []Bookmark{
					{ID: id.MustGenerate(id.PrefixBookmark), Name: "YouTube", URL: "https://www.youtube.com", Description: "Videos"},
					{ID: id.MustGenerate(id.PrefixBookmark), Name: "Netflix", URL: "https://www.netflix.com", Description: "Movies and shows"},
				},
			},
			{
				ID:    id.MustGenerate(id.PrefixCategory),
				Name:  "Personal",
				Color: "#2196F3",
				Bookmarks: []Bookmark{
					{ID: id.MustGenerate(id.PrefixBookmark), Name: "Gmail", URL: "https://mail.google.com", Description: "Mail"},
				},
			},
		},
		Tags: []Tag{},
	}
	doc.Touch()
	return doc
}
