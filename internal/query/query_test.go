package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkdeckapp/linkdeck/internal/domain"
)

func testDoc() *domain.Document {
	return &domain.Document{
		Categories: []domain.Category{
			{
				ID:   "cat-work",
				Name: "Work",
				Bookmarks: []domain.Bookmark{
					{ID: "bm-docs", Name: "Team Docs", URL: "https://docs.example.com", Description: "specs and notes"},
					{ID: "bm-ci", Name: "CI Dashboard", URL: "https://ci.example.com", Description: "", Tags: []string{"tag-infra"}},
				},
			},
			{
				ID:   "cat-fun",
				Name: "Fun",
				Bookmarks: []domain.Bookmark{
					{ID: "bm-tube", Name: "YouTube", URL: "https://youtube.com", Description: "videos", Tags: []string{"tag-infra", "tag-media"}},
				},
			},
			{ID: "cat-empty", Name: "Empty", Bookmarks: []domain.Bookmark{}},
		},
		Tags: []domain.Tag{
			{ID: "tag-infra", Name: "infra"},
			{ID: "tag-media", Name: "media"},
		},
	}
}

func TestSearch_MatchesAcrossFields(t *testing.T) {
	doc := testDoc()

	// Name match, case-insensitive.
	matches := Search(doc, "youtube")
	require.Len(t, matches, 1)
	assert.Equal(t, "bm-tube", matches[0].Bookmark.ID)
	assert.Equal(t, "Fun", matches[0].Category.Name)

	// URL match.
	matches = Search(doc, "ci.example")
	require.Len(t, matches, 1)
	assert.Equal(t, "bm-ci", matches[0].Bookmark.ID)

	// Description match.
	matches = Search(doc, "SPECS")
	require.Len(t, matches, 1)
	assert.Equal(t, "bm-docs", matches[0].Bookmark.ID)

	// Substring spanning categories.
	matches = Search(doc, "example.com")
	assert.Len(t, matches, 2)
}

func TestSearch_EmptyQuery(t *testing.T) {
	doc := testDoc()

	assert.Empty(t, Search(doc, ""))
	assert.Empty(t, Search(doc, "   "))
}

func TestSearch_NoMatches(t *testing.T) {
	assert.Empty(t, Search(testDoc(), "zzz-nothing"))
}

func TestFilterByTag(t *testing.T) {
	doc := testDoc()

	matches := FilterByTag(doc, "tag-infra")
	require.Len(t, matches, 2)
	assert.Equal(t, "bm-ci", matches[0].Bookmark.ID)
	assert.Equal(t, "bm-tube", matches[1].Bookmark.ID)

	matches = FilterByTag(doc, "tag-media")
	require.Len(t, matches, 1)
	assert.Equal(t, "bm-tube", matches[0].Bookmark.ID)

	assert.Empty(t, FilterByTag(doc, "tag-unknown"))
}

func TestGetStats(t *testing.T) {
	stats := GetStats(testDoc())
	assert.Equal(t, 3, stats.CategoryCount)
	assert.Equal(t, 3, stats.BookmarkCount)

	empty := GetStats(&domain.Document{})
	assert.Zero(t, empty.CategoryCount)
	assert.Zero(t, empty.BookmarkCount)
}
