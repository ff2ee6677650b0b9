package store

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"encoding/json/v2"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkdeckapp/linkdeck/internal/domain"
	"github.com/linkdeckapp/linkdeck/internal/errors"
)

func setupLocalStore(t *testing.T) (*LocalStore, *Store) {
	t.Helper()

	kv, err := New(filepath.Join(t.TempDir(), "db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewLocalStore(kv, "user_test", logger), kv
}

// emptyLocalStore returns a store with the starter content cleared out,
// so tests start from a blank document.
func emptyLocalStore(t *testing.T) *LocalStore {
	t.Helper()
	s, _ := setupLocalStore(t)
	for _, cat := range s.Snapshot().Categories {
		require.NoError(t, s.DeleteCategory(cat.ID))
	}
	return s
}

func TestNewLocalStore_SeedsDefaultDocument(t *testing.T) {
	s, _ := setupLocalStore(t)

	doc := s.Snapshot()
	require.Len(t, doc.Categories, 2)
	assert.Equal(t, "Hobbies", doc.Categories[0].Name)
	assert.Equal(t, "Personal", doc.Categories[1].Name)
}

func TestNewLocalStore_CorruptDocumentSelfHeals(t *testing.T) {
	kv, err := New(filepath.Join(t.TempDir(), "db"), nil)
	require.NoError(t, err)
	defer kv.Close()

	// Not a document at all.
	require.NoError(t, kv.Set(DocumentKey("user_test"), "garbage"))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewLocalStore(kv, "user_test", logger)

	doc := s.Snapshot()
	require.Len(t, doc.Categories, 2)

	// The replacement was persisted, not just held in memory.
	var persisted domain.Document
	require.NoError(t, kv.Get(DocumentKey("user_test"), &persisted))
	assert.Len(t, persisted.Categories, 2)
}

func TestLocalStore_SurvivesReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	kv, err := New(dir, nil)
	require.NoError(t, err)
	s := NewLocalStore(kv, "user_test", logger)
	cat, err := s.AddCategory("Work", "#FF0000")
	require.NoError(t, err)
	require.NoError(t, kv.Close())

	kv, err = New(dir, nil)
	require.NoError(t, err)
	defer kv.Close()
	s = NewLocalStore(kv, "user_test", logger)

	require.NotNil(t, s.Snapshot())
	assert.NotNil(t, s.Snapshot().Category(cat.ID))
}

func TestAddCategory(t *testing.T) {
	s := emptyLocalStore(t)

	cat, err := s.AddCategory("  Work  ", "#FF0000")
	require.NoError(t, err)
	assert.Equal(t, "Work", cat.Name)
	assert.Equal(t, "#FF0000", cat.Color)
	assert.NotEmpty(t, cat.ID)

	_, err = s.AddCategory("   ", "")
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestUpdateCategory(t *testing.T) {
	s := emptyLocalStore(t)
	cat, err := s.AddCategory("Work", "#FF0000")
	require.NoError(t, err)

	require.NoError(t, s.UpdateCategory(cat.ID, "Projects", "#00FF00"))
	got := s.Snapshot().Category(cat.ID)
	assert.Equal(t, "Projects", got.Name)
	assert.Equal(t, "#00FF00", got.Color)

	err = s.UpdateCategory("cat-missing", "X", "")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestDeleteCategory_RemovesOwnedBookmarks(t *testing.T) {
	s := emptyLocalStore(t)
	cat, err := s.AddCategory("Work", "")
	require.NoError(t, err)
	_, err = s.AddBookmark(cat.ID, "Docs", "docs.example", "")
	require.NoError(t, err)

	require.NoError(t, s.DeleteCategory(cat.ID))
	assert.Empty(t, s.Snapshot().Categories)

	err = s.DeleteCategory(cat.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestReorderCategories_MoveSemantics(t *testing.T) {
	s := emptyLocalStore(t)
	for _, name := range []string{"A", "B", "C", "D"} {
		_, err := s.AddCategory(name, "")
		require.NoError(t, err)
	}

	// Move A (index 0) to index 2: B and C shift left, D stays put.
	require.NoError(t, s.ReorderCategories(0, 2))
	names := categoryNames(s.Snapshot())
	assert.Equal(t, []string{"B", "C", "A", "D"}, names)

	// Move D (index 3) to the front.
	require.NoError(t, s.ReorderCategories(3, 0))
	names = categoryNames(s.Snapshot())
	assert.Equal(t, []string{"D", "B", "C", "A"}, names)

	// Same index is a no-op.
	require.NoError(t, s.ReorderCategories(1, 1))
	assert.Equal(t, names, categoryNames(s.Snapshot()))
}

func TestReorderCategories_RangeErrors(t *testing.T) {
	s := emptyLocalStore(t)
	_, err := s.AddCategory("A", "")
	require.NoError(t, err)
	_, err = s.AddCategory("B", "")
	require.NoError(t, err)

	assert.True(t, errors.Is(s.ReorderCategories(-1, 0), errors.ErrOutOfRange))
	assert.True(t, errors.Is(s.ReorderCategories(0, 2), errors.ErrOutOfRange))
	assert.True(t, errors.Is(s.ReorderCategories(5, 0), errors.ErrOutOfRange))

	// Failed reorders leave the order untouched.
	assert.Equal(t, []string{"A", "B"}, categoryNames(s.Snapshot()))
}

func TestAddBookmark_NormalizesURL(t *testing.T) {
	s := emptyLocalStore(t)
	cat, err := s.AddCategory("Work", "")
	require.NoError(t, err)

	bm, err := s.AddBookmark(cat.ID, "Docs", "docs.example.com", "reference")
	require.NoError(t, err)
	assert.Equal(t, "https://docs.example.com", bm.URL)

	_, err = s.AddBookmark(cat.ID, "", "docs.example.com", "")
	assert.True(t, errors.Is(err, errors.ErrValidation))
	_, err = s.AddBookmark(cat.ID, "Docs", "", "")
	assert.True(t, errors.Is(err, errors.ErrValidation))
	_, err = s.AddBookmark("cat-missing", "Docs", "docs.example.com", "")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestUpdateAndDeleteBookmark(t *testing.T) {
	s := emptyLocalStore(t)
	cat, err := s.AddCategory("Work", "")
	require.NoError(t, err)
	bm, err := s.AddBookmark(cat.ID, "Docs", "docs.example", "")
	require.NoError(t, err)

	require.NoError(t, s.UpdateBookmark(cat.ID, bm.ID, "Wiki", "wiki.example", "team wiki"))
	got := s.Snapshot().Category(cat.ID).Bookmark(bm.ID)
	assert.Equal(t, "Wiki", got.Name)
	assert.Equal(t, "https://wiki.example", got.URL)
	assert.Equal(t, "team wiki", got.Description)

	require.NoError(t, s.DeleteBookmark(cat.ID, bm.ID))
	assert.Nil(t, s.Snapshot().Category(cat.ID).Bookmark(bm.ID))

	err = s.DeleteBookmark(cat.ID, bm.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestReorderBookmarks(t *testing.T) {
	s := emptyLocalStore(t)
	cat, err := s.AddCategory("Work", "")
	require.NoError(t, err)
	for _, name := range []string{"a", "b", "c"} {
		_, err := s.AddBookmark(cat.ID, name, name+".example", "")
		require.NoError(t, err)
	}

	require.NoError(t, s.ReorderBookmarks(cat.ID, 2, 0))
	var names []string
	for _, bm := range s.Snapshot().Category(cat.ID).Bookmarks {
		names = append(names, bm.Name)
	}
	assert.Equal(t, []string{"c", "a", "b"}, names)

	assert.True(t, errors.Is(s.ReorderBookmarks(cat.ID, 0, 3), errors.ErrOutOfRange))
	assert.True(t, errors.Is(s.ReorderBookmarks("cat-missing", 0, 1), errors.ErrNotFound))
}

func TestAddTag_UniqueCaseInsensitive(t *testing.T) {
	s := emptyLocalStore(t)

	tag, err := s.AddTag("reading", "#AAA")
	require.NoError(t, err)
	assert.NotEmpty(t, tag.ID)

	_, err = s.AddTag("Reading", "#BBB")
	assert.True(t, errors.Is(err, errors.ErrConflict))

	_, err = s.AddTag("  ", "")
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestUpdateTag_NameCollision(t *testing.T) {
	s := emptyLocalStore(t)
	first, err := s.AddTag("reading", "")
	require.NoError(t, err)
	second, err := s.AddTag("writing", "")
	require.NoError(t, err)

	// Renaming onto another tag's name collides, case-insensitively.
	err = s.UpdateTag(second.ID, "READING", "")
	assert.True(t, errors.Is(err, errors.ErrConflict))

	// Recoloring under the same name is fine.
	require.NoError(t, s.UpdateTag(first.ID, "reading", "#CCC"))
	assert.Equal(t, "#CCC", s.Snapshot().Tag(first.ID).Color)
}

func TestDeleteTag_PrunesReferences(t *testing.T) {
	s := emptyLocalStore(t)
	cat, err := s.AddCategory("Work", "")
	require.NoError(t, err)
	bm1, err := s.AddBookmark(cat.ID, "Docs", "docs.example", "")
	require.NoError(t, err)
	bm2, err := s.AddBookmark(cat.ID, "Wiki", "wiki.example", "")
	require.NoError(t, err)
	tag, err := s.AddTag("reading", "")
	require.NoError(t, err)
	keep, err := s.AddTag("keep", "")
	require.NoError(t, err)

	require.NoError(t, s.TagBookmark(cat.ID, bm1.ID, tag.ID))
	require.NoError(t, s.TagBookmark(cat.ID, bm1.ID, keep.ID))
	require.NoError(t, s.TagBookmark(cat.ID, bm2.ID, tag.ID))

	require.NoError(t, s.DeleteTag(tag.ID))

	doc := s.Snapshot()
	assert.Nil(t, doc.Tag(tag.ID))
	assert.Equal(t, []string{keep.ID}, doc.Category(cat.ID).Bookmark(bm1.ID).Tags)
	assert.Empty(t, doc.Category(cat.ID).Bookmark(bm2.ID).Tags)
}

func TestTagBookmark_IdempotentAttach(t *testing.T) {
	s := emptyLocalStore(t)
	cat, err := s.AddCategory("Work", "")
	require.NoError(t, err)
	bm, err := s.AddBookmark(cat.ID, "Docs", "docs.example", "")
	require.NoError(t, err)
	tag, err := s.AddTag("reading", "")
	require.NoError(t, err)

	require.NoError(t, s.TagBookmark(cat.ID, bm.ID, tag.ID))
	require.NoError(t, s.TagBookmark(cat.ID, bm.ID, tag.ID))
	assert.Equal(t, []string{tag.ID}, s.Snapshot().Category(cat.ID).Bookmark(bm.ID).Tags)

	err = s.TagBookmark(cat.ID, bm.ID, "tag-missing")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestUntagBookmark(t *testing.T) {
	s := emptyLocalStore(t)
	cat, err := s.AddCategory("Work", "")
	require.NoError(t, err)
	bm, err := s.AddBookmark(cat.ID, "Docs", "docs.example", "")
	require.NoError(t, err)
	tag, err := s.AddTag("reading", "")
	require.NoError(t, err)
	require.NoError(t, s.TagBookmark(cat.ID, bm.ID, tag.ID))

	require.NoError(t, s.UntagBookmark(cat.ID, bm.ID, tag.ID))
	assert.Empty(t, s.Snapshot().Category(cat.ID).Bookmark(bm.ID).Tags)

	err = s.UntagBookmark(cat.ID, bm.ID, tag.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestExportImport_RoundTrip(t *testing.T) {
	s := emptyLocalStore(t)
	cat, err := s.AddCategory("Work", "#FF0000")
	require.NoError(t, err)
	bm, err := s.AddBookmark(cat.ID, "Docs", "docs.example", "reference")
	require.NoError(t, err)
	tag, err := s.AddTag("reading", "#AAA")
	require.NoError(t, err)
	require.NoError(t, s.TagBookmark(cat.ID, bm.ID, tag.ID))

	before := s.Snapshot()

	data, err := s.ExportSnapshot()
	require.NoError(t, err)
	require.NoError(t, s.ImportSnapshot(data))

	after := s.Snapshot()
	assert.Equal(t, before.Categories, after.Categories)
	assert.Equal(t, before.Tags, after.Tags)
}

func TestImportSnapshot_Idempotent(t *testing.T) {
	s := emptyLocalStore(t)
	_, err := s.AddCategory("Work", "")
	require.NoError(t, err)

	data, err := s.ExportSnapshot()
	require.NoError(t, err)

	require.NoError(t, s.ImportSnapshot(data))
	once := s.Snapshot()
	require.NoError(t, s.ImportSnapshot(data))
	twice := s.Snapshot()

	assert.Equal(t, once.Categories, twice.Categories)
	assert.Equal(t, once.Tags, twice.Tags)
}

func TestImportSnapshot_DefaultsMissingTagFields(t *testing.T) {
	s := emptyLocalStore(t)

	// An export from before tags existed: categories only.
	legacy := []byte(`{"categories":[{"id":"cat-1","name":"Old","color":"","bookmarks":[{"id":"bm-1","name":"Site","url":"site.example","description":""}]}]}`)
	require.NoError(t, s.ImportSnapshot(legacy))

	doc := s.Snapshot()
	require.Len(t, doc.Categories, 1)
	assert.NotNil(t, doc.Tags)
	assert.Empty(t, doc.Tags)
	assert.Equal(t, "https://site.example", doc.Categories[0].Bookmarks[0].URL)
}

func TestImportSnapshot_RejectsBadPayloads(t *testing.T) {
	s := emptyLocalStore(t)
	_, err := s.AddCategory("Keep", "")
	require.NoError(t, err)

	assert.True(t, errors.Is(s.ImportSnapshot([]byte("not json")), errors.ErrFormat))
	assert.True(t, errors.Is(s.ImportSnapshot([]byte(`{"tags":[]}`)), errors.ErrFormat))

	// The document is untouched after a rejected import.
	assert.Equal(t, []string{"Keep"}, categoryNames(s.Snapshot()))
}

func TestExportSnapshot_ExcludesLastModified(t *testing.T) {
	s := emptyLocalStore(t)
	data, err := s.ExportSnapshot()
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	_, present := raw["last_modified"]
	assert.False(t, present)
}

func TestSave_StampsLastModified(t *testing.T) {
	s := emptyLocalStore(t)
	before := s.Snapshot().LastModified

	time.Sleep(2 * time.Millisecond)
	_, err := s.AddCategory("Work", "")
	require.NoError(t, err)

	assert.True(t, s.Snapshot().LastModified.After(before))
}

func TestObserver_NotifiedOnMutation(t *testing.T) {
	s := emptyLocalStore(t)

	var seen []*domain.Document
	s.OnDocumentChanged(func(doc *domain.Document) { seen = append(seen, doc) })

	_, err := s.AddCategory("Work", "")
	require.NoError(t, err)
	require.Len(t, seen, 1)

	// The observer's snapshot is a clone; mutating it is harmless.
	seen[0].Categories[0].Name = "Tampered"
	assert.Equal(t, "Work", s.Snapshot().Categories[0].Name)
}

func TestReplaceFromRemoteIfNewer(t *testing.T) {
	s := emptyLocalStore(t)
	_, err := s.AddCategory("Local", "")
	require.NoError(t, err)
	local := s.Snapshot()

	older := &domain.Document{
		Categories:   []domain.Category{{ID: "cat-r", Name: "Remote", Bookmarks: []domain.Bookmark{}}},
		LastModified: local.LastModified.Add(-time.Hour),
	}
	replaced, err := s.ReplaceFromRemoteIfNewer(older)
	require.NoError(t, err)
	assert.False(t, replaced)
	assert.Equal(t, []string{"Local"}, categoryNames(s.Snapshot()))

	// Equal timestamps are suppressed too: strictly greater only.
	equal := older.Clone()
	equal.LastModified = local.LastModified
	replaced, err = s.ReplaceFromRemoteIfNewer(equal)
	require.NoError(t, err)
	assert.False(t, replaced)

	newer := older.Clone()
	newer.LastModified = local.LastModified.Add(time.Hour)
	replaced, err = s.ReplaceFromRemoteIfNewer(newer)
	require.NoError(t, err)
	assert.True(t, replaced)
	assert.Equal(t, []string{"Remote"}, categoryNames(s.Snapshot()))
	assert.Equal(t, newer.LastModified, s.Snapshot().LastModified)
}

func TestReplaceFromRemote_KeepsRemoteTimestampAndSkipsPropagator(t *testing.T) {
	s := emptyLocalStore(t)

	pushes := 0
	s.AttachPropagator(propagatorFunc(func(doc *domain.Document) { pushes++ }))

	remote := &domain.Document{
		Categories:   []domain.Category{{ID: "cat-r", Name: "Remote", Bookmarks: []domain.Bookmark{}}},
		LastModified: time.Now().UTC().Add(time.Hour),
	}
	require.NoError(t, s.ReplaceFromRemote(remote))

	assert.Equal(t, remote.LastModified, s.Snapshot().LastModified)
	assert.Zero(t, pushes)
}

// propagatorFunc adapts a func to the Propagator interface.
type propagatorFunc func(doc *domain.Document)

func (f propagatorFunc) Push(doc *domain.Document) { f(doc) }

func categoryNames(doc *domain.Document) []string {
	names := make([]string, 0, len(doc.Categories))
	for _, c := range doc.Categories {
		names = append(names, c.Name)
	}
	return names
}
