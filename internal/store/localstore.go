package store

import (
	"log/slog"
	"strings"
	"sync"

	"encoding/json/v2"

	"github.com/linkdeckapp/linkdeck/internal/domain"
	"github.com/linkdeckapp/linkdeck/internal/errors"
	"github.com/linkdeckapp/linkdeck/internal/id"
)

// Propagator receives a snapshot of the document after every successful
// local save. The sync engine implements this; the indirection keeps the
// store free of any dependency on sync internals.
type Propagator interface {
	Push(doc *domain.Document)
}

// Observer is notified with a snapshot after every successful local
// mutation or remote overwrite, so a presentation layer can re-render
// without polling.
type Observer func(doc *domain.Document)

// LocalStore owns the canonical in-memory document for one user and its
// durable mirror in Badger. It is the exclusive in-process writer: every
// mutator runs to completion under the lock before the next is accepted,
// so observers and the propagator always see a consistent document.
type LocalStore struct {
	mu         sync.Mutex
	kv         *Store
	userID     string
	doc        *domain.Document
	logger     *slog.Logger
	observer   Observer
	propagator Propagator
}

// NewLocalStore opens the document for the given user. A missing or
// unreadable persisted document is replaced with the default starter
// document rather than failing: corrupt local state is self-healing.
func NewLocalStore(kv *Store, userID string, logger *slog.Logger) *LocalStore {
	s := &LocalStore{kv: kv, userID: userID, logger: logger}
	s.load()
	return s
}

// load reads the persisted document, falling back to the default.
func (s *LocalStore) load() {
	var doc domain.Document
	err := s.kv.Get(DocumentKey(s.userID), &doc)
	switch {
	case err == nil:
		doc.Normalize()
		s.doc = &doc
	case errors.Is(err, ErrKeyNotFound):
		s.doc = domain.DefaultDocument()
		if err := s.persist(); err != nil {
			s.logger.Warn("failed to persist default document", "error", err)
		}
	default:
		s.logger.Warn("persisted document unreadable, replacing with default", "error", err)
		s.doc = domain.DefaultDocument()
		if err := s.persist(); err != nil {
			s.logger.Warn("failed to persist default document", "error", err)
		}
	}
}

// UserID returns the identity this store is bound to.
func (s *LocalStore) UserID() string {
	return s.userID
}

// Snapshot returns a deep copy of the current document. Local reads
// never block on persistence or network work.
func (s *LocalStore) Snapshot() *domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// OnDocumentChanged registers the observer. Passing nil clears it.
func (s *LocalStore) OnDocumentChanged(fn Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = fn
}

// AttachPropagator wires the sync engine into save. Passing nil detaches.
func (s *LocalStore) AttachPropagator(p Propagator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.propagator = p
}

// persist writes the current document to Badger.
func (s *LocalStore) persist() error {
	if err := s.kv.Set(DocumentKey(s.userID), s.doc); err != nil {
		return errors.Persistence("failed to save bookmarks locally", err)
	}
	return nil
}

// save stamps LastModified, persists, and fans out to the observer and
// the propagator. Must be called with the lock held; the snapshot handed
// out is a clone, so the fan-out can safely outlive the lock.
//
// A persistence failure is returned to the caller (it means the edit is
// not durable) but the in-memory mutation stands, and the propagator is
// still invoked so the remote copy does not fall behind.
func (s *LocalStore) save() error {
	s.doc.Touch()
	err := s.persist()

	snapshot := s.doc.Clone()
	if s.observer != nil {
		s.observer(snapshot)
	}
	if s.propagator != nil {
		s.propagator.Push(snapshot)
	}
	return err
}

// ReplaceFromRemote overwrites the document with a copy pulled from the
// remote mirror. The remote timestamp is kept as-is, since it is the
// sync precedence arbiter, and the propagator is not invoked, otherwise
// every pull would echo a push.
func (s *LocalStore) ReplaceFromRemote(doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := doc.Clone()
	clone.Normalize()
	s.doc = clone

	err := s.persist()
	if s.observer != nil {
		s.observer(s.doc.Clone())
	}
	return err
}

// ReplaceFromRemoteIfNewer overwrites the document only when the remote
// copy is strictly newer. The comparison and the overwrite happen under
// one lock acquisition, so a local mutation can never interleave between
// compare and overwrite. Strictly-greater (never >=) also suppresses the
// echo of a locally-originated write coming back through the change
// feed.
func (s *LocalStore) ReplaceFromRemoteIfNewer(doc *domain.Document) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !doc.LastModified.After(s.doc.LastModified) {
		return false, nil
	}

	clone := doc.Clone()
	clone.Normalize()
	s.doc = clone

	err := s.persist()
	if s.observer != nil {
		s.observer(s.doc.Clone())
	}
	return true, err
}

// AddCategory appends a new category.
func (s *LocalStore) AddCategory(name, color string) (*domain.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.Validation("category name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cat := domain.Category{
		ID:        id.MustGenerate(id.PrefixCategory),
		Name:      strings.TrimSpace(name),
		Color:     color,
		Bookmarks: []domain.Bookmark{},
	}
	s.doc.Categories = append(s.doc.Categories, cat)
	return &cat, s.save()
}

// UpdateCategory renames or recolors an existing category.
func (s *LocalStore) UpdateCategory(categoryID, name, color string) error {
	if strings.TrimSpace(name) == "" {
		return errors.Validation("category name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cat := s.doc.Category(categoryID)
	if cat == nil {
		return errors.NotFoundf("category %s not found", categoryID)
	}
	cat.Name = strings.TrimSpace(name)
	cat.Color = color
	return s.save()
}

// DeleteCategory removes a category and every bookmark it owns.
func (s *LocalStore) DeleteCategory(categoryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.doc.Categories {
		if s.doc.Categories[i].ID == categoryID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errors.NotFoundf("category %s not found", categoryID)
	}
	s.doc.Categories = append(s.doc.Categories[:idx], s.doc.Categories[idx+1:]...)
	return s.save()
}

// ReorderCategories moves the category at fromIndex to toIndex. Move
// semantics: the element is removed first, then inserted into the
// shortened sequence, so every other category keeps its relative order.
func (s *LocalStore) ReorderCategories(fromIndex, toIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	moved, err := move(s.doc.Categories, fromIndex, toIndex)
	if err != nil {
		return err
	}
	s.doc.Categories = moved
	return s.save()
}

// AddBookmark appends a bookmark to a category. The URL is normalized to
// carry an explicit scheme before it is stored.
func (s *LocalStore) AddBookmark(categoryID, name, url, description string) (*domain.Bookmark, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.Validation("bookmark name is required")
	}
	if strings.TrimSpace(url) == "" {
		return nil, errors.Validation("bookmark URL is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cat := s.doc.Category(categoryID)
	if cat == nil {
		return nil, errors.NotFoundf("category %s not found", categoryID)
	}
	bm := domain.Bookmark{
		ID:          id.MustGenerate(id.PrefixBookmark),
		Name:        strings.TrimSpace(name),
		URL:         domain.NormalizeURL(url),
		Description: strings.TrimSpace(description),
	}
	cat.Bookmarks = append(cat.Bookmarks, bm)
	return &bm, s.save()
}

// UpdateBookmark edits a bookmark's name, URL, and description.
func (s *LocalStore) UpdateBookmark(categoryID, bookmarkID, name, url, description string) error {
	if strings.TrimSpace(name) == "" {
		return errors.Validation("bookmark name is required")
	}
	if strings.TrimSpace(url) == "" {
		return errors.Validation("bookmark URL is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bm, err := s.findBookmark(categoryID, bookmarkID)
	if err != nil {
		return err
	}
	bm.Name = strings.TrimSpace(name)
	bm.URL = domain.NormalizeURL(url)
	bm.Description = strings.TrimSpace(description)
	return s.save()
}

// DeleteBookmark removes a bookmark from its category.
func (s *LocalStore) DeleteBookmark(categoryID, bookmarkID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cat := s.doc.Category(categoryID)
	if cat == nil {
		return errors.NotFoundf("category %s not found", categoryID)
	}
	idx := -1
	for i := range cat.Bookmarks {
		if cat.Bookmarks[i].ID == bookmarkID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errors.NotFoundf("bookmark %s not found", bookmarkID)
	}
	cat.Bookmarks = append(cat.Bookmarks[:idx], cat.Bookmarks[idx+1:]...)
	return s.save()
}

// ReorderBookmarks moves a bookmark within its category, with the same
// move semantics as ReorderCategories.
func (s *LocalStore) ReorderBookmarks(categoryID string, fromIndex, toIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cat := s.doc.Category(categoryID)
	if cat == nil {
		return errors.NotFoundf("category %s not found", categoryID)
	}
	moved, err := move(cat.Bookmarks, fromIndex, toIndex)
	if err != nil {
		return err
	}
	cat.Bookmarks = moved
	return s.save()
}

// AddTag creates a tag. Names are unique case-insensitively.
func (s *LocalStore) AddTag(name, color string) (*domain.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Validation("tag name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc.TagByName(name) != nil {
		return nil, errors.Conflict("tag name already in use")
	}
	tag := domain.Tag{
		ID:    id.MustGenerate(id.PrefixTag),
		Name:  name,
		Color: color,
	}
	s.doc.Tags = append(s.doc.Tags, tag)
	return &tag, s.save()
}

// UpdateTag renames or recolors a tag. The new name must not collide
// with another tag's name, compared case-insensitively.
func (s *LocalStore) UpdateTag(tagID, name, color string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.Validation("tag name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tag := s.doc.Tag(tagID)
	if tag == nil {
		return errors.NotFoundf("tag %s not found", tagID)
	}
	if existing := s.doc.TagByName(name); existing != nil && existing.ID != tagID {
		return errors.Conflict("tag name already in use")
	}
	tag.Name = name
	tag.Color = color
	return s.save()
}

// DeleteTag removes a tag and prunes its id from every bookmark in the
// same operation, so no document with a dangling tag reference is ever
// persisted or observed.
func (s *LocalStore) DeleteTag(tagID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.doc.Tags {
		if s.doc.Tags[i].ID == tagID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errors.NotFoundf("tag %s not found", tagID)
	}
	s.doc.Tags = append(s.doc.Tags[:idx], s.doc.Tags[idx+1:]...)

	for i := range s.doc.Categories {
		cat := &s.doc.Categories[i]
		for j := range cat.Bookmarks {
			bm := &cat.Bookmarks[j]
			for k, ref := range bm.Tags {
				if ref == tagID {
					bm.Tags = append(bm.Tags[:k], bm.Tags[k+1:]...)
					break
				}
			}
		}
	}
	return s.save()
}

// TagBookmark attaches a tag to a bookmark. Attaching a tag that is
// already present is a no-op that still reports success.
func (s *LocalStore) TagBookmark(categoryID, bookmarkID, tagID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc.Tag(tagID) == nil {
		return errors.NotFoundf("tag %s not found", tagID)
	}
	bm, err := s.findBookmark(categoryID, bookmarkID)
	if err != nil {
		return err
	}
	if bm.HasTag(tagID) {
		return nil
	}
	bm.Tags = append(bm.Tags, tagID)
	return s.save()
}

// UntagBookmark detaches a tag from a bookmark.
func (s *LocalStore) UntagBookmark(categoryID, bookmarkID, tagID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bm, err := s.findBookmark(categoryID, bookmarkID)
	if err != nil {
		return err
	}
	for k, ref := range bm.Tags {
		if ref == tagID {
			bm.Tags = append(bm.Tags[:k], bm.Tags[k+1:]...)
			return s.save()
		}
	}
	return errors.NotFoundf("tag %s not on bookmark %s", tagID, bookmarkID)
}

// snapshotPayload is the portable export encoding. It deliberately
// excludes LastModified: a snapshot is data, not sync state.
type snapshotPayload struct {
	Categories []domain.Category `json:"categories"`
	Tags       []domain.Tag      `json:"tags,omitempty"`
}

// ExportSnapshot serializes the document to the portable encoding.
func (s *LocalStore) ExportSnapshot() ([]byte, error) {
	s.mu.Lock()
	snapshot := s.doc.Clone()
	s.mu.Unlock()

	data, err := json.Marshal(snapshotPayload{
		Categories: snapshot.Categories,
		Tags:       snapshot.Tags,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeFormat, "failed to encode snapshot")
	}
	return data, nil
}

// ImportSnapshot replaces the document with the decoded payload. Older
// exports may lack the tag registry or per-bookmark tag sets; those
// default to empty. The existing document is untouched when the payload
// does not decode to a sequence of categories.
func (s *LocalStore) ImportSnapshot(data []byte) error {
	var payload snapshotPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return errors.Format("snapshot is not valid JSON")
	}
	if payload.Categories == nil {
		return errors.Format("snapshot has no categories")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := &domain.Document{
		Categories: payload.Categories,
		Tags:       payload.Tags,
	}
	doc.Normalize()
	s.doc = doc
	return s.save()
}

// findBookmark locates a bookmark under the lock.
func (s *LocalStore) findBookmark(categoryID, bookmarkID string) (*domain.Bookmark, error) {
	cat := s.doc.Category(categoryID)
	if cat == nil {
		return nil, errors.NotFoundf("category %s not found", categoryID)
	}
	bm := cat.Bookmark(bookmarkID)
	if bm == nil {
		return nil, errors.NotFoundf("bookmark %s not found", bookmarkID)
	}
	return bm, nil
}

// move removes the element at fromIndex and inserts it at toIndex in the
// shortened sequence. Never duplicates or drops elements.
func move[T any](seq []T, fromIndex, toIndex int) ([]T, error) {
	if fromIndex < 0 || fromIndex >= len(seq) {
		return nil, errors.OutOfRangef("from index %d out of range [0,%d)", fromIndex, len(seq))
	}
	if toIndex < 0 || toIndex >= len(seq) {
		return nil, errors.OutOfRangef("to index %d out of range [0,%d)", toIndex, len(seq))
	}
	if fromIndex == toIndex {
		return seq, nil
	}
	elem := seq[fromIndex]
	seq = append(seq[:fromIndex], seq[fromIndex+1:]...)
	seq = append(seq, elem)
	copy(seq[toIndex+1:], seq[toIndex:len(seq)-1])
	seq[toIndex] = elem
	return seq, nil
}
