package library

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// bookStore maps book id to record. Like shelfStore it is unsynchronized and
// only mutated through the Library.
type bookStore struct {
	items map[string]*Book
}

func newBookStore() *bookStore {
	return &bookStore{items: make(map[string]*Book)}
}

func (s *bookStore) get(id string) (*Book, bool) {
	book, ok := s.items[id]
	return book, ok
}

// create assigns the id and creation timestamp. The caller (the coordinator)
// has already resolved shelfID to an existing shelf.
func (s *bookStore) create(draft Draft, shelfID string) (*Book, error) {
	title := strings.TrimSpace(draft.Title)
	author := strings.TrimSpace(draft.Author)
	if title == "" {
		return nil, fmt.Errorf("book title is required: %w", ErrValidation)
	}
	if author == "" {
		return nil, fmt.Errorf("book author is required: %w", ErrValidation)
	}

	book := &Book{
		ID:        uuid.NewString(),
		ShelfID:   shelfID,
		Title:     title,
		Author:    author,
		ISBN:      strings.TrimSpace(draft.ISBN),
		CoverURI:  draft.CoverURI,
		Status:    StatusNotStarted,
		AddedDate: time.Now().UTC(),
	}
	s.items[book.ID] = book
	return book, nil
}

// update merges the provided fields only; nil fields keep their prior value.
func (s *bookStore) update(id string, update BookUpdate) error {
	book, ok := s.items[id]
	if !ok {
		return fmt.Errorf("book %s: %w", id, ErrNotFound)
	}
	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return fmt.Errorf("book title is required: %w", ErrValidation)
		}
		book.Title = title
	}
	if update.Author != nil {
		author := strings.TrimSpace(*update.Author)
		if author == "" {
			return fmt.Errorf("book author is required: %w", ErrValidation)
		}
		book.Author = author
	}
	if update.ISBN != nil {
		book.ISBN = strings.TrimSpace(*update.ISBN)
	}
	if update.CoverURI != nil {
		book.CoverURI = *update.CoverURI
	}
	if update.Status != nil {
		if !update.Status.Valid() {
			return fmt.Errorf("unknown status %q: %w", *update.Status, ErrValidation)
		}
		book.Status = *update.Status
	}
	if update.Comment != nil {
		// An empty trimmed comment clears the annotation.
		book.Comment = strings.TrimSpace(*update.Comment)
	}
	return nil
}

func (s *bookStore) setStatus(id string, status BookStatus) error {
	return s.update(id, BookUpdate{Status: &status})
}

func (s *bookStore) setComment(id string, comment string) error {
	return s.update(id, BookUpdate{Comment: &comment})
}

func (s *bookStore) setShelfID(id, shelfID string) error {
	book, ok := s.items[id]
	if !ok {
		return fmt.Errorf("book %s: %w", id, ErrNotFound)
	}
	book.ShelfID = shelfID
	return nil
}

func (s *bookStore) delete(id string) error {
	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("book %s: %w", id, ErrNotFound)
	}
	delete(s.items, id)
	return nil
}

func (s *bookStore) reset() {
	s.items = make(map[string]*Book)
}
