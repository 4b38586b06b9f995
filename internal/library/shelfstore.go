package library

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// shelfStore holds the ordered shelf collection. It has no locking of its own;
// the Library serializes access. Membership primitives are unexported so that
// only the coordinator in this package can touch both sides of the
// shelf/book relation.
type shelfStore struct {
	items []*Shelf
}

func newShelfStore() *shelfStore {
	return &shelfStore{items: []*Shelf{newDefaultShelf()}}
}

func (s *shelfStore) get(id string) (*Shelf, bool) {
	for _, shelf := range s.items {
		if shelf.ID == id {
			return shelf, true
		}
	}
	return nil, false
}

func (s *shelfStore) create(name string) (*Shelf, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("shelf name is required: %w", ErrValidation)
	}
	shelf := &Shelf{ID: uuid.NewString(), Name: name, BookIDs: []string{}}
	s.items = append(s.items, shelf)
	return shelf, nil
}

func (s *shelfStore) rename(id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("shelf name is required: %w", ErrValidation)
	}
	shelf, ok := s.get(id)
	if !ok {
		return fmt.Errorf("shelf %s: %w", id, ErrNotFound)
	}
	shelf.Name = name
	return nil
}

// delete removes the shelf entity only. Books referenced by it are left in
// place; the coordinator decides what happens to them.
func (s *shelfStore) delete(id string) error {
	if id == DefaultShelfID {
		return fmt.Errorf("default shelf cannot be deleted: %w", ErrProtected)
	}
	for i, shelf := range s.items {
		if shelf.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("shelf %s: %w", id, ErrNotFound)
}

// reorder replaces the full shelf ordering. The ids must be a permutation of
// the current shelf set; anything else is rejected with ErrInvariant.
func (s *shelfStore) reorder(ids []string) error {
	if len(ids) != len(s.items) {
		return fmt.Errorf("reorder payload has %d shelves, store has %d: %w", len(ids), len(s.items), ErrInvariant)
	}
	byID := make(map[string]*Shelf, len(s.items))
	for _, shelf := range s.items {
		byID[shelf.ID] = shelf
	}
	reordered := make([]*Shelf, 0, len(ids))
	for _, id := range ids {
		shelf, ok := byID[id]
		if !ok {
			return fmt.Errorf("reorder references unknown shelf %s: %w", id, ErrInvariant)
		}
		delete(byID, id)
		reordered = append(reordered, shelf)
	}
	s.items = reordered
	return nil
}

// moveToTop is a convenience reorder; no-op if the shelf is already first.
func (s *shelfStore) moveToTop(id string) error {
	for i, shelf := range s.items {
		if shelf.ID == id {
			if i == 0 {
				return nil
			}
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.items = append([]*Shelf{shelf}, s.items...)
			return nil
		}
	}
	return fmt.Errorf("shelf %s: %w", id, ErrNotFound)
}

// appendBook adds a book reference at the end of the shelf's ordering.
// Appending an id that is already present is a no-op so that repeated moves
// cannot duplicate membership.
func (s *shelfStore) appendBook(shelfID, bookID string) error {
	shelf, ok := s.get(shelfID)
	if !ok {
		return fmt.Errorf("shelf %s: %w", shelfID, ErrNotFound)
	}
	if shelf.contains(bookID) {
		return nil
	}
	shelf.BookIDs = append(shelf.BookIDs, bookID)
	return nil
}

// removeBook drops a book reference. Removing from a missing shelf or a shelf
// that does not hold the book is a no-op; orphan cleanup relies on that.
func (s *shelfStore) removeBook(shelfID, bookID string) {
	shelf, ok := s.get(shelfID)
	if !ok {
		return
	}
	for i, id := range shelf.BookIDs {
		if id == bookID {
			shelf.BookIDs = append(shelf.BookIDs[:i], shelf.BookIDs[i+1:]...)
			return
		}
	}
}

func (s *shelfStore) reset() {
	s.items = []*Shelf{newDefaultShelf()}
}
