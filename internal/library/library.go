// Package library implements the normalized shelf/book data model.
//
// Shelf membership is recorded twice: in the owning shelf's ordered BookIDs
// list and in the book's denormalized ShelfID field. The Library type is the
// coordinator and sole writer allowed to touch both sides; every mutation
// either applies completely or leaves the state untouched. The underlying
// shelf and book stores carry no transactional machinery of their own.
package library

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Library is the transaction boundary for all shelf/book mutations.
// A single mutex serializes operations so multi-step writes are never
// observable half-applied. Reads return copies.
type Library struct {
	mu        sync.Mutex
	shelves   *shelfStore
	books     *bookStore
	listeners []func()
}

// New returns a library holding the default shelf and no books.
func New() *Library {
	return &Library{
		shelves: newShelfStore(),
		books:   newBookStore(),
	}
}

// OnChange registers fn to run after every successful mutation. Listeners are
// invoked outside the library lock and must not block.
func (l *Library) OnChange(fn func()) {
	l.mu.Lock()
	l.listeners = append(l.listeners, fn)
	l.mu.Unlock()
}

func (l *Library) notify() {
	l.mu.Lock()
	listeners := append([]func(){}, l.listeners...)
	l.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// --- Shelf operations ---

func (l *Library) CreateShelf(name string) (Shelf, error) {
	l.mu.Lock()
	shelf, err := l.shelves.create(name)
	var out Shelf
	if err == nil {
		out = shelf.clone()
	}
	l.mu.Unlock()
	if err != nil {
		return Shelf{}, err
	}
	l.notify()
	return out, nil
}

func (l *Library) RenameShelf(id, name string) error {
	l.mu.Lock()
	err := l.shelves.rename(id, name)
	l.mu.Unlock()
	if err != nil {
		return err
	}
	l.notify()
	return nil
}

// DeleteShelf removes the shelf only. Its books stay in the book store with a
// ShelfID that no longer resolves; readers must render those as orphans
// rather than fail.
func (l *Library) DeleteShelf(id string) error {
	l.mu.Lock()
	err := l.shelves.delete(id)
	l.mu.Unlock()
	if err != nil {
		return err
	}
	l.notify()
	return nil
}

// ReorderShelves replaces the shelf ordering. ids must be a permutation of
// the current shelf set.
func (l *Library) ReorderShelves(ids []string) error {
	l.mu.Lock()
	err := l.shelves.reorder(ids)
	l.mu.Unlock()
	if err != nil {
		return err
	}
	l.notify()
	return nil
}

func (l *Library) MoveShelfToTop(id string) error {
	l.mu.Lock()
	err := l.shelves.moveToTop(id)
	l.mu.Unlock()
	if err != nil {
		return err
	}
	l.notify()
	return nil
}

// Shelves returns all shelves in display order.
func (l *Library) Shelves() []Shelf {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Shelf, 0, len(l.shelves.items))
	for _, shelf := range l.shelves.items {
		out = append(out, shelf.clone())
	}
	return out
}

func (l *Library) Shelf(id string) (Shelf, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	shelf, ok := l.shelves.get(id)
	if !ok {
		return Shelf{}, fmt.Errorf("shelf %s: %w", id, ErrNotFound)
	}
	return shelf.clone(), nil
}

// --- Book operations ---

// AddBookToShelf creates a book from the draft and attaches it to the shelf in
// one logical transaction. The shelf is resolved before any mutation, so the
// append after creation cannot fail and leave a book without membership.
func (l *Library) AddBookToShelf(draft Draft, shelfID string) (Book, error) {
	l.mu.Lock()
	if _, ok := l.shelves.get(shelfID); !ok {
		l.mu.Unlock()
		return Book{}, fmt.Errorf("shelf %s does not exist: %w", shelfID, ErrValidation)
	}
	book, err := l.books.create(draft, shelfID)
	if err != nil {
		l.mu.Unlock()
		return Book{}, err
	}
	if err := l.shelves.appendBook(shelfID, book.ID); err != nil {
		// Shelf was resolved above; reaching this is a coordinator bug.
		delete(l.books.items, book.ID)
		l.mu.Unlock()
		return Book{}, fmt.Errorf("attach book to shelf %s: %w", shelfID, ErrInvariant)
	}
	out := *book
	l.mu.Unlock()
	l.notify()
	return out, nil
}

// MoveBook detaches the book from one shelf and attaches it to another,
// updating the book's ShelfID in the same step. Repeating a move is a no-op
// for membership: the id is never duplicated in the target list.
func (l *Library) MoveBook(bookID, fromShelfID, toShelfID string) error {
	l.mu.Lock()
	book, ok := l.books.get(bookID)
	if !ok {
		l.mu.Unlock()
		return fmt.Errorf("book %s: %w", bookID, ErrNotFound)
	}
	if _, ok := l.shelves.get(fromShelfID); !ok {
		l.mu.Unlock()
		return fmt.Errorf("shelf %s: %w", fromShelfID, ErrNotFound)
	}
	if _, ok := l.shelves.get(toShelfID); !ok {
		l.mu.Unlock()
		return fmt.Errorf("shelf %s: %w", toShelfID, ErrNotFound)
	}

	// All references validated; none of the writes below can fail. The
	// caller's notion of the source shelf can be stale, so membership is
	// removed from the shelf the book actually sits on, not just the one
	// named in the request.
	l.shelves.removeBook(book.ShelfID, bookID)
	if fromShelfID != book.ShelfID {
		l.shelves.removeBook(fromShelfID, bookID)
	}
	_ = l.shelves.appendBook(toShelfID, bookID)
	_ = l.books.setShelfID(bookID, toShelfID)
	l.mu.Unlock()
	l.notify()
	return nil
}

// DeleteBook removes the book and its shelf membership. Orphaned books (their
// shelf was deleted earlier) skip the membership step and still delete fine.
func (l *Library) DeleteBook(bookID string) error {
	l.mu.Lock()
	book, ok := l.books.get(bookID)
	if !ok {
		l.mu.Unlock()
		return fmt.Errorf("book %s: %w", bookID, ErrNotFound)
	}
	l.shelves.removeBook(book.ShelfID, bookID)
	_ = l.books.delete(bookID)
	l.mu.Unlock()
	l.notify()
	return nil
}

func (l *Library) UpdateBook(id string, update BookUpdate) (Book, error) {
	l.mu.Lock()
	err := l.books.update(id, update)
	var out Book
	if err == nil {
		book, _ := l.books.get(id)
		out = *book
	}
	l.mu.Unlock()
	if err != nil {
		return Book{}, err
	}
	l.notify()
	return out, nil
}

func (l *Library) SetBookStatus(id string, status BookStatus) error {
	l.mu.Lock()
	err := l.books.setStatus(id, status)
	l.mu.Unlock()
	if err != nil {
		return err
	}
	l.notify()
	return nil
}

func (l *Library) SetBookComment(id, comment string) error {
	l.mu.Lock()
	err := l.books.setComment(id, comment)
	l.mu.Unlock()
	if err != nil {
		return err
	}
	l.notify()
	return nil
}

func (l *Library) Book(id string) (Book, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	book, ok := l.books.get(id)
	if !ok {
		return Book{}, fmt.Errorf("book %s: %w", id, ErrNotFound)
	}
	return *book, nil
}

// Books returns every book, oldest first.
func (l *Library) Books() []Book {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Book, 0, len(l.books.items))
	for _, book := range l.books.items {
		out = append(out, *book)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AddedDate.Equal(out[j].AddedDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].AddedDate.Before(out[j].AddedDate)
	})
	return out
}

// BooksOnShelf returns the shelf's books in membership order, optionally
// filtered by a case-insensitive substring over title/author and by status.
// Dangling book ids are skipped.
func (l *Library) BooksOnShelf(shelfID, query string, status BookStatus) ([]Book, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	shelf, ok := l.shelves.get(shelfID)
	if !ok {
		return nil, fmt.Errorf("shelf %s: %w", shelfID, ErrNotFound)
	}
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]Book, 0, len(shelf.BookIDs))
	for _, bookID := range shelf.BookIDs {
		book, ok := l.books.get(bookID)
		if !ok {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(book.Title), query) &&
			!strings.Contains(strings.ToLower(book.Author), query) {
			continue
		}
		if status != "" && book.Status != status {
			continue
		}
		out = append(out, *book)
	}
	return out, nil
}

// ShelfName resolves a shelf id for display. Orphaned books get "Unknown shelf".
func (l *Library) ShelfName(shelfID string) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if shelf, ok := l.shelves.get(shelfID); ok {
		return shelf.Name
	}
	return "Unknown shelf"
}

// Stats returns the shelf and book counts.
func (l *Library) Stats() (shelves, books int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.shelves.items), len(l.books.items)
}

// ClearAll resets both stores to the single default shelf with no books.
func (l *Library) ClearAll() {
	l.mu.Lock()
	l.shelves.reset()
	l.books.reset()
	l.mu.Unlock()
	l.notify()
}

// checkIntegrity verifies the dual source of truth: a book's ShelfID and the
// shelf membership lists must agree, except for orphans whose shelf is gone.
func (l *Library) checkIntegrity() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	seen := make(map[string]string) // book id -> shelf id holding it
	for _, shelf := range l.shelves.items {
		for _, bookID := range shelf.BookIDs {
			if prev, dup := seen[bookID]; dup {
				return fmt.Errorf("book %s on shelves %s and %s: %w", bookID, prev, shelf.ID, ErrInvariant)
			}
			seen[bookID] = shelf.ID
			book, ok := l.books.get(bookID)
			if !ok {
				return fmt.Errorf("shelf %s references missing book %s: %w", shelf.ID, bookID, ErrInvariant)
			}
			if book.ShelfID != shelf.ID {
				return fmt.Errorf("book %s on shelf %s but ShelfID=%s: %w", bookID, shelf.ID, book.ShelfID, ErrInvariant)
			}
		}
	}
	for id, book := range l.books.items {
		if _, ok := l.shelves.get(book.ShelfID); !ok {
			continue // orphan, allowed
		}
		if seen[id] != book.ShelfID {
			return fmt.Errorf("book %s claims shelf %s without membership: %w", id, book.ShelfID, ErrInvariant)
		}
	}
	return nil
}
