package library

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addBook(t *testing.T, lib *Library, title, shelfID string) Book {
	t.Helper()
	book, err := lib.AddBookToShelf(Draft{Title: title, Author: "Some Author"}, shelfID)
	require.NoError(t, err)
	return book
}

func TestCreateShelf(t *testing.T) {
	t.Run("creates shelf with trimmed name", func(t *testing.T) {
		lib := New()
		shelf, err := lib.CreateShelf("  Sci-Fi  ")
		require.NoError(t, err)
		assert.Equal(t, "Sci-Fi", shelf.Name)
		assert.NotEmpty(t, shelf.ID)
		assert.Empty(t, shelf.BookIDs)
		assert.Len(t, lib.Shelves(), 2)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		lib := New()
		_, err := lib.CreateShelf("   ")
		assert.ErrorIs(t, err, ErrValidation)
		assert.Len(t, lib.Shelves(), 1)
	})
}

func TestRenameShelf(t *testing.T) {
	lib := New()
	shelf, err := lib.CreateShelf("Old Name")
	require.NoError(t, err)

	require.NoError(t, lib.RenameShelf(shelf.ID, "New Name"))
	got, err := lib.Shelf(shelf.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.Name)

	assert.ErrorIs(t, lib.RenameShelf(shelf.ID, " "), ErrValidation)
	assert.ErrorIs(t, lib.RenameShelf("nope", "x"), ErrNotFound)
}

func TestDeleteShelf(t *testing.T) {
	t.Run("default shelf is protected", func(t *testing.T) {
		lib := New()
		err := lib.DeleteShelf(DefaultShelfID)
		assert.ErrorIs(t, err, ErrProtected)
		assert.Len(t, lib.Shelves(), 1)
	})

	t.Run("books survive shelf deletion as orphans", func(t *testing.T) {
		lib := New()
		shelf, err := lib.CreateShelf("Doomed")
		require.NoError(t, err)
		book := addBook(t, lib, "Orphan To Be", shelf.ID)

		require.NoError(t, lib.DeleteShelf(shelf.ID))

		// Reading the orphan must not fail; its ShelfID is left unresolvable.
		got, err := lib.Book(book.ID)
		require.NoError(t, err)
		assert.Equal(t, shelf.ID, got.ShelfID)
		assert.Equal(t, "Unknown shelf", lib.ShelfName(got.ShelfID))
	})

	t.Run("unknown shelf", func(t *testing.T) {
		lib := New()
		assert.ErrorIs(t, lib.DeleteShelf("nope"), ErrNotFound)
	})
}

func TestReorderShelves(t *testing.T) {
	lib := New()
	a, _ := lib.CreateShelf("A")
	b, _ := lib.CreateShelf("B")

	t.Run("applies a valid permutation", func(t *testing.T) {
		require.NoError(t, lib.ReorderShelves([]string{b.ID, DefaultShelfID, a.ID}))
		shelves := lib.Shelves()
		assert.Equal(t, b.ID, shelves[0].ID)
		assert.Equal(t, a.ID, shelves[2].ID)
	})

	t.Run("rejects non-permutations", func(t *testing.T) {
		assert.ErrorIs(t, lib.ReorderShelves([]string{a.ID}), ErrInvariant)
		assert.ErrorIs(t, lib.ReorderShelves([]string{a.ID, b.ID, "ghost"}), ErrInvariant)
		assert.ErrorIs(t, lib.ReorderShelves([]string{a.ID, a.ID, b.ID}), ErrInvariant)
		// State unchanged after rejected reorders.
		shelves := lib.Shelves()
		assert.Equal(t, b.ID, shelves[0].ID)
	})
}

func TestMoveShelfToTop(t *testing.T) {
	lib := New()
	a, _ := lib.CreateShelf("A")

	require.NoError(t, lib.MoveShelfToTop(a.ID))
	assert.Equal(t, a.ID, lib.Shelves()[0].ID)

	// Already first: no-op.
	require.NoError(t, lib.MoveShelfToTop(a.ID))
	assert.Equal(t, a.ID, lib.Shelves()[0].ID)

	assert.ErrorIs(t, lib.MoveShelfToTop("nope"), ErrNotFound)
}

func TestAddBookToShelf(t *testing.T) {
	t.Run("creates book and membership together", func(t *testing.T) {
		lib := New()
		book, err := lib.AddBookToShelf(Draft{Title: " Dune ", Author: " Frank Herbert ", ISBN: "9780441013593"}, DefaultShelfID)
		require.NoError(t, err)

		assert.Equal(t, "Dune", book.Title)
		assert.Equal(t, "Frank Herbert", book.Author)
		assert.Equal(t, DefaultShelfID, book.ShelfID)
		assert.Equal(t, StatusNotStarted, book.Status)
		assert.False(t, book.AddedDate.IsZero())

		shelf, err := lib.Shelf(DefaultShelfID)
		require.NoError(t, err)
		assert.Equal(t, []string{book.ID}, shelf.BookIDs)
		require.NoError(t, lib.checkIntegrity())
	})

	t.Run("rejects missing required fields", func(t *testing.T) {
		lib := New()
		_, err := lib.AddBookToShelf(Draft{Title: "", Author: "A"}, DefaultShelfID)
		assert.ErrorIs(t, err, ErrValidation)
		_, err = lib.AddBookToShelf(Draft{Title: "T", Author: "  "}, DefaultShelfID)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Empty(t, lib.Books())
	})

	t.Run("rejects unresolvable shelf", func(t *testing.T) {
		lib := New()
		_, err := lib.AddBookToShelf(Draft{Title: "T", Author: "A"}, "ghost")
		assert.ErrorIs(t, err, ErrValidation)
		assert.Empty(t, lib.Books())
	})
}

func TestMoveBook(t *testing.T) {
	lib := New()
	other, _ := lib.CreateShelf("Other")
	book := addBook(t, lib, "Wanderer", DefaultShelfID)

	require.NoError(t, lib.MoveBook(book.ID, DefaultShelfID, other.ID))

	got, err := lib.Book(book.ID)
	require.NoError(t, err)
	assert.Equal(t, other.ID, got.ShelfID)

	from, _ := lib.Shelf(DefaultShelfID)
	to, _ := lib.Shelf(other.ID)
	assert.NotContains(t, from.BookIDs, book.ID)
	assert.Equal(t, []string{book.ID}, to.BookIDs)

	// Moving again is a membership no-op: no duplicate in the target,
	// nothing reappears in the source.
	require.NoError(t, lib.MoveBook(book.ID, DefaultShelfID, other.ID))
	from, _ = lib.Shelf(DefaultShelfID)
	to, _ = lib.Shelf(other.ID)
	assert.NotContains(t, from.BookIDs, book.ID)
	assert.Equal(t, []string{book.ID}, to.BookIDs)
	require.NoError(t, lib.checkIntegrity())

	assert.ErrorIs(t, lib.MoveBook("ghost", DefaultShelfID, other.ID), ErrNotFound)
	assert.ErrorIs(t, lib.MoveBook(book.ID, "ghost", other.ID), ErrNotFound)
	assert.ErrorIs(t, lib.MoveBook(book.ID, other.ID, "ghost"), ErrNotFound)
}

func TestMoveBookStaleSourceShelf(t *testing.T) {
	// A client holding an outdated view may name a shelf the book no longer
	// sits on. The move must still detach the book from its actual shelf, or
	// the membership list and the book's ShelfID drift apart.
	lib := New()
	first, _ := lib.CreateShelf("First")
	second, _ := lib.CreateShelf("Second")
	book := addBook(t, lib, "Drifter", first.ID)

	require.NoError(t, lib.MoveBook(book.ID, DefaultShelfID, second.ID))

	got, err := lib.Book(book.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ShelfID)

	actual, _ := lib.Shelf(first.ID)
	target, _ := lib.Shelf(second.ID)
	assert.NotContains(t, actual.BookIDs, book.ID)
	assert.Equal(t, []string{book.ID}, target.BookIDs)
	require.NoError(t, lib.checkIntegrity())
}

func TestDeleteBook(t *testing.T) {
	t.Run("removes book and membership", func(t *testing.T) {
		lib := New()
		book := addBook(t, lib, "Short Lived", DefaultShelfID)

		require.NoError(t, lib.DeleteBook(book.ID))
		_, err := lib.Book(book.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		shelf, _ := lib.Shelf(DefaultShelfID)
		assert.Empty(t, shelf.BookIDs)
	})

	t.Run("deletes orphaned book", func(t *testing.T) {
		lib := New()
		shelf, _ := lib.CreateShelf("Doomed")
		book := addBook(t, lib, "Orphan", shelf.ID)
		require.NoError(t, lib.DeleteShelf(shelf.ID))

		require.NoError(t, lib.DeleteBook(book.ID))
		_, err := lib.Book(book.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unknown book", func(t *testing.T) {
		lib := New()
		assert.ErrorIs(t, lib.DeleteBook("ghost"), ErrNotFound)
	})
}

func TestUpdateBook(t *testing.T) {
	lib := New()
	book := addBook(t, lib, "Original", DefaultShelfID)

	t.Run("merges only provided fields", func(t *testing.T) {
		title := "Renamed"
		got, err := lib.UpdateBook(book.ID, BookUpdate{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Title)
		assert.Equal(t, "Some Author", got.Author)
		assert.Equal(t, DefaultShelfID, got.ShelfID)
	})

	t.Run("rejects emptied required field", func(t *testing.T) {
		empty := "  "
		_, err := lib.UpdateBook(book.ID, BookUpdate{Author: &empty})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		bad := BookStatus("abandoned")
		_, err := lib.UpdateBook(book.ID, BookUpdate{Status: &bad})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := lib.UpdateBook("ghost", BookUpdate{})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestBookStatusAndComment(t *testing.T) {
	lib := New()
	book := addBook(t, lib, "Annotated", DefaultShelfID)

	// Any stage is directly selectable, in any order.
	for _, status := range []BookStatus{StatusAwaitingComment, StatusNotStarted, StatusFinished, StatusReading} {
		require.NoError(t, lib.SetBookStatus(book.ID, status))
		got, _ := lib.Book(book.ID)
		assert.Equal(t, status, got.Status)
	}

	require.NoError(t, lib.SetBookComment(book.ID, "  great read  "))
	got, _ := lib.Book(book.ID)
	assert.Equal(t, "great read", got.Comment)

	// Empty trimmed comment clears the annotation.
	require.NoError(t, lib.SetBookComment(book.ID, "   "))
	got, _ = lib.Book(book.ID)
	assert.Empty(t, got.Comment)
}

func TestBooksOnShelf(t *testing.T) {
	lib := New()
	first := addBook(t, lib, "Go in Action", DefaultShelfID)
	_, err := lib.AddBookToShelf(Draft{Title: "The Martian", Author: "Andy Weir"}, DefaultShelfID)
	require.NoError(t, err)
	require.NoError(t, lib.SetBookStatus(first.ID, StatusReading))

	t.Run("membership order", func(t *testing.T) {
		books, err := lib.BooksOnShelf(DefaultShelfID, "", "")
		require.NoError(t, err)
		require.Len(t, books, 2)
		assert.Equal(t, "Go in Action", books[0].Title)
	})

	t.Run("substring search over title and author", func(t *testing.T) {
		books, err := lib.BooksOnShelf(DefaultShelfID, "weir", "")
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, "The Martian", books[0].Title)
	})

	t.Run("status filter", func(t *testing.T) {
		books, err := lib.BooksOnShelf(DefaultShelfID, "", StatusReading)
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, first.ID, books[0].ID)
	})

	t.Run("unknown shelf", func(t *testing.T) {
		_, err := lib.BooksOnShelf("ghost", "", "")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestClearAll(t *testing.T) {
	lib := New()
	shelf, _ := lib.CreateShelf("Full Shelf")
	addBook(t, lib, "Gone Soon", shelf.ID)
	addBook(t, lib, "Also Gone", DefaultShelfID)

	lib.ClearAll()

	shelves := lib.Shelves()
	require.Len(t, shelves, 1)
	assert.Equal(t, DefaultShelfID, shelves[0].ID)
	assert.Empty(t, shelves[0].BookIDs)
	assert.Empty(t, lib.Books())
}

func TestSnapshotRestore(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		lib := New()
		shelf, _ := lib.CreateShelf("Keep")
		book := addBook(t, lib, "Persisted", shelf.ID)

		restored := New()
		restored.Restore(lib.Snapshot())

		got, err := restored.Book(book.ID)
		require.NoError(t, err)
		assert.Equal(t, shelf.ID, got.ShelfID)
		gotShelf, err := restored.Shelf(shelf.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{book.ID}, gotShelf.BookIDs)
		require.NoError(t, restored.checkIntegrity())
	})

	t.Run("default shelf is recreated when missing", func(t *testing.T) {
		lib := New()
		lib.Restore(Snapshot{Shelves: []Shelf{{ID: "x", Name: "Only"}}, Books: nil})
		shelf, err := lib.Shelf(DefaultShelfID)
		require.NoError(t, err)
		assert.Equal(t, DefaultShelfName, shelf.Name)
	})
}

// TestInvariantUnderRandomOperations drives a random sequence of mutations and
// verifies the dual source of truth after every step.
func TestInvariantUnderRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	lib := New()

	shelfIDs := []string{DefaultShelfID}
	var bookIDs []string

	randomShelf := func() string { return shelfIDs[rng.Intn(len(shelfIDs))] }

	for i := 0; i < 500; i++ {
		switch op := rng.Intn(6); op {
		case 0: // create shelf
			shelf, err := lib.CreateShelf("Shelf " + string(rune('A'+rng.Intn(26))))
			require.NoError(t, err)
			shelfIDs = append(shelfIDs, shelf.ID)
		case 1: // add book
			book, err := lib.AddBookToShelf(Draft{Title: "Book", Author: "Author"}, randomShelf())
			require.NoError(t, err)
			bookIDs = append(bookIDs, book.ID)
		case 2: // move book
			if len(bookIDs) == 0 {
				continue
			}
			id := bookIDs[rng.Intn(len(bookIDs))]
			book, err := lib.Book(id)
			if err != nil {
				continue
			}
			if _, err := lib.Shelf(book.ShelfID); err != nil {
				continue // orphan, cannot move
			}
			require.NoError(t, lib.MoveBook(id, book.ShelfID, randomShelf()))
		case 3: // delete book
			if len(bookIDs) == 0 {
				continue
			}
			idx := rng.Intn(len(bookIDs))
			err := lib.DeleteBook(bookIDs[idx])
			if err == nil {
				bookIDs = append(bookIDs[:idx], bookIDs[idx+1:]...)
			} else {
				require.ErrorIs(t, err, ErrNotFound)
			}
		case 4: // delete shelf (may orphan books)
			// Reorders shuffle shelfIDs, so the default shelf can sit at
			// any index; deleting it must fail, everything else succeeds.
			idx := rng.Intn(len(shelfIDs))
			if shelfIDs[idx] == DefaultShelfID {
				require.ErrorIs(t, lib.DeleteShelf(DefaultShelfID), ErrProtected)
				break
			}
			require.NoError(t, lib.DeleteShelf(shelfIDs[idx]))
			shelfIDs = append(shelfIDs[:idx], shelfIDs[idx+1:]...)
		case 5: // reorder
			shuffled := append([]string(nil), shelfIDs...)
			rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
			require.NoError(t, lib.ReorderShelves(shuffled))
			shelfIDs = shuffled
		}
		require.NoError(t, lib.checkIntegrity(), "after operation %d", i)
	}
}

func TestOnChange(t *testing.T) {
	lib := New()
	var fired int
	lib.OnChange(func() { fired++ })

	_, err := lib.CreateShelf("Watched")
	require.NoError(t, err)
	addBook(t, lib, "Watched Book", DefaultShelfID)
	assert.Equal(t, 2, fired)

	// Failed mutations do not notify.
	_, err = lib.CreateShelf(" ")
	require.Error(t, err)
	assert.Equal(t, 2, fired)
}
