package library

// The default shelf always exists and cannot be deleted.
const (
	DefaultShelfID   = "default"
	DefaultShelfName = "My Library"
)

// Shelf is a named, ordered collection of book references. BookIDs order is
// display order. JSON tags match the persisted snapshot format.
type Shelf struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	BookIDs []string `json:"bookIds"`
}

func (s *Shelf) clone() Shelf {
	out := *s
	out.BookIDs = append([]string(nil), s.BookIDs...)
	return out
}

func (s *Shelf) contains(bookID string) bool {
	for _, id := range s.BookIDs {
		if id == bookID {
			return true
		}
	}
	return false
}

func newDefaultShelf() *Shelf {
	return &Shelf{ID: DefaultShelfID, Name: DefaultShelfName, BookIDs: []string{}}
}
