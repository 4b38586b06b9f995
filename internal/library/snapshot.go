package library

// Snapshot is the full durable serialization of both stores. Transient
// workflow state is never part of it.
type Snapshot struct {
	Shelves []Shelf         `json:"shelves"`
	Books   map[string]Book `json:"books"`
}

// Snapshot returns a deep copy of the current state, safe to serialize while
// mutations continue.
func (l *Library) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := Snapshot{
		Shelves: make([]Shelf, 0, len(l.shelves.items)),
		Books:   make(map[string]Book, len(l.books.items)),
	}
	for _, shelf := range l.shelves.items {
		snap.Shelves = append(snap.Shelves, shelf.clone())
	}
	for id, book := range l.books.items {
		snap.Books[id] = *book
	}
	return snap
}

// Restore replaces the current state with the snapshot. The default shelf is
// recreated if the snapshot lost it, so startup never proceeds without one.
func (l *Library) Restore(snap Snapshot) {
	l.mu.Lock()
	shelves := make([]*Shelf, 0, len(snap.Shelves))
	hasDefault := false
	for i := range snap.Shelves {
		shelf := snap.Shelves[i].clone()
		if shelf.BookIDs == nil {
			shelf.BookIDs = []string{}
		}
		if shelf.ID == DefaultShelfID {
			hasDefault = true
		}
		shelves = append(shelves, &shelf)
	}
	if !hasDefault {
		shelves = append([]*Shelf{newDefaultShelf()}, shelves...)
	}
	books := make(map[string]*Book, len(snap.Books))
	for id, book := range snap.Books {
		b := book
		books[id] = &b
	}
	l.shelves.items = shelves
	l.books.items = books
	l.mu.Unlock()
}
