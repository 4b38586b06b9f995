package library

import "time"

// BookStatus is one of the four reading stages. The order below is the order
// shown in the UI stepper, but any stage may be selected directly at any time.
type BookStatus string

const (
	StatusNotStarted      BookStatus = "not_started"
	StatusReading         BookStatus = "reading"
	StatusFinished        BookStatus = "finished"
	StatusAwaitingComment BookStatus = "awaiting_comment"
)

// Statuses returns all reading stages in display order.
func Statuses() []BookStatus {
	return []BookStatus{StatusNotStarted, StatusReading, StatusFinished, StatusAwaitingComment}
}

// Valid reports whether s is a known reading stage.
func (s BookStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusReading, StatusFinished, StatusAwaitingComment:
		return true
	}
	return false
}

// Book is a single tracked title. ShelfID is a denormalized copy of the
// membership recorded in the owning shelf's BookIDs; the two must always agree.
// JSON tags match the persisted snapshot format.
type Book struct {
	ID        string     `json:"id"`
	ShelfID   string     `json:"shelfId"`
	Title     string     `json:"title"`
	Author    string     `json:"author"`
	ISBN      string     `json:"isbn,omitempty"`
	CoverURI  string     `json:"coverUri,omitempty"`
	Status    BookStatus `json:"status"`
	Comment   string     `json:"comment,omitempty"`
	AddedDate time.Time  `json:"addedDate"`
}

// Draft is an in-progress book record produced by the acquisition workflow or
// manual entry, not yet committed to a shelf.
type Draft struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	ISBN     string `json:"isbn,omitempty"`
	CoverURI string `json:"coverUri,omitempty"`
}

// BookUpdate carries a partial update; nil fields retain their prior value.
type BookUpdate struct {
	Title    *string
	Author   *string
	ISBN     *string
	CoverURI *string
	Status   *BookStatus
	Comment  *string
}
