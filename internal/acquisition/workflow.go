// Package acquisition implements the barcode-to-book workflow: a per-session
// state machine that turns a decoded barcode into a confirmed book record via
// an external lookup, with manual entry as the fallback path.
package acquisition

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/hnedelkov/bookshelf/internal/library"
	"github.com/hnedelkov/bookshelf/internal/lookup"
)

// State identifies where a workflow session currently is. Committing is not a
// resting state: Commit either finishes back at Idle or fails synchronously,
// leaving the session where it was.
type State string

const (
	StateIdle           State = "idle"
	StateScanning       State = "scanning"
	StateLookingUp      State = "looking_up"
	StateFound          State = "found"
	StateNotFoundPrompt State = "not_found_prompt"
	StateEditing        State = "editing"
)

var (
	// ErrInvalidTransition is returned when an event is not accepted in the
	// session's current state, e.g. submitting a barcode while a lookup is
	// already in flight.
	ErrInvalidTransition = errors.New("invalid workflow transition")

	// ErrInvalidBarcode is returned when the decoded payload is empty.
	ErrInvalidBarcode = errors.New("no ISBN could be extracted from the barcode")
)

// LookupProvider resolves an ISBN to a candidate record.
type LookupProvider interface {
	Lookup(ctx context.Context, isbn string) (*lookup.Candidate, error)
}

// Committer persists a confirmed draft onto a shelf.
type Committer interface {
	AddBookToShelf(draft library.Draft, shelfID string) (library.Book, error)
}

// DraftUpdate carries edits to the in-progress draft; nil fields are untouched.
type DraftUpdate struct {
	Title  *string `json:"title"`
	Author *string `json:"author"`
	ISBN   *string `json:"isbn"`
}

// Workflow is one acquisition session. All methods are safe for concurrent
// use; the lookup call is the only operation performed outside the lock.
type Workflow struct {
	lookups LookupProvider
	books   Committer

	mu          sync.Mutex
	state       State
	draft       library.Draft  // mutable working copy while editing
	accepted    *library.Draft // last accepted candidate, shown in Found
	pendingISBN string         // carried from a failed scan into manual entry
	shelfID     string         // selected target shelf, orthogonal to state
	manual      bool
	gen         int // bumped on reset so in-flight lookup results are discarded
}

// NewWorkflow creates an idle session with the given shelf preselected.
func NewWorkflow(lookups LookupProvider, books Committer, defaultShelfID string) *Workflow {
	return &Workflow{
		lookups: lookups,
		books:   books,
		state:   StateIdle,
		shelfID: defaultShelfID,
	}
}

// Status is a read-only view of the session for API responses.
type Status struct {
	State       State          `json:"state"`
	Draft       *library.Draft `json:"draft,omitempty"`
	ShelfID     string         `json:"shelfId"`
	PendingISBN string         `json:"pendingIsbn,omitempty"`
	Manual      bool           `json:"manual"`
}

func (w *Workflow) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	status := Status{
		State:       w.state,
		ShelfID:     w.shelfID,
		PendingISBN: w.pendingISBN,
		Manual:      w.manual,
	}
	switch w.state {
	case StateEditing:
		draft := w.draft
		status.Draft = &draft
	case StateFound:
		if w.accepted != nil {
			draft := *w.accepted
			status.Draft = &draft
		}
	}
	return status
}

// StartScan enables the camera. Only valid from Idle.
func (w *Workflow) StartScan() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateIdle {
		return fmt.Errorf("start scan in state %s: %w", w.state, ErrInvalidTransition)
	}
	w.state = StateScanning
	return nil
}

// CancelScan returns to Idle without a result.
func (w *Workflow) CancelScan() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateScanning {
		return fmt.Errorf("cancel scan in state %s: %w", w.state, ErrInvalidTransition)
	}
	w.state = StateIdle
	return nil
}

// SubmitBarcode accepts a decoded barcode payload and runs the lookup. The
// payload is used as the ISBN query term directly; the symbology tag is
// informational only. While the lookup is outstanding the session sits in
// LookingUp and accepts no new scan input. If the session is reset or
// abandoned before the lookup returns, the late result is discarded.
func (w *Workflow) SubmitBarcode(ctx context.Context, payload, symbology string) error {
	w.mu.Lock()
	if w.state != StateScanning {
		w.mu.Unlock()
		return fmt.Errorf("barcode in state %s: %w", w.state, ErrInvalidTransition)
	}
	isbn := strings.TrimSpace(payload)
	if isbn == "" {
		w.state = StateIdle
		w.mu.Unlock()
		return ErrInvalidBarcode
	}
	w.state = StateLookingUp
	gen := w.gen
	w.mu.Unlock()

	if symbology != "" {
		log.Printf("Looking up scanned barcode %s (%s)", isbn, symbology)
	}
	candidate, err := w.lookups.Lookup(ctx, isbn)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.gen != gen || w.state != StateLookingUp {
		// The session moved on while the lookup was in flight.
		return nil
	}
	if err != nil {
		// "No result" and transport/parse failures are not distinguished:
		// both end at the not-found prompt.
		if !errors.Is(err, lookup.ErrNoMatch) {
			log.Printf("Lookup for %s failed: %v", isbn, err)
		}
		w.pendingISBN = isbn
		w.state = StateNotFoundPrompt
		return nil
	}
	w.accepted = &library.Draft{
		Title:    candidate.Title,
		Author:   candidate.Author,
		ISBN:     candidate.ISBN,
		CoverURI: candidate.CoverURI,
	}
	w.state = StateFound
	return nil
}

// Retry leaves the not-found prompt and scans again.
func (w *Workflow) Retry() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateNotFoundPrompt {
		return fmt.Errorf("retry in state %s: %w", w.state, ErrInvalidTransition)
	}
	w.pendingISBN = ""
	w.state = StateScanning
	return nil
}

// ManualEntry opens the editable form. From the not-found prompt the scanned
// ISBN is carried into an otherwise blank draft; from Idle the draft is fully
// blank. Either way the session is a manual one with no accepted candidate,
// so cancelling the edit falls back to Idle rather than a blank Found screen.
func (w *Workflow) ManualEntry() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.state {
	case StateNotFoundPrompt:
		w.accepted = nil
		w.draft = library.Draft{ISBN: w.pendingISBN}
		w.pendingISBN = ""
		w.manual = true
	case StateIdle:
		w.accepted = nil
		w.draft = library.Draft{}
		w.manual = true
	default:
		return fmt.Errorf("manual entry in state %s: %w", w.state, ErrInvalidTransition)
	}
	w.state = StateEditing
	return nil
}

// Edit switches the accepted candidate into the editable form.
func (w *Workflow) Edit() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateFound || w.accepted == nil {
		return fmt.Errorf("edit in state %s: %w", w.state, ErrInvalidTransition)
	}
	w.draft = *w.accepted
	w.state = StateEditing
	return nil
}

// UpdateDraft applies field edits while in the editing form.
func (w *Workflow) UpdateDraft(update DraftUpdate) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateEditing {
		return fmt.Errorf("draft update in state %s: %w", w.state, ErrInvalidTransition)
	}
	if update.Title != nil {
		w.draft.Title = *update.Title
	}
	if update.Author != nil {
		w.draft.Author = *update.Author
	}
	if update.ISBN != nil {
		w.draft.ISBN = *update.ISBN
	}
	return nil
}

// SaveEdit replaces the accepted candidate with the edited values.
func (w *Workflow) SaveEdit() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateEditing {
		return fmt.Errorf("save edit in state %s: %w", w.state, ErrInvalidTransition)
	}
	accepted := w.draft
	w.accepted = &accepted
	w.state = StateFound
	return nil
}

// CancelEdit discards in-progress edits, reverting to the last accepted
// candidate. A manual session with nothing accepted yet falls back to Idle.
func (w *Workflow) CancelEdit() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateEditing {
		return fmt.Errorf("cancel edit in state %s: %w", w.state, ErrInvalidTransition)
	}
	if w.accepted == nil {
		w.reset()
		return nil
	}
	w.draft = *w.accepted
	w.state = StateFound
	return nil
}

// Rescan discards the accepted candidate and scans again.
func (w *Workflow) Rescan() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateFound {
		return fmt.Errorf("rescan in state %s: %w", w.state, ErrInvalidTransition)
	}
	w.accepted = nil
	w.draft = library.Draft{}
	w.state = StateScanning
	return nil
}

// SelectShelf records the target shelf for the eventual commit.
func (w *Workflow) SelectShelf(shelfID string) {
	w.mu.Lock()
	w.shelfID = shelfID
	w.mu.Unlock()
}

// Commit validates the draft and hands it to the coordinator. Validation or
// commit failures leave the session exactly where it was; success clears all
// draft state and returns the session to Idle (the shelf selection sticks).
func (w *Workflow) Commit() (library.Book, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var draft library.Draft
	switch w.state {
	case StateEditing:
		draft = w.draft
	case StateFound:
		if w.accepted == nil {
			return library.Book{}, fmt.Errorf("nothing to commit: %w", ErrInvalidTransition)
		}
		draft = *w.accepted
	default:
		return library.Book{}, fmt.Errorf("commit in state %s: %w", w.state, ErrInvalidTransition)
	}

	if strings.TrimSpace(draft.Title) == "" {
		return library.Book{}, fmt.Errorf("book title is required: %w", library.ErrValidation)
	}
	if strings.TrimSpace(draft.Author) == "" {
		return library.Book{}, fmt.Errorf("book author is required: %w", library.ErrValidation)
	}
	if w.shelfID == "" {
		return library.Book{}, fmt.Errorf("target shelf is required: %w", library.ErrValidation)
	}
	draft.ISBN = lookup.NormalizeISBN(draft.ISBN)

	book, err := w.books.AddBookToShelf(draft, w.shelfID)
	if err != nil {
		return library.Book{}, err
	}

	shelfID := w.shelfID
	w.reset()
	w.shelfID = shelfID
	return book, nil
}

// Abandon resets the session. An in-flight lookup result arriving afterwards
// is ignored rather than resurrecting the session.
func (w *Workflow) Abandon() {
	w.mu.Lock()
	w.reset()
	w.mu.Unlock()
}

// reset must be called with the lock held.
func (w *Workflow) reset() {
	w.gen++
	w.state = StateIdle
	w.draft = library.Draft{}
	w.accepted = nil
	w.pendingISBN = ""
	w.manual = false
}
