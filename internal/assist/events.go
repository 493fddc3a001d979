package assist

import "github.com/dshills/proofline/internal/debounce"

// Event is anything the engine reacts to.
type Event interface {
	isEvent()
}

// Key identifies a non-text key for KeyEvent.
type Key int

const (
	// KeyRune is a printable character; see KeyEvent.Rune.
	KeyRune Key = iota
	KeyEscape
	KeyTab
	KeyEnter
	KeyBackspace
	KeyOther
)

// EditEvent reports that the document text changed.
type EditEvent struct{}

// CursorEvent reports that the cursor moved without an edit.
type CursorEvent struct{}

// KeyEvent reports a key press. It is sent before the key's edit, if any,
// so a visible character dismisses ghost text before the EditEvent lands.
type KeyEvent struct {
	Key  Key
	Rune rune
}

// AcceptEvent asks to insert the displayed autocomplete suggestion.
type AcceptEvent struct{}

// DismissEvent hides the displayed autocomplete suggestion and cancels any
// scheduled fetch.
type DismissEvent struct{}

// CheckNowEvent runs a grammar check without waiting for the debounce.
type CheckNowEvent struct{}

// ApplyEvent applies one grammar annotation.
type ApplyEvent struct {
	ID string
}

// ApplyAllEvent applies every grammar annotation.
type ApplyAllEvent struct{}

// DismissAnnotationEvent removes one grammar annotation.
type DismissAnnotationEvent struct {
	ID string
}

// CorrectSelectionEvent rewrites the current selection.
type CorrectSelectionEvent struct{}

type timerFired struct {
	ch debounce.Channel
}

type autocompleteResult struct {
	gen    uint64
	anchor int
	before string
	text   string
	err    error
}

type grammarResult struct {
	req     uint64
	checked string
	raw     string
	err     error
}

type correctionResult struct {
	start, end int
	original   string
	before     string
	text       string
	err        error
}

type statusEvent struct {
	msg string
}

func (EditEvent) isEvent()              {}
func (CursorEvent) isEvent()            {}
func (KeyEvent) isEvent()               {}
func (AcceptEvent) isEvent()            {}
func (DismissEvent) isEvent()           {}
func (CheckNowEvent) isEvent()          {}
func (ApplyEvent) isEvent()             {}
func (ApplyAllEvent) isEvent()          {}
func (DismissAnnotationEvent) isEvent() {}
func (CorrectSelectionEvent) isEvent()  {}
func (timerFired) isEvent()             {}
func (autocompleteResult) isEvent()     {}
func (grammarResult) isEvent()          {}
func (correctionResult) isEvent()       {}
func (statusEvent) isEvent()            {}
