// Package document provides the in-memory text buffer the suggestion
// engine reads from and writes to.
//
// A Document holds the text, one cursor and one selection. Offsets are byte
// offsets; lines are 0-indexed and split on '\n'; columns are byte offsets
// within a line. All methods are safe for concurrent use, so a front end
// can edit while the engine reads from its own goroutine.
package document

import (
	"errors"
	"io"
	"strings"
	"sync"
	"unicode/utf8"
)

// Errors returned by edit operations.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrRangeInvalid     = errors.New("invalid range")
)

// Change describes one applied edit.
type Change struct {
	Start   int    // Start of the replaced range
	OldEnd  int    // End of the replaced range before the edit
	NewText string // Inserted text
	Version uint64 // Document version after the edit
}

// Delta returns the change in document length.
func (c Change) Delta() int {
	return len(c.NewText) - (c.OldEnd - c.Start)
}

// Document is a mutable text buffer with a cursor and a selection.
type Document struct {
	mu        sync.RWMutex
	text      string
	cursor    int
	selStart  int
	selEnd    int
	version   uint64
	listeners []func(Change)
}

// New creates a document holding text. CRLF line endings become LF.
func New(text string) *Document {
	return &Document{text: normalizeLineEndings(text)}
}

// FromReader reads a document from r.
func FromReader(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return New(string(data)), nil
}

func normalizeLineEndings(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// OnChange registers fn to run after every edit. fn runs without the
// document lock held.
func (d *Document) OnChange(fn func(Change)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, fn)
}

// Text returns the full text.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.text
}

// Len returns the text length in bytes.
func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.text)
}

// Version increments on every edit.
func (d *Document) Version() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// Cursor returns the cursor offset.
func (d *Document) Cursor() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cursor
}

// SetCursor moves the cursor, clamped to the text and snapped back to a
// rune boundary, and collapses the selection onto it.
func (d *Document) SetCursor(offset int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cursor = d.clampLocked(offset)
	d.selStart, d.selEnd = d.cursor, d.cursor
}

// Selection returns the selected range; start == end when nothing is
// selected.
func (d *Document) Selection() (start, end int) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.selStart, d.selEnd
}

// SetSelection selects [start, end) and puts the cursor at end.
func (d *Document) SetSelection(start, end int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	start, end = d.clampLocked(start), d.clampLocked(end)
	if start > end {
		start, end = end, start
	}
	d.selStart, d.selEnd = start, end
	d.cursor = end
}

// SelectedText returns the text of the selection.
func (d *Document) SelectedText() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.text[d.selStart:d.selEnd]
}

func (d *Document) clampLocked(offset int) int {
	offset = max(0, min(offset, len(d.text)))
	for offset > 0 && offset < len(d.text) && !utf8.RuneStart(d.text[offset]) {
		offset--
	}
	return offset
}
