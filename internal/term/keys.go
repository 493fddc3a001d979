package term

import (
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/proofline/internal/assist"
	"github.com/dshills/proofline/internal/document"
)

// Dispatcher accepts engine events and runs document edits on the
// engine's loop. *assist.Engine implements it.
type Dispatcher interface {
	Dispatch(ev assist.Event)
	Do(fn func()) bool
}

// Action is the outcome of a key press the caller must act on.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionSave
)

// Controller turns key presses into document edits and engine events.
// It is called from the UI goroutine only; every change to the document
// is handed to the engine's loop through Do. The engine learns about the
// edits from the document's change notifications.
type Controller struct {
	doc    *document.Document
	view   *View
	engine Dispatcher

	// anchor is the fixed end of a shift-selection, or -1.
	anchor int
	// goal is the column kept across vertical moves, or -1.
	goal  int
	saved uint64
}

// NewController creates a controller editing doc.
func NewController(doc *document.Document, view *View, engine Dispatcher) *Controller {
	return &Controller{
		doc:    doc,
		view:   view,
		engine: engine,
		anchor: -1,
		goal:   -1,
		saved:  doc.Version(),
	}
}

// Modified reports whether the document changed since it was last saved.
func (c *Controller) Modified() bool {
	return c.doc.Version() != c.saved
}

// Snapshot returns the text with its version, read on the engine loop.
func (c *Controller) Snapshot() (text string, version uint64) {
	read := func() { text, version = c.doc.Text(), c.doc.Version() }
	if !c.engine.Do(read) {
		read()
	}
	return text, version
}

// MarkSaved records version as the saved state.
func (c *Controller) MarkSaved(version uint64) {
	c.saved = version
}

// Head returns the moving end of the selection, which is where the
// terminal cursor is drawn.
func (c *Controller) Head() int {
	start, end := c.doc.Selection()
	if start != end && c.anchor == end {
		return start
	}
	return c.doc.Cursor()
}

// HandleKey processes one key press.
//
// Keys that edit send a KeyEvent before running the edit, so the engine
// sees the key before the change it produced.
func (c *Controller) HandleKey(ev *tcell.EventKey) Action {
	if ev.Key() != tcell.KeyUp && ev.Key() != tcell.KeyDown {
		c.goal = -1
	}

	switch ev.Key() {
	case tcell.KeyCtrlQ, tcell.KeyCtrlC:
		return ActionQuit
	case tcell.KeyCtrlS:
		return ActionSave

	case tcell.KeyTab:
		if !c.view.Ghost().IsZero() {
			c.engine.Dispatch(assist.AcceptEvent{})
			return ActionNone
		}
		c.edit(assist.KeyEvent{Key: assist.KeyTab}, func() { c.doc.Insert("\t") })
	case tcell.KeyEscape:
		if !c.view.Ghost().IsZero() {
			c.engine.Dispatch(assist.DismissEvent{})
			return ActionNone
		}
		c.engine.Dispatch(assist.KeyEvent{Key: assist.KeyEscape})
		c.engine.Do(func() { c.collapse(c.Head()) })
	case tcell.KeyEnter:
		c.edit(assist.KeyEvent{Key: assist.KeyEnter}, func() { c.doc.Insert("\n") })
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		c.edit(assist.KeyEvent{Key: assist.KeyBackspace}, c.doc.Backspace)
	case tcell.KeyDelete:
		c.edit(assist.KeyEvent{Key: assist.KeyOther}, c.deleteForward)
	case tcell.KeyRune:
		r := ev.Rune()
		c.edit(assist.KeyEvent{Key: assist.KeyRune, Rune: r}, func() { c.doc.Insert(string(r)) })

	case tcell.KeyLeft, tcell.KeyRight, tcell.KeyUp, tcell.KeyDown, tcell.KeyHome, tcell.KeyEnd:
		c.move(ev.Key(), ev.Modifiers()&tcell.ModShift != 0)

	case tcell.KeyCtrlR:
		c.engine.Dispatch(assist.CheckNowEvent{})
	case tcell.KeyCtrlG:
		if n, ok := c.view.AnnotationAt(c.Head()); ok {
			c.engine.Dispatch(assist.ApplyEvent{ID: n.ID})
		}
	case tcell.KeyCtrlA:
		if len(c.view.Annotations()) > 0 {
			c.engine.Dispatch(assist.ApplyAllEvent{})
		}
	case tcell.KeyCtrlD:
		if n, ok := c.view.AnnotationAt(c.Head()); ok {
			c.engine.Dispatch(assist.DismissAnnotationEvent{ID: n.ID})
		}
	case tcell.KeyCtrlK:
		c.engine.Dispatch(assist.CorrectSelectionEvent{})
	}
	return ActionNone
}

// HandlePaste inserts pasted text as a single edit.
func (c *Controller) HandlePaste(text string) {
	if text == "" {
		return
	}
	c.edit(assist.KeyEvent{Key: assist.KeyOther}, func() { c.doc.Insert(text) })
}

func (c *Controller) edit(key assist.KeyEvent, apply func()) {
	c.engine.Dispatch(key)
	c.engine.Do(func() {
		apply()
		c.anchor = -1
	})
}

func (c *Controller) deleteForward() {
	start, end := c.doc.Selection()
	if start == end {
		text := c.doc.Text()
		if end >= len(text) {
			return
		}
		_, size := utf8.DecodeRuneInString(text[end:])
		end += size
	}
	_ = c.doc.ReplaceRange(start, end, "")
}

func (c *Controller) move(key tcell.Key, extend bool) {
	if c.engine.Do(func() { c.moveCursor(key, extend) }) {
		c.engine.Dispatch(assist.CursorEvent{})
	}
}

func (c *Controller) moveCursor(key tcell.Key, extend bool) {
	head := c.Head()
	text := c.doc.Text()
	line, col := c.doc.OffsetToPosition(head)

	next := head
	switch key {
	case tcell.KeyLeft:
		if head > 0 {
			_, size := utf8.DecodeLastRuneInString(text[:head])
			next = head - size
		}
	case tcell.KeyRight:
		if head < len(text) {
			_, size := utf8.DecodeRuneInString(text[head:])
			next = head + size
		}
	case tcell.KeyUp, tcell.KeyDown:
		if c.goal < 0 {
			c.goal = col
		}
		target := line - 1
		if key == tcell.KeyDown {
			target = line + 1
		}
		if target < 0 || target >= c.doc.LineCount() {
			break
		}
		next = c.doc.PositionToOffset(target, c.goal)
	case tcell.KeyHome:
		next = c.doc.PositionToOffset(line, 0)
	case tcell.KeyEnd:
		next = c.doc.PositionToOffset(line, len(c.doc.Line(line)))
	}

	if extend {
		if c.anchor < 0 {
			c.anchor = head
		}
		c.doc.SetSelection(c.anchor, next)
	} else {
		c.collapse(next)
	}
}

func (c *Controller) collapse(offset int) {
	c.anchor = -1
	c.doc.SetCursor(offset)
}
