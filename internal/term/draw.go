package term

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/proofline/internal/suggest"
)

// tabWidth is how many cells a tab occupies.
const tabWidth = 4

// Styles used by the renderer.
var (
	styleText     = tcell.StyleDefault
	styleGhost    = tcell.StyleDefault.Foreground(tcell.ColorGray).Italic(true)
	styleSelected = tcell.StyleDefault.Reverse(true)
	styleStatus   = tcell.StyleDefault.Reverse(true)
)

func annotationStyle(k suggest.Kind) tcell.Style {
	base := tcell.StyleDefault.Underline(true)
	switch k {
	case suggest.KindSpelling:
		return base.Foreground(tcell.ColorRed)
	case suggest.KindStyle:
		return base.Foreground(tcell.ColorBlue)
	default:
		return base.Foreground(tcell.ColorYellow)
	}
}

// Renderer draws the document, overlays and status line.
type Renderer struct {
	// Name is shown at the left of the status line.
	Name string

	top int
}

// Draw renders one frame. It does not call Show.
func (r *Renderer) Draw(s tcell.Screen, c *Controller) {
	s.Clear()
	width, height := s.Size()
	if width <= 0 || height <= 0 {
		return
	}
	rows := max(1, height-1)

	doc := c.doc
	head := c.Head()
	headLine, headCol := doc.OffsetToPosition(head)
	r.scrollTo(headLine, rows)

	ghost := c.view.Ghost()
	notes := c.view.Annotations()
	selStart, selEnd := doc.Selection()
	cursorX, cursorY := -1, -1

	for y := 0; y < rows; y++ {
		line := r.top + y
		if line >= doc.LineCount() {
			break
		}
		base := doc.PositionToOffset(line, 0)
		text := doc.Line(line)

		x := 0
		put := func(ch rune, st tcell.Style) {
			if x < width {
				s.SetContent(x, y, ch, nil, st)
			}
			x++
		}
		drawGhost := func(offset int) {
			if ghost.IsZero() || ghost.AnchorOffset != offset {
				return
			}
			for _, ch := range strings.ReplaceAll(ghost.Text, "\n", "↵") {
				put(ch, styleGhost)
			}
		}

		for i, ch := range text {
			off := base + i
			if off == head {
				cursorX, cursorY = x, y
			}
			drawGhost(off)

			st := styleText
			if n, ok := covering(notes, off); ok {
				st = annotationStyle(n.Type)
			}
			if off >= selStart && off < selEnd {
				st = styleSelected
			}
			if ch == '\t' {
				for range tabWidth {
					put(' ', st)
				}
				continue
			}
			put(ch, st)
		}

		end := base + len(text)
		if end == head {
			cursorX, cursorY = x, y
		}
		drawGhost(end)
	}

	r.drawStatus(s, c, width, height-1, headLine, headCol)

	if cursorX >= 0 && cursorX < width {
		s.ShowCursor(cursorX, cursorY)
	} else {
		s.HideCursor()
	}
}

func (r *Renderer) scrollTo(line, rows int) {
	if line < r.top {
		r.top = line
	}
	if line >= r.top+rows {
		r.top = line - rows + 1
	}
}

func (r *Renderer) drawStatus(s tcell.Screen, c *Controller, width, y, line, col int) {
	left := r.Name
	if left == "" {
		left = "[scratch]"
	}
	if c.Modified() {
		left += " [+]"
	}

	var parts []string
	if msg := c.view.StatusText(); msg != "" {
		parts = append(parts, msg)
	}
	if n, ok := c.view.AnnotationAt(c.Head()); ok {
		parts = append(parts, fmt.Sprintf("%s: %q → %q", n.Type, n.Original, n.Suggestion))
	}
	right := fmt.Sprintf("Ln %d, Col %d", line+1, col+1)

	row := []rune(" " + left + "  " + strings.Join(parts, " | "))
	tail := []rune(right + " ")
	for x := 0; x < width; x++ {
		ch := ' '
		switch {
		case x >= width-len(tail):
			ch = tail[x-(width-len(tail))]
		case x < len(row):
			ch = row[x]
		}
		s.SetContent(x, y, ch, nil, styleStatus)
	}
}

func covering(notes []suggest.GrammarSuggestion, off int) (suggest.GrammarSuggestion, bool) {
	for _, n := range notes {
		if off >= n.Start && off < n.End {
			return n, true
		}
		if n.Start > off {
			break
		}
	}
	return suggest.GrammarSuggestion{}, false
}
