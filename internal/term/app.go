package term

import (
	"context"
	"strings"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
)

// Options configures Run.
type Options struct {
	// Name is shown on the status line.
	Name string
	// Save writes the document. Nil disables Ctrl-S.
	Save   func(text string) error
	Logger *zap.Logger
}

// Wake returns a function that asks the event loop of s to redraw. Pass
// it to NewView.
func Wake(s tcell.Screen) func() {
	return func() {
		_ = s.PostEvent(tcell.NewEventInterrupt(nil))
	}
}

// Run initializes s and processes terminal events until the user quits
// or ctx is done. The screen is finalized on return.
func Run(ctx context.Context, s tcell.Screen, c *Controller, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := s.Init(); err != nil {
		return err
	}
	defer s.Fini()
	s.EnablePaste()

	stop := context.AfterFunc(ctx, Wake(s))
	defer stop()

	r := &Renderer{Name: opts.Name}
	var (
		paste   strings.Builder
		pasting bool
	)
	for {
		r.Draw(s, c)
		s.Show()

		ev := s.PollEvent()
		if ev == nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		switch ev := ev.(type) {
		case *tcell.EventResize:
			s.Sync()
		case *tcell.EventPaste:
			if ev.Start() {
				pasting = true
				paste.Reset()
			} else {
				pasting = false
				c.HandlePaste(paste.String())
			}
		case *tcell.EventKey:
			if pasting {
				switch ev.Key() {
				case tcell.KeyRune:
					paste.WriteRune(ev.Rune())
				case tcell.KeyEnter:
					paste.WriteByte('\n')
				case tcell.KeyTab:
					paste.WriteByte('\t')
				}
				continue
			}
			switch c.HandleKey(ev) {
			case ActionQuit:
				return nil
			case ActionSave:
				save(c, opts.Save, logger)
			}
		}
	}
}

func save(c *Controller, fn func(string) error, logger *zap.Logger) {
	if fn == nil {
		return
	}
	text, version := c.Snapshot()
	if err := fn(text); err != nil {
		logger.Error("save failed", zap.Error(err))
		c.view.Status("Save failed: " + err.Error())
		return
	}
	c.MarkSaved(version)
	c.view.Status("Saved")
}
