package main

import (
	"errors"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/proofline/internal/app"
	"github.com/dshills/proofline/internal/term"
)

func editCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "edit [file]",
		Short: "Edit a file with live suggestions",
		Long: `Open a file in the terminal editor. Suggestions appear as gray
ghost text after a short pause; grammar issues are underlined.

Keys:
  Tab       accept the ghost text
  Esc       dismiss the ghost text
  Ctrl-R    check grammar now
  Ctrl-G    apply the annotation at the cursor
  Ctrl-A    apply every annotation
  Ctrl-D    dismiss the annotation at the cursor
  Ctrl-K    correct the selection (Shift+arrows to select)
  Ctrl-S    save
  Ctrl-Q    quit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return runEdit(cmd, flags, path)
		},
	}
}

func runEdit(cmd *cobra.Command, flags *globalFlags, path string) error {
	ctx := cmd.Context()

	a, cleanup, err := openApp(ctx, flags, true)
	if err != nil {
		return err
	}
	defer cleanup()
	logger := a.Logger()

	doc, err := app.ReadDocument(path)
	if err != nil {
		return err
	}
	doc.SetCursor(doc.Len())

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}

	view := term.NewView(term.Wake(screen))
	eng, err := a.NewEngine(ctx, doc, view, app.Interactive)
	if err != nil {
		return err
	}
	go func() {
		if err := eng.Run(ctx); err != nil && !errors.Is(err, ctx.Err()) {
			logger.Error("engine stopped", zap.Error(err))
		}
	}()
	defer eng.Stop()

	if err := a.Watch(ctx); err != nil {
		logger.Warn("config watch unavailable", zap.Error(err))
	}

	opts := term.Options{Logger: logger.Named("term")}
	if path != "" {
		opts.Name = filepath.Base(path)
		opts.Save = func(text string) error { return app.WriteFile(path, text) }
	}

	err = term.Run(ctx, screen, term.NewController(doc, view, eng), opts)
	if errors.Is(err, ctx.Err()) {
		return nil
	}
	return err
}
