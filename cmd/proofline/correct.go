package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/dshills/proofline/internal/app"
)

func correctCmd(flags *globalFlags) *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "correct <file>",
		Short: "Correct a whole file and show the changes",
		Long: `Send a file for correction and print a colored word diff of the
result. With --write the file is replaced with the corrected text.

Examples:
  proofline correct draft.txt
  proofline correct --write draft.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			color.NoColor = color.NoColor || flags.noColor //nolint:reassign // intentional override of library global

			text, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			a, cleanup, err := openApp(cmd.Context(), flags, false)
			if err != nil {
				return err
			}
			defer cleanup()

			corrected, status, err := a.Correct(cmd.Context(), text)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if corrected == text {
				fmt.Fprintln(out, status)
				return nil
			}

			printDiff(out, text, corrected)
			if write && args[0] != "-" {
				if err := app.WriteFile(args[0], corrected); err != nil {
					return err
				}
				color.New(color.FgGreen).Fprintf(out, "\nwrote %s\n", args[0])
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the corrected text back to the file")
	return cmd
}

// printDiff writes a character diff of before and after, cleaned up to
// word boundaries, with deletions in red and insertions in green.
func printDiff(w io.Writer, before, after string) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	del := color.New(color.FgRed, color.CrossedOut)
	ins := color.New(color.FgGreen, color.Underline)
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			del.Fprint(w, d.Text)
		case diffmatchpatch.DiffInsert:
			ins.Fprint(w, d.Text)
		case diffmatchpatch.DiffEqual:
			fmt.Fprint(w, d.Text)
		}
	}
	if len(after) > 0 && after[len(after)-1] != '\n' {
		fmt.Fprintln(w)
	}
}
