package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dshills/proofline/internal/document"
	"github.com/dshills/proofline/internal/suggest"
)

func checkCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Check a file's grammar and list the suggestions",
		Long: `Run one grammar check over a file and print each suggestion with
its line and column.

Examples:
  proofline check draft.txt
  proofline check --json draft.txt
  cat draft.txt | proofline check -`,
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

			items, err := a.Check(cmd.Context(), text)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), items)
			}
			printSuggestions(cmd.OutOrStdout(), args[0], text, items)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print suggestions as JSON")
	return cmd
}

func readInput(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func writeJSON(w io.Writer, items []suggest.GrammarSuggestion) error {
	if items == nil {
		items = []suggest.GrammarSuggestion{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

func printSuggestions(w io.Writer, name, text string, items []suggest.GrammarSuggestion) {
	if len(items) == 0 {
		color.New(color.FgGreen).Fprintln(w, "No issues found")
		return
	}

	doc := document.New(text)
	for _, it := range items {
		line, col := doc.OffsetToPosition(it.Start)
		fmt.Fprintf(w, "%s:%d:%d: ", name, line+1, col+1)
		kindColor(it.Type).Fprintf(w, "%s", it.Type)
		fmt.Fprint(w, ": ")
		color.New(color.FgRed).Fprintf(w, "%q", it.Original)
		fmt.Fprint(w, " -> ")
		color.New(color.FgGreen).Fprintf(w, "%q", it.Suggestion)
		fmt.Fprintln(w)
	}

	noun := "suggestions"
	if len(items) == 1 {
		noun = "suggestion"
	}
	fmt.Fprintf(w, "%d %s\n", len(items), noun)
}

func kindColor(k suggest.Kind) *color.Color {
	switch k {
	case suggest.KindSpelling:
		return color.New(color.FgRed, color.Bold)
	case suggest.KindStyle:
		return color.New(color.FgBlue, color.Bold)
	default:
		return color.New(color.FgYellow, color.Bold)
	}
}
