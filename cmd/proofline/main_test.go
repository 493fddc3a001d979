package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/proofline/internal/suggest"
)

func TestMain(m *testing.M) {
	color.NoColor = true //nolint:reassign // plain output for comparisons
	os.Exit(m.Run())
}

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "proofline dev"))
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"edit", "check", "correct", "ping", "version"} {
		assert.Contains(t, names, want)
	}
	for _, flag := range []string{"config", "log-level", "log-file", "metrics-addr", "no-color"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}

func TestCheckCommand_RequiresFile(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"check"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	assert.Error(t, root.Execute())
}

func TestPrintSuggestions(t *testing.T) {
	text := "First line.\nI seen teh cat.\n"
	items := []suggest.GrammarSuggestion{
		{Start: 14, End: 18, Original: "seen", Suggestion: "saw", Type: suggest.KindGrammar},
		{Start: 19, End: 22, Original: "teh", Suggestion: "the", Type: suggest.KindSpelling},
	}

	var out bytes.Buffer
	printSuggestions(&out, "draft.txt", text, items)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `draft.txt:2:3: grammar: "seen" -> "saw"`, lines[0])
	assert.Equal(t, `draft.txt:2:8: spelling: "teh" -> "the"`, lines[1])
	assert.Equal(t, "2 suggestions", lines[2])
}

func TestPrintSuggestions_None(t *testing.T) {
	var out bytes.Buffer
	printSuggestions(&out, "draft.txt", "Fine.", nil)
	assert.Equal(t, "No issues found\n", out.String())
}

func TestWriteJSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeJSON(&out, nil))
	assert.JSONEq(t, "[]", out.String())

	out.Reset()
	require.NoError(t, writeJSON(&out, []suggest.GrammarSuggestion{
		{ID: "x", Start: 0, End: 3, Original: "teh", Suggestion: "the", Type: suggest.KindSpelling},
	}))
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "spelling", decoded[0]["type"])
	assert.Equal(t, "the", decoded[0]["suggestion"])
}

func TestPrintDiff(t *testing.T) {
	var out bytes.Buffer
	printDiff(&out, "Their going home.", "They're going home.")

	got := out.String()
	assert.Contains(t, got, "going home.")
	assert.True(t, strings.HasSuffix(got, "\n"))
	assert.Contains(t, got, "They")
}

func TestReadInput(t *testing.T) {
	got, err := readInput(strings.NewReader("from stdin"), "-")
	require.NoError(t, err)
	assert.Equal(t, "from stdin", got)

	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("from file"), 0o644))
	got, err = readInput(nil, path)
	require.NoError(t, err)
	assert.Equal(t, "from file", got)

	_, err = readInput(nil, filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
