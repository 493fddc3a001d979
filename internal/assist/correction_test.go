package assist

import (
	"errors"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/proofline/internal/suggest"
)

const correctionText = "I think  their going home"

func selectRange(h *harness, start, end int) {
	h.doc.SetSelection(start, end)
}

func TestCorrection_KeepsWhitespaceAndCase(t *testing.T) {
	h := newHarness(t, correctionText, nil)
	h.prov.correct = echo("Here's the corrected text:\nThey're going")
	selectRange(h, 7, 20) // "  their going"

	h.eng.Handle(CorrectSelectionEvent{})
	assert.True(t, h.eng.Correcting())
	require.Equal(t, 1, h.run.pending())
	h.run.flush()

	assert.False(t, h.eng.Correcting())
	assert.Equal(t, "I think  they're going home", h.doc.Text())
	assert.Equal(t, "Selection corrected", h.ov.lastStatus())
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Accepted.WithLabelValues(kindCorrection)))
}

func TestCorrection_SentenceStartKeepsCapital(t *testing.T) {
	h := newHarness(t, "Done. their going", nil)
	h.prov.correct = echo("They're going")
	selectRange(h, 6, 17)

	h.eng.Handle(CorrectSelectionEvent{})
	h.run.flush()
	assert.Equal(t, "Done. They're going", h.doc.Text())
}

func TestCorrection_ChangedSelectionIsDiscarded(t *testing.T) {
	h := newHarness(t, correctionText, nil)
	h.prov.correct = echo("they're going")
	selectRange(h, 9, 20)

	h.eng.Handle(CorrectSelectionEvent{})
	selectRange(h, 0, 7)
	h.run.flush()

	assert.Equal(t, correctionText, h.doc.Text())
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Discarded.WithLabelValues(kindCorrection, reasonStale)))
}

func TestCorrection_EmptySelectionIsIgnored(t *testing.T) {
	h := newHarness(t, correctionText, nil)
	h.eng.Handle(CorrectSelectionEvent{})
	assert.Zero(t, h.run.pending())
	assert.Empty(t, h.prov.Calls())
}

func TestCorrection_OneAtATime(t *testing.T) {
	h := newHarness(t, correctionText, nil)
	selectRange(h, 9, 20)
	h.eng.Handle(CorrectSelectionEvent{})
	h.eng.Handle(CorrectSelectionEvent{})
	assert.Equal(t, 1, h.run.pending())
}

func TestCorrection_Errors(t *testing.T) {
	h := newHarness(t, correctionText, nil)
	h.prov.correct = func(string) (string, error) {
		return "", suggest.NewProviderError("gemini", "correct", http.StatusForbidden, errors.New("denied"))
	}
	selectRange(h, 9, 20)
	h.eng.Handle(CorrectSelectionEvent{})
	h.run.flush()

	assert.Equal(t, "Authentication failed: check your API key", h.ov.lastStatus())
	assert.Equal(t, correctionText, h.doc.Text())
	assert.False(t, h.eng.Correcting())

	h.prov.correct = func(string) (string, error) { return "", errors.New("boom") }
	h.eng.Handle(CorrectSelectionEvent{})
	h.run.flush()
	assert.Equal(t, "Correction failed", h.ov.lastStatus())
}

func TestCorrection_UnchangedText(t *testing.T) {
	h := newHarness(t, correctionText, nil)
	h.prov.correct = echo("```\ntheir going\n```")
	selectRange(h, 9, 20)
	h.eng.Handle(CorrectSelectionEvent{})
	h.run.flush()

	assert.Equal(t, correctionText, h.doc.Text())
	assert.Equal(t, "No changes", h.ov.lastStatus())
}
