package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dshills/proofline/internal/assist"
	"github.com/dshills/proofline/internal/config"
	"github.com/dshills/proofline/internal/config/loader"
	"github.com/dshills/proofline/internal/document"
)

type stubProvider struct {
	grammar    string
	correction string
	err        error
	pingOK     bool
	calls      int
	// started, when set, makes grammar calls announce themselves and
	// wait for their context to end.
	started chan struct{}
}

func (p *stubProvider) Autocomplete(context.Context, string, float64, int) (string, error) {
	p.calls++
	return "", p.err
}

func (p *stubProvider) GrammarSuggestions(ctx context.Context, _ string, _ float64) (string, error) {
	p.calls++
	if p.started != nil {
		close(p.started)
		<-ctx.Done()
		return "", ctx.Err()
	}
	return p.grammar, p.err
}

func (p *stubProvider) CorrectText(context.Context, string, float64) (string, error) {
	p.calls++
	return p.correction, p.err
}

func (p *stubProvider) TestConnection(context.Context, string, string) (bool, error) {
	p.calls++
	return p.pingOK, p.err
}

func newTestApp(t *testing.T, p *stubProvider, vars ...string) *Application {
	t.Helper()
	env := loader.NewEnvLoader(loader.DefaultPrefix).WithEnviron(func() []string { return vars })
	a, err := New(context.Background(), Options{
		Quiet:      true,
		Registerer: prometheus.NewRegistry(),
		ConfigOptions: []config.Option{
			config.WithUserConfigPath(""),
			config.WithEnvLoader(env),
		},
		Builder: func(context.Context, assist.Settings) (assist.Provider, error) {
			return p, nil
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestCheck_ReturnsAnnotations(t *testing.T) {
	p := &stubProvider{grammar: `[{"start":0,"end":5,"original":"Their","suggestion":"They're","type":"grammar"}]`}
	a := newTestApp(t, p, "OPENAI_API_KEY=sk-test")

	got, err := a.Check(context.Background(), "Their going home.")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d annotations, want 1", len(got))
	}
	if got[0].Suggestion != "They're" || got[0].ID == "" {
		t.Errorf("annotation = %+v", got[0])
	}
}

func TestCheck_RequiresCredential(t *testing.T) {
	p := &stubProvider{}
	a := newTestApp(t, p)

	_, err := a.Check(context.Background(), "Some text here.")
	if !errors.Is(err, ErrNoCredential) {
		t.Errorf("err = %v, want ErrNoCredential", err)
	}
	if p.calls != 0 {
		t.Errorf("provider called %d times without a key", p.calls)
	}
}

func TestCheck_ProviderError(t *testing.T) {
	p := &stubProvider{err: errors.New("boom")}
	a := newTestApp(t, p, "OPENAI_API_KEY=sk-test")

	if _, err := a.Check(context.Background(), "Some text here."); err == nil {
		t.Error("expected the provider error")
	}
}

func TestCheck_RateLimited(t *testing.T) {
	p := &stubProvider{err: errors.New("429 Too Many Requests: rate limit exceeded")}
	a := newTestApp(t, p, "OPENAI_API_KEY=sk-test")

	if _, err := a.Check(context.Background(), "Some text here."); !errors.Is(err, ErrRateLimited) {
		t.Errorf("err = %v, want ErrRateLimited", err)
	}
}

func TestCheck_CancelStopsProviderCall(t *testing.T) {
	p := &stubProvider{started: make(chan struct{})}
	a := newTestApp(t, p, "OPENAI_API_KEY=sk-test")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-p.started
		cancel()
	}()

	done := make(chan error, 1)
	go func() {
		_, err := a.Check(ctx, "Some text here.")
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Check kept running after its context was cancelled")
	}
}

func TestNewEngine_InteractiveSeesDocumentEdits(t *testing.T) {
	a := newTestApp(t, &stubProvider{}, "OPENAI_API_KEY=sk-test")
	doc := document.New("")

	eng, err := a.NewEngine(context.Background(), doc, nil, Interactive)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	errc := make(chan error, 1)
	go func() { errc <- eng.Run(context.Background()) }()
	defer func() {
		eng.Stop()
		<-errc
	}()

	if !eng.Do(func() { doc.Insert("The quick brown fox ") }) {
		t.Fatal("Do refused the edit")
	}
	// The edit's notification was queued before this read.
	var phase assist.Phase
	eng.Do(func() { phase = eng.AutocompletePhase() })
	if phase != assist.PhaseScheduled {
		t.Errorf("phase = %v, want scheduled", phase)
	}
}

func TestCorrect(t *testing.T) {
	p := &stubProvider{correction: "Here is the corrected text: They're going home."}
	a := newTestApp(t, p, "OPENAI_API_KEY=sk-test")

	out, status, err := a.Correct(context.Background(), "Their going home.\n")
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	if out != "They're going home.\n" {
		t.Errorf("out = %q", out)
	}
	if status != "Selection corrected" {
		t.Errorf("status = %q", status)
	}
}

func TestCorrect_Unchanged(t *testing.T) {
	p := &stubProvider{correction: "All good."}
	a := newTestApp(t, p, "OPENAI_API_KEY=sk-test")

	out, status, err := a.Correct(context.Background(), "All good.")
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	if out != "All good." || status != "No changes" {
		t.Errorf("Correct = %q, %q", out, status)
	}
}

func TestPing(t *testing.T) {
	a := newTestApp(t, &stubProvider{pingOK: true}, "OPENAI_API_KEY=sk-test")
	if err := a.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}

	a = newTestApp(t, &stubProvider{pingOK: false}, "OPENAI_API_KEY=sk-test")
	if err := a.Ping(context.Background()); !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Ping = %v, want ErrConnectionFailed", err)
	}

	a = newTestApp(t, &stubProvider{pingOK: true})
	if err := a.Ping(context.Background()); !errors.Is(err, ErrNoCredential) {
		t.Errorf("Ping without key = %v, want ErrNoCredential", err)
	}
}

func TestNew_BadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proofline.toml")
	if err := os.WriteFile(path, []byte("[provider\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := New(context.Background(), Options{
		ConfigPath:    path,
		Quiet:         true,
		ConfigOptions: []config.Option{config.WithUserConfigPath("")},
	})
	var ie *InitError
	if !errors.As(err, &ie) || ie.Component != "config" {
		t.Errorf("err = %v, want config InitError", err)
	}
}

func TestReadWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")

	doc, err := ReadDocument(path)
	if err != nil {
		t.Fatalf("ReadDocument(missing): %v", err)
	}
	if doc.Text() != "" {
		t.Errorf("missing file text = %q", doc.Text())
	}

	if err := WriteFile(path, "line one\r\nline two\n"); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	doc, err = ReadDocument(path)
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}
	if doc.Text() != "line one\nline two\n" {
		t.Errorf("text = %q", doc.Text())
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestOperationError(t *testing.T) {
	tests := []struct {
		name     string
		err      *OperationError
		expected string
	}{
		{"nil error", nil, ""},
		{"op only", &OperationError{Op: "write"}, "write"},
		{"op and target", &OperationError{Op: "open", Target: "a.txt"}, "open a.txt"},
		{
			"full error chain",
			&OperationError{Op: "write", Target: "a.txt", Context: "rename", Err: errors.New("io error")},
			"write a.txt (rename): io error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}

	inner := os.ErrPermission
	if !errors.Is(NewOperationError("write", "a.txt", inner), os.ErrPermission) {
		t.Error("OperationError should unwrap")
	}
	if (*OperationError)(nil).WithContext("x") != nil {
		t.Error("WithContext on nil should return nil")
	}
}
