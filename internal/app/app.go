// Package app wires configuration, logging, the provider and the
// suggestion engine together for the command-line front ends.
package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/dshills/proofline/internal/assist"
	"github.com/dshills/proofline/internal/config"
	"github.com/dshills/proofline/internal/document"
	"github.com/dshills/proofline/internal/logging"
	"github.com/dshills/proofline/internal/provider"
)

// Mode selects how an engine schedules its work.
type Mode int

const (
	// Interactive runs the engine on its own loop with provider calls in
	// goroutines. Run must be called.
	Interactive Mode = iota
	// Batch handles every event synchronously on the caller's goroutine,
	// provider calls included.
	Batch
)

// Options configures the application.
type Options struct {
	// ConfigPath is the project configuration file (--config).
	ConfigPath string

	// LogLevel and LogFile override the configured logging.
	LogLevel string
	LogFile  string

	// Quiet discards log output unless LogFile is set. The terminal
	// editor uses it so logs do not draw over the screen.
	Quiet bool

	// Registerer receives the engine metrics. Nil keeps them unregistered.
	Registerer prometheus.Registerer

	// ConfigOptions are passed to config.New after the defaults.
	ConfigOptions []config.Option

	// Builder creates providers. Nil uses provider.ClientBuilder.
	Builder provider.Builder
}

// Application owns the long-lived collaborators.
type Application struct {
	opts     Options
	config   *config.Config
	logger   *zap.Logger
	closeLog func() error
	provider *provider.Switching
	metrics  *assist.Metrics

	closeOnce sync.Once
}

// New loads configuration and builds the logger and provider.
func New(ctx context.Context, opts Options) (*Application, error) {
	a := &Application{opts: opts, closeLog: func() error { return nil }}
	if err := a.bootstrap(ctx); err != nil {
		_ = a.closeLog()
		return nil, err
	}
	return a, nil
}

// bootstrap initializes components in dependency order.
func (a *Application) bootstrap(ctx context.Context) error {
	// 1. Config
	configOpts := []config.Option{config.WithProjectFile(a.opts.ConfigPath)}
	configOpts = append(configOpts, a.opts.ConfigOptions...)
	a.config = config.New(configOpts...)
	if err := a.config.Load(ctx); err != nil {
		return &InitError{Component: "config", Err: err}
	}
	if a.opts.LogLevel != "" {
		a.config.Set(config.KeyLogLevel, a.opts.LogLevel)
	}
	if a.opts.LogFile != "" {
		a.config.Set(config.KeyLogFile, a.opts.LogFile)
	}

	// 2. Logging
	lc := a.config.Logging()
	if a.opts.Quiet && lc.File == "" {
		a.logger = zap.NewNop()
	} else {
		logger, closeLog, err := logging.New(lc)
		if err != nil {
			return &InitError{Component: "logging", Err: err}
		}
		a.logger, a.closeLog = logger, closeLog
	}

	if err := a.config.Validate(); err != nil {
		a.logger.Warn("configuration problems", zap.Error(err))
	}

	// 3. Provider
	build := a.opts.Builder
	if build == nil {
		pacing := a.config.Pacing()
		build = provider.ClientBuilder(a.logger.Named("provider"), pacing.PerSecond, pacing.Burst)
	}
	a.provider = provider.NewSwitching(a.config, build, a.logger)

	// 4. Metrics
	a.metrics = assist.NewMetrics(a.opts.Registerer)

	s := a.config.Settings()
	a.logger.Info("proofline started",
		zap.String("provider", s.Provider),
		zap.String("model", s.Model),
		zap.Bool("credential", s.HasCredential()),
		logging.RedactedString("apiKey", s.APIKey),
	)
	return nil
}

// Config returns the settings store.
func (a *Application) Config() *config.Config {
	return a.config
}

// Logger returns the application logger.
func (a *Application) Logger() *zap.Logger {
	return a.logger
}

// Provider returns the provider that follows the configuration.
func (a *Application) Provider() assist.Provider {
	return a.provider
}

// changeNotifier is an editor that reports its edits.
type changeNotifier interface {
	OnChange(fn func(document.Change))
}

// NewEngine builds a suggestion engine over ed that reports to ov.
// Provider calls are abandoned when ctx is done.
//
// In Interactive mode an editor that reports its edits is wired to the
// engine, so every change, including the engine's own, reaches it as an
// EditEvent. Such an editor must then only be changed through the
// engine's Do.
func (a *Application) NewEngine(ctx context.Context, ed assist.Editor, ov assist.Overlay, mode Mode) (*assist.Engine, error) {
	ec := assist.EngineContext{
		Context:  ctx,
		Settings: a.config,
		Provider: a.provider,
		Editor:   ed,
		Overlay:  ov,
		Logger:   a.logger.Named("engine"),
		Metrics:  a.metrics,
	}
	if mode == Batch {
		ec.Dispatch = func(fn func()) { fn() }
		ec.Runner = assist.InlineRunner{}
	}
	eng, err := assist.New(ec)
	if err != nil {
		return nil, &InitError{Component: "engine", Err: err}
	}
	if n, ok := ed.(changeNotifier); ok && mode == Interactive {
		n.OnChange(func(ch document.Change) {
			eng.DocumentChanged(ch.Start, ch.OldEnd, len(ch.NewText))
		})
	}
	return eng, nil
}

// Ping checks that the configured credential reaches the configured
// model.
func (a *Application) Ping(ctx context.Context) error {
	s := a.config.Settings()
	if !s.HasCredential() {
		return fmt.Errorf("%w for %s", ErrNoCredential, s.Provider)
	}
	ok, err := a.provider.TestConnection(ctx, s.APIKey, s.Model)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	if !ok {
		return ErrConnectionFailed
	}
	return nil
}

// Watch reloads configuration files as they change until ctx is done.
func (a *Application) Watch(ctx context.Context) error {
	unsubscribe := a.config.OnChange(func(changed []string) {
		a.logger.Info("configuration changed", zap.Strings("paths", changed))
	})
	context.AfterFunc(ctx, unsubscribe)
	return a.config.Watch(ctx)
}

// Close stops watching configuration and flushes the log.
func (a *Application) Close() error {
	var err error
	a.closeOnce.Do(func() {
		_ = a.config.Close()
		err = a.closeLog()
	})
	return err
}
