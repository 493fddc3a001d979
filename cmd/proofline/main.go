// Package main is the entry point for the proofline command.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/proofline/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	config      string
	logLevel    string
	logFile     string
	metricsAddr string
	noColor     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:   "proofline",
		Short: "AI grammar checking and autocomplete for plain text",
		Long: `proofline suggests continuations as you type and checks grammar
after you pause, using OpenAI, Anthropic or Gemini models.

Configuration is read from $XDG_CONFIG_HOME/proofline/settings.toml, the
file given with --config, and PROOFLINE_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.config, "config", "", "project configuration file (TOML or YAML)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&flags.logFile, "log-file", "", "write logs to this file")
	pf.StringVar(&flags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	pf.BoolVar(&flags.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		editCmd(&flags),
		checkCmd(&flags),
		correctCmd(&flags),
		pingCmd(&flags),
		versionCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "proofline %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

// openApp builds the application for a command. quiet silences logging
// to stderr. The returned cleanup stops the metrics server, if any, and
// closes the application.
func openApp(ctx context.Context, flags *globalFlags, quiet bool) (*app.Application, func(), error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := app.New(ctx, app.Options{
		ConfigPath: flags.config,
		LogLevel:   flags.logLevel,
		LogFile:    flags.logFile,
		Quiet:      quiet,
		Registerer: reg,
	})
	if err != nil {
		return nil, nil, err
	}

	stopMetrics := serveMetrics(flags.metricsAddr, reg, a.Logger())
	return a, func() {
		stopMetrics()
		_ = a.Close()
	}, nil
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *zap.Logger) func() {
	if addr == "" {
		return func() {}
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
