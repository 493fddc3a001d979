package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/proofline/internal/config/layer"
	"github.com/dshills/proofline/internal/config/loader"
	"github.com/dshills/proofline/internal/config/watcher"
)

// Observer is told which setting paths changed after a reload or Set.
type Observer func(changed []string)

// Config is the layered settings store.
//
// Thread-safety: All methods are safe for concurrent use. Observers run
// without the config lock held.
type Config struct {
	mu        sync.RWMutex
	layers    *layer.Manager
	fs        loader.FileSystem
	env       *loader.EnvLoader
	logger    *zap.Logger
	userPath  string
	project   string
	observers map[uint64]Observer
	nextID    uint64
	errs      []error
	watcher   *watcher.Watcher
	closed    bool
}

// Option configures a Config.
type Option func(*Config)

// WithUserConfigPath overrides the per-user settings file. An empty path
// disables the user layer.
func WithUserConfigPath(path string) Option {
	return func(c *Config) { c.userPath = path }
}

// WithProjectFile adds the file passed with --config.
func WithProjectFile(path string) Option {
	return func(c *Config) { c.project = path }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithFileSystem replaces file access, for tests.
func WithFileSystem(fsys loader.FileSystem) Option {
	return func(c *Config) {
		if fsys != nil {
			c.fs = fsys
		}
	}
}

// WithEnvLoader replaces the environment loader. Nil disables the
// environment layer.
func WithEnvLoader(l *loader.EnvLoader) Option {
	return func(c *Config) { c.env = l }
}

// New creates a Config holding only the defaults. Call Load to read the
// files and the environment.
func New(opts ...Option) *Config {
	c := &Config{
		layers:    layer.NewManager(),
		fs:        loader.OSFS{},
		env:       loader.NewEnvLoader(loader.DefaultPrefix),
		logger:    zap.NewNop(),
		userPath:  DefaultUserConfigPath(),
		observers: make(map[uint64]Observer),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.layers.Put(&layer.Layer{Source: layer.SourceBuiltin, Data: defaults()})
	return c
}

// DefaultUserConfigPath returns settings.toml under the user config
// directory, or settings.yaml when only that exists.
func DefaultUserConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	base := filepath.Join(dir, "proofline")
	toml := filepath.Join(base, "settings.toml")
	if _, err := os.Stat(toml); err == nil {
		return toml
	}
	for _, name := range []string{"settings.yaml", "settings.yml"} {
		p := filepath.Join(base, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return toml
}

// Load reads every file and the environment. A parse error in any file
// aborts the load and leaves the previous values in place.
func (c *Config) Load(ctx context.Context) error {
	_, err := c.reload(ctx)
	return err
}

// Reload re-reads the sources and notifies observers of changed paths.
func (c *Config) Reload(ctx context.Context) error {
	changed, err := c.reload(ctx)
	if err != nil {
		return err
	}
	c.notify(changed)
	return nil
}

func (c *Config) reload(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var fresh []*layer.Layer
	for _, f := range []struct {
		source layer.Source
		path   string
	}{
		{layer.SourceUser, c.userPath},
		{layer.SourceProject, c.project},
	} {
		if f.path == "" {
			continue
		}
		data, err := loader.LoadFile(c.fs, f.path)
		if err != nil {
			return nil, fmt.Errorf("loading %s config: %w", f.source, err)
		}
		if data == nil {
			data = make(map[string]any)
		}
		fresh = append(fresh, &layer.Layer{Source: f.source, Path: f.path, Data: data})
	}
	if c.env != nil {
		data, err := c.env.Load()
		if err != nil {
			return nil, fmt.Errorf("loading environment: %w", err)
		}
		fresh = append(fresh, &layer.Layer{Source: layer.SourceEnv, Data: data})
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	before := c.layers.Merge()
	for _, l := range fresh {
		c.layers.Put(l)
	}
	c.errs = nil
	changed := layer.Diff(before, c.layers.Merge())
	c.logger.Debug("config loaded",
		zap.Int("layers", len(fresh)+1),
		zap.Strings("changed", changed),
	)
	return changed, nil
}

// Set stores value in the flags layer, above every other source.
func (c *Config) Set(path string, value any) {
	c.mu.Lock()
	before, ok := layer.GetByPath(c.layers.Merge(), path)
	c.layers.Set(layer.SourceFlags, path, value)
	c.mu.Unlock()

	if !ok || !reflect.DeepEqual(before, value) {
		c.notify([]string{path})
	}
}

// OnChange registers fn and returns a function that removes it.
func (c *Config) OnChange(fn Observer) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	c.observers[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.observers, id)
	}
}

func (c *Config) notify(changed []string) {
	if len(changed) == 0 {
		return
	}
	c.mu.RLock()
	obs := make([]Observer, 0, len(c.observers))
	for _, fn := range c.observers {
		obs = append(obs, fn)
	}
	c.mu.RUnlock()

	for _, fn := range obs {
		fn(changed)
	}
}

// Watch reloads the configuration whenever one of its files changes. It
// returns once watching has started; ctx cancellation or Close stops it.
func (c *Config) Watch(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.watcher != nil {
		c.mu.Unlock()
		return nil
	}
	paths := []string{c.userPath, c.project}
	c.mu.Unlock()

	w, err := watcher.New(func(ev watcher.Event) {
		c.logger.Info("config file changed",
			zap.String("path", ev.Path),
			zap.Stringer("op", ev.Op),
		)
		err := c.Reload(ctx)
		if err != nil && !errors.Is(err, ErrClosed) && ctx.Err() == nil {
			c.logger.Warn("config reload failed", zap.Error(err))
		}
	}, watcher.WithLogger(c.logger))
	if err != nil {
		return fmt.Errorf("starting config watcher: %w", err)
	}

	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := w.Add(p); err != nil {
			c.logger.Warn("cannot watch config file", zap.String("path", p), zap.Error(err))
		}
	}

	c.mu.Lock()
	if c.closed || c.watcher != nil {
		c.mu.Unlock()
		return w.Close()
	}
	c.watcher = w
	c.mu.Unlock()

	go func() {
		<-ctx.Done()
		c.stopWatch()
	}()
	return nil
}

func (c *Config) stopWatch() {
	c.mu.Lock()
	w := c.watcher
	c.watcher = nil
	c.mu.Unlock()
	if w != nil {
		_ = w.Close()
	}
}

// Close stops watching. The settings stay readable.
func (c *Config) Close() error {
	c.mu.Lock()
	c.closed = true
	w := c.watcher
	c.watcher = nil
	c.mu.Unlock()
	if w != nil {
		return w.Close()
	}
	return nil
}

// Source reports which layer supplies path.
func (c *Config) Source(path string) (layer.Source, bool) {
	return c.layers.Which(path)
}

// Get returns the merged value at path.
func (c *Config) Get(path string) (any, error) {
	v, ok := layer.GetByPath(c.layers.Merge(), path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSettingNotFound, path)
	}
	return v, nil
}

// GetString returns the string at path.
func (c *Config) GetString(path string) (string, error) {
	v, err := c.Get(path)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", &TypeError{Path: path, Expected: "string", Actual: v}
	}
	return s, nil
}

// GetBool returns the boolean at path. The strings "true" and "false" are
// accepted.
func (c *Config) GetBool(path string) (bool, error) {
	v, err := c.Get(path)
	if err != nil {
		return false, err
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		if parsed, err := strconv.ParseBool(b); err == nil {
			return parsed, nil
		}
	}
	return false, &TypeError{Path: path, Expected: "bool", Actual: v}
}

// GetInt returns the integer at path. Whole floats are accepted.
func (c *Config) GetInt(path string) (int, error) {
	v, err := c.Get(path)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n == float64(int(n)) {
			return int(n), nil
		}
	}
	return 0, &TypeError{Path: path, Expected: "int", Actual: v}
}

// GetFloat returns the number at path.
func (c *Config) GetFloat(path string) (float64, error) {
	v, err := c.Get(path)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, &TypeError{Path: path, Expected: "float", Actual: v}
}

// GetDuration returns the duration at path: a time.ParseDuration string,
// a time.Duration, or an integer number of milliseconds.
func (c *Config) GetDuration(path string) (time.Duration, error) {
	v, err := c.Get(path)
	if err != nil {
		return 0, err
	}
	switch d := v.(type) {
	case time.Duration:
		return d, nil
	case string:
		if parsed, err := time.ParseDuration(d); err == nil {
			return parsed, nil
		}
	case int64:
		return time.Duration(d) * time.Millisecond, nil
	case int:
		return time.Duration(d) * time.Millisecond, nil
	}
	return 0, &TypeError{Path: path, Expected: "duration", Actual: v}
}

// ConfigErrors returns the errors recorded by accessors that fell back to
// a default since the last load.
func (c *Config) ConfigErrors() []error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]error(nil), c.errs...)
}

func (c *Config) recordConfigError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.errs {
		if e.Error() == err.Error() {
			return
		}
	}
	c.errs = append(c.errs, err)
	c.logger.Warn("invalid setting, using default", zap.Error(err))
}

func (c *Config) getStringOr(path, def string) string {
	v, err := c.GetString(path)
	if err != nil {
		c.recordUnlessMissing(err)
		return def
	}
	return v
}

func (c *Config) getBoolOr(path string, def bool) bool {
	v, err := c.GetBool(path)
	if err != nil {
		c.recordUnlessMissing(err)
		return def
	}
	return v
}

func (c *Config) getIntOr(path string, def int) int {
	v, err := c.GetInt(path)
	if err != nil {
		c.recordUnlessMissing(err)
		return def
	}
	return v
}

func (c *Config) getFloatOr(path string, def float64) float64 {
	v, err := c.GetFloat(path)
	if err != nil {
		c.recordUnlessMissing(err)
		return def
	}
	return v
}

func (c *Config) getDurationOr(path string, def time.Duration) time.Duration {
	v, err := c.GetDuration(path)
	if err != nil {
		c.recordUnlessMissing(err)
		return def
	}
	return v
}

func (c *Config) recordUnlessMissing(err error) {
	if !errors.Is(err, ErrSettingNotFound) {
		c.recordConfigError(err)
	}
}
