package conf

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/0xalexb/hjarta-conf/download"
	filefetcher "github.com/0xalexb/hjarta-conf/fetcher/file"
	"github.com/0xalexb/hjarta-conf/logging"
	"github.com/0xalexb/hjarta-conf/merge"
	"github.com/0xalexb/hjarta-conf/reader"
	"github.com/0xalexb/hjarta-conf/resource"
	"github.com/google/renameio/v2"
)

const (
	userFileMode = 0o644
	userDirMode  = 0o755
)

// Config is a layered configuration tree with resource resolution.
//
// All operations hold the instance's single lock for their full duration,
// downloads included; mutating calls from multiple goroutines serialize but
// do not corrupt the tree. Reload acts as a full barrier.
type Config struct {
	mu sync.Mutex

	opts     Options
	explicit string // validated explicit path; empty means layered mode

	tree        map[string]any
	descriptors map[string]*resource.Descriptor
	locator     *resource.Locator
	version     uint64

	logger *slog.Logger
}

// New creates a Config and performs the initial load.
//
// With WithPath the file is the sole source; a missing file or an extension
// other than .yml, .yaml or .json is a fatal validation error. Without it,
// up to three layers are merged in fixed precedence, lowest to highest:
// embedded base < installed shared file < user file. Missing default layers
// are empty layers.
func New(opts ...Option) (*Config, error) {
	options := defaultOptions()

	for _, apply := range opts {
		apply(&options)
	}

	logger := options.Logger
	if logger == nil {
		if options.LogLevel != "" {
			logger = logging.NewLogger(logging.LoggerConfig{Level: options.LogLevel, Format: ""}, os.Stderr)
		} else {
			logger = slog.Default()
		}
	}

	c := &Config{
		opts:   options,
		logger: logger,
	}

	if options.Path != "" {
		path, err := validatePath(options.Path)
		if err != nil {
			return nil, err
		}

		c.explicit = path
	}

	c.locator = resource.NewLocator(
		resource.WithSearchPaths(options.SearchPaths...),
		resource.WithDownloadRoot(options.DownloadDir),
		resource.WithDownloader(c.downloader()),
		resource.WithLogger(logger),
	)

	err := c.load()
	if err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) downloader() resource.Downloader {
	if c.opts.Downloader != nil {
		return c.opts.Downloader
	}

	return download.NewClient(download.WithLogger(c.logger))
}

// load builds the tree from scratch and resets all derived state. The
// caller holds the lock (or, during New, has exclusive access).
func (c *Config) load() error {
	var tree map[string]any

	if c.explicit != "" {
		layer, err := c.readLayer(c.explicit, false)
		if err != nil {
			return err
		}

		tree = layer
	} else {
		layered, err := c.loadLayers()
		if err != nil {
			return err
		}

		tree = layered
	}

	c.tree = tree
	c.reindex()
	c.locator.Reset()

	return nil
}

func (c *Config) loadLayers() (map[string]any, error) {
	tree := map[string]any{}

	if c.opts.Base != nil {
		tree = merge.Merge(tree, merge.Clone(c.opts.Base))
	}

	if len(c.opts.BaseYAML) > 0 {
		base, err := parseBaseYAML(c.opts.BaseYAML)
		if err != nil {
			return nil, fmt.Errorf("embedded base config: %w", err)
		}

		tree = merge.Merge(tree, base)
	}

	if c.opts.SharedDir != "" {
		shared := filepath.Join(c.opts.SharedDir, c.defaultFileName())

		layer, err := c.readLayer(shared, true)
		if err != nil {
			return nil, err
		}

		tree = merge.Merge(tree, layer)
	}

	user := c.userFilePath()

	if c.opts.AutoCreateUser {
		err := ensureFile(user)
		if err != nil {
			return nil, fmt.Errorf("creating user config: %w", err)
		}
	}

	layer, err := c.readLayer(user, true)
	if err != nil {
		return nil, err
	}

	tree = merge.Merge(tree, layer)

	return tree, nil
}

// readLayer fetches and parses one layer. An optional layer whose file is
// absent parses as an empty tree.
func (c *Config) readLayer(path string, optional bool) (map[string]any, error) {
	codec, err := codecFor(path)
	if err != nil {
		return nil, err
	}

	data, err := filefetcher.NewFetcher(path, optional).Fetch()
	if err != nil {
		return nil, err
	}

	layer, err := parseLayer(codec, data)
	if err != nil {
		return nil, fmt.Errorf("parsing layer %q: %w", path, err)
	}

	c.logger.Debug("config layer loaded", "path", path, "keys", len(layer))

	return layer, nil
}

// reindex reclassifies every top-level entry, rebuilding the descriptor
// side-table. Cheap: one pass over the top level.
func (c *Config) reindex() {
	c.descriptors = make(map[string]*resource.Descriptor)

	for key, val := range c.tree {
		m, ok := val.(map[string]any)
		if !ok {
			continue
		}

		if desc, ok := resource.Classify(m); ok {
			c.descriptors[key] = desc
		}
	}
}

func (c *Config) defaultFileName() string {
	return c.opts.Name + ".yml"
}

func (c *Config) userFilePath() string {
	return filepath.Join(c.opts.UserDir, c.defaultFileName())
}

// Get returns the value for key. A resource-shaped entry resolves to its
// local file path (or, with WithReadFile, to the interpreted file contents);
// any other entry returns its raw tree value. A missing key returns the
// WithDefault value and a nil error. Resolution failures are returned as
// errors.
func (c *Config) Get(ctx context.Context, key string, opts ...GetOption) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	options := applyGetOptions(opts)

	val, ok := c.tree[key]
	if !ok {
		return options.def, nil
	}

	desc, isResource := c.descriptors[key]
	if !isResource {
		return val, nil
	}

	return c.resolveLocked(ctx, key, desc, options)
}

// Path resolves a resource-shaped key to a local file path. A missing key
// is ErrKeyNotFound; a key whose value is not resource-shaped is
// ErrNotResource.
func (c *Config) Path(ctx context.Context, key string, opts ...GetOption) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	options := applyGetOptions(opts)
	options.readFile = false

	if _, ok := c.tree[key]; !ok {
		return "", fmt.Errorf("%q: %w", key, ErrKeyNotFound)
	}

	desc, ok := c.descriptors[key]
	if !ok {
		return "", fmt.Errorf("%q: %w", key, ErrNotResource)
	}

	path, err := c.resolveLocked(ctx, key, desc, options)
	if err != nil {
		return "", err
	}

	str, ok := path.(string)
	if !ok {
		return "", fmt.Errorf("%q: %w", key, ErrNotResource)
	}

	return str, nil
}

// Read resolves a resource-shaped key and interprets the file's contents by
// extension.
func (c *Config) Read(ctx context.Context, key string, opts ...GetOption) (any, error) {
	opts = append(opts, WithReadFile())

	c.mu.Lock()
	defer c.mu.Unlock()

	options := applyGetOptions(opts)

	if _, ok := c.tree[key]; !ok {
		return nil, fmt.Errorf("%q: %w", key, ErrKeyNotFound)
	}

	desc, ok := c.descriptors[key]
	if !ok {
		return nil, fmt.Errorf("%q: %w", key, ErrNotResource)
	}

	return c.resolveLocked(ctx, key, desc, options)
}

// resolveLocked resolves a descriptor and optionally interprets the file.
// The caller holds the lock.
func (c *Config) resolveLocked(ctx context.Context, key string, desc *resource.Descriptor, options getOptions) (any, error) {
	path, err := c.locator.Resolve(ctx, key, desc, resource.ResolveOptions{
		TryDefaultPaths:    options.tryDefaultPaths,
		Dest:               options.dest,
		DestFirstCandidate: options.destFirst,
	})
	if err != nil {
		return nil, err
	}

	if options.readFile {
		return reader.Interpret(path, c.opts.Readers)
	}

	return path, nil
}

// Lookup returns the raw tree value for key with no resource resolution.
func (c *Config) Lookup(key string) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	val, ok := c.tree[key]
	if !ok {
		return nil, fmt.Errorf("%q: %w", key, ErrKeyNotFound)
	}

	return val, nil
}

// Has reports whether key exists in the tree.
func (c *Config) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.tree[key]

	return ok
}

// Set inserts or replaces a top-level key.
func (c *Config) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tree[key] = value
	c.touchLocked(key)
}

// Update shallow-merges the given entries into the tree: each top-level key
// is replaced wholesale.
func (c *Config) Update(entries map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, val := range entries {
		c.tree[key] = val
		c.touchLocked(key)
	}
}

// DeepUpdate recursively merges the given entries into the tree. Handlers
// override the default replacement policy for values they match; a type
// conflict with no matching handler resolves silently by replacement.
func (c *Config) DeepUpdate(entries map[string]any, handlers ...merge.Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()

	merge.Merge(c.tree, entries, handlers...)

	for key := range entries {
		c.touchLocked(key)
	}
}

// touchLocked records a mutation of one top-level key: the key is
// reclassified, its cached resolution dropped, and the version bumped.
func (c *Config) touchLocked(key string) {
	delete(c.descriptors, key)

	if m, ok := c.tree[key].(map[string]any); ok {
		if desc, ok := resource.Classify(m); ok {
			c.descriptors[key] = desc
		}
	}

	c.locator.Forget(key)
	c.version++
}

// Expand loads an external file as a new layer and merges it into the
// current tree, recursively when deep is true, by top-level replacement
// otherwise.
func (c *Config) Expand(path string, deep bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	abs, err := validatePath(path)
	if err != nil {
		return err
	}

	layer, err := c.readLayer(abs, false)
	if err != nil {
		return err
	}

	if deep {
		merge.Merge(c.tree, layer)
	} else {
		for key, val := range layer {
			c.tree[key] = val
		}
	}

	for key := range layer {
		c.touchLocked(key)
	}

	return nil
}

// Replace discards the current tree and loads path as the sole source.
// The path becomes the config's explicit path: Reload re-reads it and Save
// targets it by default.
func (c *Config) Replace(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	abs, err := validatePath(path)
	if err != nil {
		return err
	}

	tree, err := c.readLayer(abs, false)
	if err != nil {
		return err
	}

	c.explicit = abs
	c.tree = tree
	c.reindex()
	c.locator.Reset()
	c.version++

	return nil
}

// ReplaceData discards the current tree and replaces it with a deep copy of
// the given mapping.
func (c *Config) ReplaceData(data map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tree = merge.Clone(data)
	if c.tree == nil {
		c.tree = map[string]any{}
	}

	c.reindex()
	c.locator.Reset()
	c.version++
}

// Reload discards all mutations and resolution caches and redoes the
// initial load from scratch.
func (c *Config) Reload() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.load()
	if err != nil {
		return err
	}

	c.version++

	return nil
}

// Save serializes the current tree to path, creating parent directories as
// needed; the file is written atomically. The format is JSON when the
// target extension is .json, YAML otherwise. An empty path targets the
// explicit path when one is set, else the user config location.
func (c *Config) Save(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if path == "" {
		path = c.explicit
	}

	if path == "" {
		path = c.userFilePath()
	}

	codec, err := codecFor(path)
	if err != nil {
		return err
	}

	data, err := codec.Marshal(c.tree)
	if err != nil {
		return fmt.Errorf("serializing config: %w", err)
	}

	err = os.MkdirAll(filepath.Dir(path), userDirMode)
	if err != nil {
		return fmt.Errorf("creating %q: %w", filepath.Dir(path), err)
	}

	err = renameio.WriteFile(path, data, userFileMode)
	if err != nil {
		return fmt.Errorf("writing %q: %w", path, err)
	}

	c.logger.Debug("config saved", "path", path, "bytes", len(data))

	return nil
}

// Tree returns a deep copy of the current tree.
func (c *Config) Tree() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()

	return merge.Clone(c.tree)
}

// Version returns the mutation counter consumed by Value caches. It moves
// on every mutating call, Reload included.
func (c *Config) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.version
}

// Locator exposes the resource locator for default search-path and
// download-root adjustments.
func (c *Config) Locator() *resource.Locator {
	return c.locator
}

// validatePath checks that an explicitly supplied config path exists, is a
// regular file, and carries a recognized extension. It returns the absolute
// path.
func validatePath(path string) (string, error) {
	abs := expandPath(path)

	stat, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("config file %q: %w", abs, err)
	}

	if stat.IsDir() {
		return "", fmt.Errorf("config file %q: %w", abs, filefetcher.ErrPathIsDirectory)
	}

	if _, err := codecFor(abs); err != nil {
		return "", err
	}

	return abs, nil
}

// expandPath expands a leading ~ and makes the path absolute.
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}

	return abs
}

// ensureFile creates an empty file (and its parent directory) when absent.
func ensureFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	err := os.MkdirAll(filepath.Dir(path), userDirMode)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, userFileMode)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}

		return err
	}

	return f.Close()
}

