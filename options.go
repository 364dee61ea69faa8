package conf

import (
	"log/slog"

	"github.com/0xalexb/hjarta-conf/reader"
	"github.com/0xalexb/hjarta-conf/resource"
)

// DefaultName is the application name used when none is configured. It
// drives the default config file name (<name>.yml).
const DefaultName = "config"

// Options holds construction settings for a Config.
type Options struct {
	// Name is the application name; the default layered load looks for
	// <Name>.yml in SharedDir and UserDir.
	Name string

	// Path is an explicit config file. When set it is the sole source and
	// no layering happens.
	Path string

	// Base is the embedded base configuration, the lowest-precedence layer.
	Base map[string]any

	// BaseYAML is an alternative to Base: a raw YAML document (typically
	// from go:embed) parsed as the base layer.
	BaseYAML []byte

	// SharedDir is the installed shared-data directory searched for
	// <Name>.yml as the middle layer. Empty skips the layer.
	SharedDir string

	// UserDir is the directory of the user config file, the highest layer.
	// Defaults to the current working directory.
	UserDir string

	// AutoCreateUser creates the user config file empty when it is absent.
	AutoCreateUser bool

	// SearchPaths are the default candidate roots for resource lookups.
	SearchPaths []string

	// DownloadDir is the default destination for downloaded resources.
	DownloadDir string

	// Downloader fetches resource URLs. Defaults to a download.Client.
	Downloader resource.Downloader

	// Readers overrides file interpretation per extension for Read and
	// Get with WithReadFile.
	Readers map[string]reader.Func

	// Logger receives structured load and resolution events. When nil, a
	// logger is built from LogLevel, or slog.Default() is used.
	Logger *slog.Logger

	// LogLevel builds a JSON stderr logger when Logger is nil.
	// Valid levels are: "debug", "info", "warn", "error".
	LogLevel string
}

// Option defines a function type for applying configuration options.
type Option func(*Options)

// WithName sets the application name.
func WithName(name string) Option {
	return func(opts *Options) {
		opts.Name = name
	}
}

// WithPath sets an explicit config file, disabling layering.
func WithPath(path string) Option {
	return func(opts *Options) {
		opts.Path = path
	}
}

// WithBase sets the embedded base configuration layer.
func WithBase(base map[string]any) Option {
	return func(opts *Options) {
		opts.Base = base
	}
}

// WithBaseYAML sets the embedded base layer from a raw YAML document.
func WithBaseYAML(data []byte) Option {
	return func(opts *Options) {
		opts.BaseYAML = data
	}
}

// WithSharedDir sets the installed shared-data directory.
func WithSharedDir(dir string) Option {
	return func(opts *Options) {
		opts.SharedDir = dir
	}
}

// WithUserDir sets the directory of the user config file.
func WithUserDir(dir string) Option {
	return func(opts *Options) {
		opts.UserDir = dir
	}
}

// WithAutoCreateUser enables creating the user config file when absent.
func WithAutoCreateUser() Option {
	return func(opts *Options) {
		opts.AutoCreateUser = true
	}
}

// WithSearchPaths sets the default candidate roots for resource lookups.
func WithSearchPaths(paths ...string) Option {
	return func(opts *Options) {
		opts.SearchPaths = append([]string{}, paths...)
	}
}

// WithDownloadDir sets the default destination for downloaded resources.
func WithDownloadDir(dir string) Option {
	return func(opts *Options) {
		opts.DownloadDir = dir
	}
}

// WithDownloader sets the downloader used for resource URLs.
func WithDownloader(d resource.Downloader) Option {
	return func(opts *Options) {
		opts.Downloader = d
	}
}

// WithReaders overrides file interpretation per extension.
func WithReaders(readers map[string]reader.Func) Option {
	return func(opts *Options) {
		opts.Readers = readers
	}
}

// WithLogger sets the logger for load and resolution events.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithLogLevel sets the level of the logger built when none is supplied.
// Valid levels are: "debug", "info", "warn", "error".
func WithLogLevel(level string) Option {
	return func(opts *Options) {
		opts.LogLevel = level
	}
}

func defaultOptions() Options {
	return Options{
		Name:        DefaultName,
		UserDir:     ".",
		SearchPaths: []string{"."},
		DownloadDir: ".",
	}
}
