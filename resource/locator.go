package resource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when no candidate root contains the resource and
// no destination fallback was supplied.
var ErrNotFound = errors.New("resource not found")

// ErrNoDownloader is returned when a descriptor declares a URL but the
// Locator has no Downloader to fetch it with.
var ErrNoDownloader = errors.New("no downloader configured")

// NotFoundError reports a failed resolution, naming the key and every
// candidate root that was tried.
type NotFoundError struct {
	Key   string
	Name  string
	Tried []string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource %q (key %q) not found in [%s]",
		e.Name, e.Key, strings.Join(e.Tried, ", "))
}

// Unwrap returns ErrNotFound so callers can match with errors.Is.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// Downloader fetches a URL into a destination directory under the given
// filename and returns the path of the written file. Implementations are
// expected to block for the full duration of the transfer.
type Downloader interface {
	Fetch(ctx context.Context, url, destDir, filename string) (string, error)
}

// Locator resolves resource descriptors to concrete local file paths.
//
// Each successful resolution is cached by key: a second Resolve for the
// same key returns the cached path without re-searching or re-downloading,
// until Forget or Reset discards the entry. The Locator itself performs no
// synchronization; callers needing concurrent access must serialize
// externally (the owning Config holds its own lock across resolutions).
type Locator struct {
	searchPaths  []string
	downloadRoot string
	downloader   Downloader
	logger       *slog.Logger
	resolved     map[string]string
}

// LocatorOption configures a Locator.
type LocatorOption func(*Locator)

// WithSearchPaths sets the default candidate roots used when a descriptor
// declares none of its own.
func WithSearchPaths(paths ...string) LocatorOption {
	return func(l *Locator) {
		l.searchPaths = append([]string{}, paths...)
	}
}

// WithDownloadRoot sets the default destination directory for downloads.
func WithDownloadRoot(dir string) LocatorOption {
	return func(l *Locator) {
		l.downloadRoot = dir
	}
}

// WithDownloader sets the Downloader used for descriptors that declare a URL.
func WithDownloader(d Downloader) LocatorOption {
	return func(l *Locator) {
		l.downloader = d
	}
}

// WithLogger sets the logger for resolution events.
func WithLogger(logger *slog.Logger) LocatorOption {
	return func(l *Locator) {
		l.logger = logger
	}
}

// NewLocator creates a Locator. Without options it searches the current
// directory and downloads into it.
func NewLocator(opts ...LocatorOption) *Locator {
	locator := &Locator{
		searchPaths:  []string{"."},
		downloadRoot: ".",
		resolved:     make(map[string]string),
	}

	for _, apply := range opts {
		apply(locator)
	}

	if locator.logger == nil {
		locator.logger = slog.Default()
	}

	return locator
}

// AddSearchPath appends (or, with prepend, prefixes) a default candidate root.
func (l *Locator) AddSearchPath(path string, prepend bool) {
	if prepend {
		l.searchPaths = append([]string{path}, l.searchPaths...)

		return
	}

	l.searchPaths = append(l.searchPaths, path)
}

// SetDownloadRoot replaces the default destination directory for downloads.
func (l *Locator) SetDownloadRoot(dir string) {
	l.downloadRoot = dir
}

// ResolveOptions controls a single resolution.
type ResolveOptions struct {
	// TryDefaultPaths appends the locator's default search roots to the
	// descriptor's own candidate list.
	TryDefaultPaths bool

	// Dest, when non-empty, is a directory used as a fallback: if no
	// candidate exists, Resolve returns Dest/name without verifying that
	// the path exists. This supports resolving where a new file should be
	// written.
	Dest string

	// DestFirstCandidate uses the first candidate root as the Dest fallback.
	DestFirstCandidate bool
}

// Resolve turns a descriptor into a local file path.
//
// In order: a cached resolution for key wins; then a declared URL is fetched
// through the Downloader into the descriptor's (or locator's) download
// destination; then the candidate roots are scanned in list order and the
// first existing root/name match wins; finally a Dest fallback, if supplied,
// yields an unverified path. With none of those, Resolve returns a
// NotFoundError. Download failures propagate verbatim and are not retried.
func (l *Locator) Resolve(ctx context.Context, key string, desc *Descriptor, opts ResolveOptions) (string, error) {
	if path, ok := l.resolved[key]; ok {
		return path, nil
	}

	name := desc.Name
	if name == "" {
		name = key
	}

	if desc.URL != "" {
		return l.download(ctx, key, name, desc)
	}

	// Copy before appending: descriptors may share path slices.
	var roots []string
	if len(desc.Paths) > 0 {
		roots = append(roots, desc.Paths...)
	} else {
		roots = append(roots, l.searchPaths...)
	}

	if opts.TryDefaultPaths {
		roots = append(roots, l.searchPaths...)
	}

	tried := make(map[string]struct{}, len(roots))
	triedOrder := make([]string, 0, len(roots))

	for _, root := range roots {
		dir := normalizeDir(root)
		if _, seen := tried[dir]; seen {
			continue
		}

		tried[dir] = struct{}{}
		triedOrder = append(triedOrder, dir)

		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			l.logger.Debug("resource located", "key", key, "path", candidate)
			l.resolved[key] = candidate

			return candidate, nil
		}
	}

	dest := opts.Dest
	if dest == "" && opts.DestFirstCandidate && len(roots) > 0 {
		dest = roots[0]
	}

	if dest != "" {
		// Synthesized write destination: not verified, not cached.
		return filepath.Join(normalizeDir(dest), name), nil
	}

	return "", &NotFoundError{Key: key, Name: name, Tried: triedOrder}
}

func (l *Locator) download(ctx context.Context, key, name string, desc *Descriptor) (string, error) {
	if l.downloader == nil {
		return "", fmt.Errorf("resolving key %q: %w", key, ErrNoDownloader)
	}

	destDir := desc.DownloadDest
	if destDir == "" {
		destDir = l.downloadRoot
	}

	l.logger.Info("fetching resource", "key", key, "url", desc.URL, "dest", destDir)

	path, err := l.downloader.Fetch(ctx, desc.URL, normalizeDir(destDir), name)
	if err != nil {
		return "", fmt.Errorf("fetching %q for key %q: %w", desc.URL, key, err)
	}

	l.resolved[key] = path

	return path, nil
}

// Forget discards the cached resolution for key, if any.
func (l *Locator) Forget(key string) {
	delete(l.resolved, key)
}

// Reset discards all cached resolutions.
func (l *Locator) Reset() {
	l.resolved = make(map[string]string)
}

// normalizeDir expands a leading ~ and makes the directory absolute.
func normalizeDir(dir string) string {
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
		}
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return filepath.Clean(dir)
	}

	return abs
}
