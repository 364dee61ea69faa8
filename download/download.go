// Package download implements the HTTP side of resource location: fetching
// a URL and writing its body into a destination directory.
//
// Files are written atomically so an interrupted transfer never leaves a
// truncated file behind. The client performs no retries; transfer failures
// surface verbatim to the caller.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
)

var (
	// ErrNotDownloadable is returned by the binary-only pre-flight when the
	// URL serves a text or HTML document instead of a file.
	ErrNotDownloadable = errors.New("url does not serve a downloadable file")

	// ErrTooLarge is returned when the remote file exceeds the configured
	// size limit.
	ErrTooLarge = errors.New("remote file exceeds size limit")

	// ErrExists is returned when the destination file already exists and
	// overwriting was not requested.
	ErrExists = errors.New("destination file already exists")

	// ErrNoFilename is returned when no filename was given and none could be
	// derived from the response headers or the URL.
	ErrNoFilename = errors.New("cannot determine a filename for the download")
)

const defaultFileMode = 0o644

// Client fetches URLs to local files. It implements the resource.Downloader
// contract.
type Client struct {
	httpClient *http.Client
	binaryOnly bool
	maxSize    int64
	overwrite  bool
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBinaryOnly enables a HEAD pre-flight that rejects URLs serving text or
// HTML content.
func WithBinaryOnly() Option {
	return func(c *Client) {
		c.binaryOnly = true
	}
}

// WithMaxSize rejects downloads whose advertised or actual size exceeds n bytes.
func WithMaxSize(n int64) Option {
	return func(c *Client) {
		c.maxSize = n
	}
}

// WithOverwrite allows replacing an existing destination file.
func WithOverwrite() Option {
	return func(c *Client) {
		c.overwrite = true
	}
}

// WithLogger sets the logger for transfer events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client. Without options it uses http.DefaultClient,
// no size limit, no content-type pre-flight, and refuses to overwrite.
func NewClient(opts ...Option) *Client {
	client := &Client{
		httpClient: http.DefaultClient,
	}

	for _, apply := range opts {
		apply(client)
	}

	if client.logger == nil {
		client.logger = slog.Default()
	}

	return client
}

// Fetch performs an HTTP GET on rawURL and writes the body to
// destDir/filename, creating destDir as needed. An empty filename falls back
// to the Content-Disposition header, then to the URL's last path segment.
// The path of the written file is returned.
func (c *Client) Fetch(ctx context.Context, rawURL, destDir, filename string) (string, error) {
	if c.binaryOnly || c.maxSize > 0 {
		err := c.preflight(ctx, rawURL)
		if err != nil {
			return "", err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("building request for %q: %w", rawURL, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %q: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("fetching %q: unexpected status %s", rawURL, resp.Status)
	}

	name := filename
	if name == "" {
		name = filenameFromHeaders(resp.Header)
	}

	if name == "" {
		name = filenameFromURL(rawURL)
	}

	if name == "" {
		return "", fmt.Errorf("%w: %q", ErrNoFilename, rawURL)
	}

	dest := filepath.Join(destDir, name)

	if !c.overwrite {
		if _, statErr := os.Stat(dest); statErr == nil {
			return "", fmt.Errorf("%w: %s", ErrExists, dest)
		}
	}

	body := io.Reader(resp.Body)
	if c.maxSize > 0 {
		body = io.LimitReader(resp.Body, c.maxSize+1)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("reading body of %q: %w", rawURL, err)
	}

	if c.maxSize > 0 && int64(len(data)) > c.maxSize {
		return "", fmt.Errorf("%w: %q", ErrTooLarge, rawURL)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("creating %q: %w", destDir, err)
	}

	if err := renameio.WriteFile(dest, data, defaultFileMode); err != nil {
		return "", fmt.Errorf("writing %q: %w", dest, err)
	}

	c.logger.Info("downloaded file", "url", rawURL, "path", dest, "bytes", len(data))

	return dest, nil
}

// preflight issues a HEAD request and applies the binary-only and max-size
// checks against the response headers.
func (c *Client) preflight(ctx context.Context, rawURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return fmt.Errorf("building HEAD request for %q: %w", rawURL, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HEAD %q: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if c.binaryOnly && !downloadable(resp.Header.Get("Content-Type")) {
		return fmt.Errorf("%w: %q", ErrNotDownloadable, rawURL)
	}

	if c.maxSize > 0 && resp.ContentLength > c.maxSize {
		return fmt.Errorf("%w: %q advertises %d bytes", ErrTooLarge, rawURL, resp.ContentLength)
	}

	return nil
}

// downloadable reports whether a content type looks like a file rather than
// a text or HTML document.
func downloadable(contentType string) bool {
	ct := strings.ToLower(contentType)

	return !strings.Contains(ct, "text") && !strings.Contains(ct, "html")
}

// filenameFromHeaders extracts a filename from the Content-Disposition header.
func filenameFromHeaders(header http.Header) string {
	cd := header.Get("Content-Disposition")
	if cd == "" {
		return ""
	}

	_, params, err := mime.ParseMediaType(cd)
	if err != nil {
		return ""
	}

	return params["filename"]
}

// filenameFromURL returns the last path segment of the URL, if any.
func filenameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	name := path.Base(parsed.Path)
	if name == "." || name == "/" {
		return ""
	}

	return name
}
