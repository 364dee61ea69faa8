package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrPathIsDirectory is returned when the path provided to the Fetcher points to a directory instead of a file.
var ErrPathIsDirectory = errors.New("path is a directory, not a file")

// Fetcher implements the conf.Fetcher interface for file-based configuration
// layers. The file is read on every Fetch call, so a reload of the owning
// configuration observes changes on disk.
type Fetcher struct {
	filepath string
	optional bool
}

// NewFetcher creates a file-based Fetcher for the given path. An optional
// Fetcher treats a missing file as an empty layer (Fetch returns nil data
// and no error); a required one surfaces the stat error.
func NewFetcher(fpath string, optional bool) *Fetcher {
	return &Fetcher{
		filepath: filepath.Clean(fpath),
		optional: optional,
	}
}

// Fetch reads and returns the file's current contents.
func (f *Fetcher) Fetch() ([]byte, error) {
	stat, err := os.Stat(f.filepath)
	if err != nil {
		if f.optional && errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("stat file %q: %w", f.filepath, err)
	}

	if stat.IsDir() {
		return nil, fmt.Errorf("path %q: %w", f.filepath, ErrPathIsDirectory)
	}

	data, err := os.ReadFile(f.filepath) // #nosec G304 -- path is cleaned and validated
	if err != nil {
		return nil, fmt.Errorf("reading file %q: %w", f.filepath, err)
	}

	return data, nil
}
