package file_test

import (
	"os"
	"path/filepath"
	"testing"

	filefetcher "github.com/0xalexb/hjarta-conf/fetcher/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch_ReadsFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1\n"), 0o644))

	fetcher := filefetcher.NewFetcher(path, false)

	data, err := fetcher.Fetch()

	require.NoError(t, err)
	assert.Equal(t, "a: 1\n", string(data))
}

func TestFetch_ReadsCurrentContents(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1\n"), 0o644))

	fetcher := filefetcher.NewFetcher(path, false)

	_, err := fetcher.Fetch()
	require.NoError(t, err)

	// Fetch reads at call time, not construction time.
	require.NoError(t, os.WriteFile(path, []byte("a: 2\n"), 0o644))

	data, err := fetcher.Fetch()
	require.NoError(t, err)
	assert.Equal(t, "a: 2\n", string(data))
}

func TestFetch_MissingRequiredFile(t *testing.T) {
	t.Parallel()

	fetcher := filefetcher.NewFetcher(filepath.Join(t.TempDir(), "absent.yml"), false)

	_, err := fetcher.Fetch()

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFetch_MissingOptionalFile(t *testing.T) {
	t.Parallel()

	fetcher := filefetcher.NewFetcher(filepath.Join(t.TempDir(), "absent.yml"), true)

	data, err := fetcher.Fetch()

	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestFetch_Directory(t *testing.T) {
	t.Parallel()

	fetcher := filefetcher.NewFetcher(t.TempDir(), false)

	_, err := fetcher.Fetch()

	assert.ErrorIs(t, err, filefetcher.ErrPathIsDirectory)
}
