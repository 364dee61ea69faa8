package download_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/0xalexb/hjarta-conf/download"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return server
}

func TestFetch_WritesBody(t *testing.T) {
	t.Parallel()

	server := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("payload"))
	})

	dest := t.TempDir()
	client := download.NewClient()

	path, err := client.Fetch(context.Background(), server.URL+"/files/model.bin", dest, "model.bin")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "model.bin"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestFetch_FilenameFromContentDisposition(t *testing.T) {
	t.Parallel()

	server := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="served.bin"`)
		_, _ = w.Write([]byte("x"))
	})

	dest := t.TempDir()
	client := download.NewClient()

	path, err := client.Fetch(context.Background(), server.URL, dest, "")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "served.bin"), path)
}

func TestFetch_FilenameFromURL(t *testing.T) {
	t.Parallel()

	server := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("x"))
	})

	dest := t.TempDir()
	client := download.NewClient()

	path, err := client.Fetch(context.Background(), server.URL+"/data/words.txt", dest, "")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "words.txt"), path)
}

func TestFetch_CreatesDestDir(t *testing.T) {
	t.Parallel()

	server := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("x"))
	})

	dest := filepath.Join(t.TempDir(), "nested", "dir")
	client := download.NewClient()

	path, err := client.Fetch(context.Background(), server.URL, dest, "file.bin")

	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestFetch_RefusesOverwrite(t *testing.T) {
	t.Parallel()

	server := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("new"))
	})

	dest := t.TempDir()
	existing := filepath.Join(dest, "file.bin")
	require.NoError(t, os.WriteFile(existing, []byte("old"), 0o644))

	client := download.NewClient()

	_, err := client.Fetch(context.Background(), server.URL, dest, "file.bin")
	assert.ErrorIs(t, err, download.ErrExists)

	permissive := download.NewClient(download.WithOverwrite())

	path, err := permissive.Fetch(context.Background(), server.URL, dest, "file.bin")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestFetch_ErrorStatus(t *testing.T) {
	t.Parallel()

	server := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})

	client := download.NewClient()

	_, err := client.Fetch(context.Background(), server.URL, t.TempDir(), "file.bin")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestFetch_BinaryOnlyRejectsHTML(t *testing.T) {
	t.Parallel()

	server := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html></html>"))
	})

	client := download.NewClient(download.WithBinaryOnly())

	_, err := client.Fetch(context.Background(), server.URL, t.TempDir(), "page.bin")

	assert.ErrorIs(t, err, download.ErrNotDownloadable)
}

func TestFetch_MaxSize(t *testing.T) {
	t.Parallel()

	server := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")

		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte("0123456789"))
		}
	})

	client := download.NewClient(download.WithMaxSize(4))

	_, err := client.Fetch(context.Background(), server.URL, t.TempDir(), "file.bin")

	assert.ErrorIs(t, err, download.ErrTooLarge)
}
