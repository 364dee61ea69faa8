package resource_test

import (
	"testing"

	"github.com/0xalexb/hjarta-conf/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  map[string]any
		isFile bool
	}{
		{
			name:   "recognized fields only",
			input:  map[string]any{"name": "stopwords.txt", "paths": []any{"."}},
			isFile: true,
		},
		{
			name:   "empty map lacks all identifying fields",
			input:  map[string]any{},
			isFile: false,
		},
		{
			name:   "download_dest alone lacks identifying fields",
			input:  map[string]any{"download_dest": "/tmp"},
			isFile: false,
		},
		{
			name:   "url only",
			input:  map[string]any{"url": "https://example.com/model.bin"},
			isFile: true,
		},
		{
			name:   "legacy resolved path field",
			input:  map[string]any{"name": "a.yml", "_path": "/tmp/a.yml"},
			isFile: true,
		},
		{
			name:   "unrecognized key disqualifies",
			input:  map[string]any{"name": "a.yml", "timeout": 30},
			isFile: false,
		},
		{
			name:   "plain nested mapping",
			input:  map[string]any{"host": "localhost", "port": 5432},
			isFile: false,
		},
		{
			name:   "explicit is_file true overrides key check",
			input:  map[string]any{"is_file": true, "name": "a.yml"},
			isFile: true,
		},
		{
			name:   "explicit is_file false overrides key check",
			input:  map[string]any{"is_file": false, "name": "a.yml"},
			isFile: false,
		},
		{
			name:   "non-bool is_file disqualifies",
			input:  map[string]any{"is_file": "yes"},
			isFile: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			desc, ok := resource.Classify(tt.input)

			assert.Equal(t, tt.isFile, ok)

			if tt.isFile {
				assert.NotNil(t, desc)
			} else {
				assert.Nil(t, desc)
			}
		})
	}
}

func TestClassify_ParsesFields(t *testing.T) {
	t.Parallel()

	desc, ok := resource.Classify(map[string]any{
		"name":          "model.bin",
		"url":           "https://example.com/model.bin",
		"paths":         []any{"/data", "/var/data"},
		"download_dest": "/tmp/models",
	})

	require.True(t, ok)
	assert.Equal(t, "model.bin", desc.Name)
	assert.Equal(t, "https://example.com/model.bin", desc.URL)
	assert.Equal(t, []string{"/data", "/var/data"}, desc.Paths)
	assert.Equal(t, "/tmp/models", desc.DownloadDest)
}

func TestClassify_BareStringPath(t *testing.T) {
	t.Parallel()

	desc, ok := resource.Classify(map[string]any{"paths": "/data"})

	require.True(t, ok)
	assert.Equal(t, []string{"/data"}, desc.Paths)
}
