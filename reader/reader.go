// Package reader interprets files into Go values based on their extension.
//
// JSON and JSON-lines documents decode through goccy/go-json, YAML through
// goccy/go-yaml. Known text extensions yield a string; anything else yields
// the raw bytes. Callers can override or extend the dispatch per extension.
package reader

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
)

// Func decodes one file. Override funcs registered per extension take
// precedence over the built-in dispatch.
type Func func(path string) (any, error)

// textExtensions are read as UTF-8 text rather than bytes.
var textExtensions = map[string]struct{}{
	".txt":  {},
	".csv":  {},
	".js":   {},
	".html": {},
	".css":  {},
	".md":   {},
}

// Interpret reads the file at path and decodes it according to its
// extension. overrides, when non-nil, maps lowercase extensions (including
// the leading dot) to custom decode functions and wins over the built-ins.
func Interpret(path string, overrides map[string]Func) (any, error) {
	ext := strings.ToLower(filepath.Ext(path))

	if fn, ok := overrides[ext]; ok {
		return fn(path)
	}

	switch ext {
	case ".json":
		return interpretJSON(path)
	case ".jsonl":
		return interpretJSONLines(path)
	case ".yml", ".yaml":
		return interpretYAML(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}

	if _, ok := textExtensions[ext]; ok {
		return string(data), nil
	}

	return data, nil
}

func interpretJSON(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}

	var value any

	err = json.Unmarshal(data, &value)
	if err != nil {
		return nil, fmt.Errorf("decoding JSON %q: %w", path, err)
	}

	return value, nil
}

// interpretJSONLines decodes one JSON document per line, skipping blanks.
func interpretJSONLines(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}

	var docs []any

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++

		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}

		var doc any

		err = json.Unmarshal(text, &doc)
		if err != nil {
			return nil, fmt.Errorf("decoding JSON line %d of %q: %w", line, path, err)
		}

		docs = append(docs, doc)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %q: %w", path, err)
	}

	return docs, nil
}

func interpretYAML(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}

	var value any

	err = yaml.Unmarshal(data, &value)
	if err != nil {
		return nil, fmt.Errorf("decoding YAML %q: %w", path, err)
	}

	return value, nil
}
