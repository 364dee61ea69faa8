package conf

import (
	"fmt"
	"path/filepath"
	"strings"

	jsoncodec "github.com/0xalexb/hjarta-conf/parser/json"
	yamlcodec "github.com/0xalexb/hjarta-conf/parser/yaml"
)

// Codec parses one configuration layer and serializes a tree back out.
// Implementations exist for YAML (parser/yaml) and JSON (parser/json).
type Codec interface {
	Parse(data []byte, target any) error
	Marshal(v any) ([]byte, error)
}

// Fetcher reads the raw data of one configuration layer. A nil result with
// a nil error means an absent optional layer.
type Fetcher interface {
	Fetch() ([]byte, error)
}

// codecFor picks the codec matching the file extension. Only .yml, .yaml
// and .json are valid configuration formats.
func codecFor(path string) (Codec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return yamlcodec.NewCodec(), nil
	case ".json":
		return jsoncodec.NewCodec(), nil
	default:
		return nil, fmt.Errorf("config file %q: %w", path, ErrInvalidExtension)
	}
}

// parseBaseYAML decodes an embedded base document supplied via WithBaseYAML.
func parseBaseYAML(data []byte) (map[string]any, error) {
	return parseLayer(yamlcodec.NewCodec(), data)
}

// parseLayer decodes raw layer data into a tree. Absent or empty data
// yields an empty layer.
func parseLayer(codec Codec, data []byte) (map[string]any, error) {
	if len(data) == 0 {
		return map[string]any{}, nil
	}

	var tree map[string]any

	err := codec.Parse(data, &tree)
	if err != nil {
		return nil, err
	}

	if tree == nil {
		tree = map[string]any{}
	}

	return tree, nil
}
