// Package yaml implements the conf.Codec interface for YAML configuration
// layers using goccy/go-yaml.
package yaml

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

// ErrEmptyData is returned when the input data is empty.
var ErrEmptyData = errors.New("empty data")

// Codec parses and serializes YAML documents.
type Codec struct{}

// NewCodec creates a new YAML codec instance.
func NewCodec() *Codec {
	return &Codec{}
}

// Parse unmarshals YAML data into the target.
func (c *Codec) Parse(data []byte, target any) error {
	if len(data) == 0 {
		return ErrEmptyData
	}

	err := yaml.Unmarshal(data, target)
	if err != nil {
		return fmt.Errorf("unmarshal error: %w", err)
	}

	return nil
}

// Marshal serializes v as a YAML document.
func (c *Codec) Marshal(v any) ([]byte, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal error: %w", err)
	}

	return data, nil
}
