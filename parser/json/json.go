// Package json implements the conf.Codec interface for JSON configuration
// layers using goccy/go-json.
package json

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// ErrEmptyData is returned when the input data is empty.
var ErrEmptyData = errors.New("empty data")

// Codec parses and serializes JSON documents.
type Codec struct{}

// NewCodec creates a new JSON codec instance.
func NewCodec() *Codec {
	return &Codec{}
}

// Parse unmarshals JSON data into the target.
func (c *Codec) Parse(data []byte, target any) error {
	if len(data) == 0 {
		return ErrEmptyData
	}

	err := json.Unmarshal(data, target)
	if err != nil {
		return fmt.Errorf("unmarshal error: %w", err)
	}

	return nil
}

// Marshal serializes v as indented JSON.
func (c *Codec) Marshal(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal error: %w", err)
	}

	return data, nil
}
