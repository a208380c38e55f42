package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gigsafe/internal/domain"
)

// JSONCodec handles JSON import/export. Input may be a {"records": [...]}
// envelope, a bare array, or a stream of objects (JSON Lines).
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Parse imports raw records from JSON. Numbers are kept as json.Number.
func (c *JSONCodec) Parse(r io.Reader) (*domain.Fragment, error) {
	fragment := domain.NewFragment()

	decoder := json.NewDecoder(r)
	decoder.UseNumber()

	for {
		var doc any
		err := decoder.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		collect(fragment, doc)
	}

	return fragment, nil
}

// Export exports raw records to JSON
func (c *JSONCodec) Export(fragment *domain.Fragment, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(fragment); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
