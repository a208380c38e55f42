// Package codec reads and writes batches of raw content records.
package codec

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gigsafe/internal/domain"
)

// ErrUnknownFormat is returned when no codec handles a format or extension
var ErrUnknownFormat = errors.New("unknown format")

// Importer interface for importing raw records from various formats
type Importer interface {
	Parse(r io.Reader) (*domain.Fragment, error)
	Format() string
}

// Exporter interface for exporting raw records to various formats
type Exporter interface {
	Export(fragment *domain.Fragment, w io.Writer) error
	Format() string
}

// Codec both imports and exports a format
type Codec interface {
	Importer
	Exporter
}

// ForFormat returns the codec registered for a format name
func ForFormat(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json", "jsonl", "ndjson":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// ForPath picks a codec from a file extension
func ForPath(path string) (Codec, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return nil, fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, path)
	}
	return ForFormat(ext)
}

// Supported reports whether a file extension has a codec
func Supported(path string) bool {
	_, err := ForPath(path)
	return err == nil
}

// collect flattens one decoded document into the fragment. A document may
// be a single record, a {"records": [...]} envelope or a list of records.
// Entries that are not objects are counted as invalid.
func collect(fragment *domain.Fragment, doc any) {
	switch v := doc.(type) {
	case nil:
	case map[string]any:
		if recs, ok := v["records"].([]any); ok && len(v) == 1 {
			collect(fragment, recs)
			return
		}
		fragment.Add(domain.RawRecord(v))
	case []any:
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				fragment.Add(domain.RawRecord(m))
			} else {
				fragment.Invalid++
			}
		}
	default:
		fragment.Invalid++
	}
}
