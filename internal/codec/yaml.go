package codec

import (
	"errors"
	"fmt"
	"io"
	"time"

	"gigsafe/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles YAML import/export. Multi-document streams are read
// document by document.
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

type yamlFragment struct {
	Records []domain.RawRecord `yaml:"records"`
}

// Parse imports raw records from YAML
func (c *YAMLCodec) Parse(r io.Reader) (*domain.Fragment, error) {
	fragment := domain.NewFragment()

	decoder := yaml.NewDecoder(r)
	for {
		var doc any
		err := decoder.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		collect(fragment, plain(doc))
	}

	return fragment, nil
}

// Export exports raw records to YAML
func (c *YAMLCodec) Export(fragment *domain.Fragment, w io.Writer) error {
	yf := yamlFragment{Records: fragment.Records}
	if yf.Records == nil {
		yf.Records = []domain.RawRecord{}
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&yf); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}

// plain converts YAML-specific shapes into the ones the JSON decoder
// produces: string-keyed maps and RFC 3339 strings for timestamps.
func plain(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, item := range t {
			t[k] = plain(item)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, item := range t {
			m[fmt.Sprint(k)] = plain(item)
		}
		return m
	case []any:
		for i, item := range t {
			t[i] = plain(item)
		}
		return t
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return v
	}
}
