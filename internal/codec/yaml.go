package codec

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"composer/internal/domain"
)

// YAMLCodec handles YAML import/export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// ParseSnapshot imports an instance snapshot from YAML
func (c *YAMLCodec) ParseSnapshot(r io.Reader) (*domain.InstanceSnapshot, error) {
	var snapshot domain.InstanceSnapshot
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := checkSnapshot(&snapshot); err != nil {
		return nil, err
	}

	return &snapshot, nil
}

// Export exports a composition to YAML
func (c *YAMLCodec) Export(fragment *domain.Fragment, w io.Writer) error {
	return c.encode(fragment, w)
}

// ExportOrder exports a change-set to YAML
func (c *YAMLCodec) ExportOrder(items []domain.OrderItem, w io.Writer) error {
	if items == nil {
		items = []domain.OrderItem{}
	}
	return c.encode(orderDocument{Items: items}, w)
}

func (c *YAMLCodec) encode(v any, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
