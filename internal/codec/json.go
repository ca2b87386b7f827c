package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"composer/internal/domain"
)

// JSONCodec handles JSON import/export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// ParseSnapshot imports an instance snapshot from JSON. Numbers are kept
// as json.Number so integer attributes survive unchanged.
func (c *JSONCodec) ParseSnapshot(r io.Reader) (*domain.InstanceSnapshot, error) {
	var snapshot domain.InstanceSnapshot
	decoder := json.NewDecoder(r)
	decoder.UseNumber()
	if err := decoder.Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if err := checkSnapshot(&snapshot); err != nil {
		return nil, err
	}

	return &snapshot, nil
}

// Export exports a composition to JSON
func (c *JSONCodec) Export(fragment *domain.Fragment, w io.Writer) error {
	return c.encode(fragment, w)
}

// ExportOrder exports a change-set to JSON
func (c *JSONCodec) ExportOrder(items []domain.OrderItem, w io.Writer) error {
	if items == nil {
		items = []domain.OrderItem{}
	}
	return c.encode(orderDocument{Items: items}, w)
}

func (c *JSONCodec) encode(v any, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
