package codec

import (
	"fmt"
	"io"
	"strings"

	"composer/internal/domain"
)

// Importer reads instance snapshots from a format
type Importer interface {
	ParseSnapshot(r io.Reader) (*domain.InstanceSnapshot, error)
	Format() string
}

// Exporter writes compositions and change-sets to a format
type Exporter interface {
	Export(fragment *domain.Fragment, w io.Writer) error
	ExportOrder(items []domain.OrderItem, w io.Writer) error
	Format() string
}

// Codec is both an Importer and an Exporter
type Codec interface {
	Importer
	Exporter
}

// ForFormat returns the codec registered under name
func ForFormat(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	}
	return nil, fmt.Errorf("unsupported format %q", name)
}

// orderDocument wraps a change-set for export
type orderDocument struct {
	Items []domain.OrderItem `json:"service_order_items" yaml:"service_order_items"`
}

func checkSnapshot(s *domain.InstanceSnapshot) error {
	if s.Instance.ID == "" {
		return fmt.Errorf("snapshot instance has no id")
	}
	if s.Instance.ServiceEntity == "" {
		return fmt.Errorf("snapshot instance %s has no service_entity", s.Instance.ID)
	}
	for i, related := range s.RelatedInstances {
		if related.ID == "" {
			return fmt.Errorf("related instance %d has no id", i)
		}
	}
	return nil
}
