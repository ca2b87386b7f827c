package layout

import (
	"encoding/json"
	"fmt"
	"strings"

	"composer/internal/canvas"
	"composer/internal/core/apperror"
	"composer/internal/domain"
)

// MetadataVersion is written into every encoded layout blob.
const MetadataVersion = 1

// Metadata is the persisted layout of a composition.
type Metadata struct {
	Version     int              `json:"version"`
	Coordinates []NodeCoordinate `json:"coordinates"`
}

// NodeCoordinate is the saved position of one shape.
type NodeCoordinate struct {
	ID          string          `json:"id"`
	Coordinates domain.Position `json:"coordinates"`
}

// ParseMetadata decodes a layout blob. An empty blob yields nil metadata.
// Decoding failures and blobs of another version are returned as
// MALFORMED_METADATA errors.
func ParseMetadata(raw string) (*Metadata, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var m Metadata
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, apperror.NewMalformedMetadata(err)
	}
	if m.Version != MetadataVersion {
		return nil, apperror.NewMalformedMetadata(fmt.Errorf("unsupported layout version %d", m.Version)).
			WithDetail("version", m.Version)
	}
	for i, c := range m.Coordinates {
		if c.ID == "" {
			return nil, apperror.NewMalformedMetadata(nil).WithDetail("index", i)
		}
	}
	return &m, nil
}

// NewMetadata captures the current positions of every shape in g.
func NewMetadata(g *canvas.Graph) *Metadata {
	m := &Metadata{Version: MetadataVersion}
	for _, node := range g.Nodes() {
		m.Coordinates = append(m.Coordinates, NodeCoordinate{ID: node.ID, Coordinates: node.Position})
	}
	return m
}

// EncodeMetadata serializes the positions of every shape in g.
func EncodeMetadata(g *canvas.Graph) (string, error) {
	data, err := json.Marshal(NewMetadata(g))
	if err != nil {
		return "", apperror.NewInternal(err)
	}
	return string(data), nil
}

// Positions returns the saved coordinates by shape id.
func (m *Metadata) Positions() map[string]domain.Position {
	if m == nil {
		return nil
	}
	out := make(map[string]domain.Position, len(m.Coordinates))
	for _, c := range m.Coordinates {
		out[c.ID] = c.Coordinates
	}
	return out
}

// Apply moves the shapes of g listed in m and returns the moved shapes in
// graph order. Unknown ids are ignored.
func (m *Metadata) Apply(g *canvas.Graph) []*domain.ShapeEntity {
	positions := m.Positions()
	if len(positions) == 0 {
		return nil
	}
	var applied []*domain.ShapeEntity
	for _, node := range g.Nodes() {
		if p, ok := positions[node.ID]; ok {
			node.Position = p
			applied = append(applied, node)
		}
	}
	return applied
}
