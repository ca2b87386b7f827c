package domain

import (
	"sort"

	"composer/internal/catalog"
)

// EntityKind tags the role a shape plays in the composition
type EntityKind string

const (
	EntityKindCore     EntityKind = "core"
	EntityKindEmbedded EntityKind = "embedded"
	EntityKindRelation EntityKind = "relation"
)

// ShapeEntity is a placed instance on the composition canvas.
type ShapeEntity struct {
	ID         string                        `json:"id"`
	Kind       EntityKind                    `json:"kind"`
	Definition *catalog.EntityTypeDefinition `json:"-"`
	Attributes Attributes                    `json:"attributes"`
	IsNew      bool                          `json:"is_new"`
	Position   Position                      `json:"position"`
	Size       Size                          `json:"size"`
	Config     map[string]any                `json:"config,omitempty"`

	// connections maps a neighbor type key to neighbor ids in insertion order
	connections map[string][]string
	seq         int
	cached      *OrderItem
}

// NewShape creates a shape with initialized collections
func NewShape(id string, kind EntityKind, def *catalog.EntityTypeDefinition, attrs Attributes, isNew bool) *ShapeEntity {
	if attrs == nil {
		attrs = make(Attributes)
	}
	return &ShapeEntity{
		ID:          id,
		Kind:        kind,
		Definition:  def,
		Attributes:  attrs,
		IsNew:       isNew,
		connections: make(map[string][]string),
	}
}

// TypeKey returns the type key of the shape's definition
func (s *ShapeEntity) TypeKey() string {
	if s.Definition == nil {
		return ""
	}
	return s.Definition.TypeKey()
}

// Seq returns the insertion sequence assigned by the owning graph.
func (s *ShapeEntity) Seq() int {
	return s.seq
}

// SetSeq is called by the owning graph when the shape is added.
func (s *ShapeEntity) SetSeq(seq int) {
	s.seq = seq
}

// Rect returns the bounding box of the shape
func (s *ShapeEntity) Rect() Rect {
	return NewRect(s.Position, s.Size)
}

// ConnectionIDs returns a copy of the neighbor ids stored under typeKey
func (s *ShapeEntity) ConnectionIDs(typeKey string) []string {
	ids := s.connections[typeKey]
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// ConnectionCount returns the number of neighbors stored under typeKey
func (s *ShapeEntity) ConnectionCount(typeKey string) int {
	return len(s.connections[typeKey])
}

// ConnectionTypes returns the sorted type keys with at least one neighbor
func (s *ShapeEntity) ConnectionTypes() []string {
	types := make([]string, 0, len(s.connections))
	for k, ids := range s.connections {
		if len(ids) > 0 {
			types = append(types, k)
		}
	}
	sort.Strings(types)
	return types
}

// HasConnection reports whether id is stored under typeKey
func (s *ShapeEntity) HasConnection(typeKey, id string) bool {
	for _, existing := range s.connections[typeKey] {
		if existing == id {
			return true
		}
	}
	return false
}

// AddConnection appends id under typeKey. It returns false, without
// changing anything, when id is already present.
func (s *ShapeEntity) AddConnection(typeKey, id string) bool {
	if s.HasConnection(typeKey, id) {
		return false
	}
	if s.connections == nil {
		s.connections = make(map[string][]string)
	}
	s.connections[typeKey] = append(s.connections[typeKey], id)
	s.Invalidate()
	return true
}

// RemoveConnection drops id from typeKey, keeping the order of the others.
// Empty groups are deleted.
func (s *ShapeEntity) RemoveConnection(typeKey, id string) bool {
	ids := s.connections[typeKey]
	for i, existing := range ids {
		if existing != id {
			continue
		}
		remaining := make([]string, 0, len(ids)-1)
		remaining = append(remaining, ids[:i]...)
		remaining = append(remaining, ids[i+1:]...)
		if len(remaining) == 0 {
			delete(s.connections, typeKey)
		} else {
			s.connections[typeKey] = remaining
		}
		s.Invalidate()
		return true
	}
	return false
}

// SetAttributes replaces the attribute payload
func (s *ShapeEntity) SetAttributes(attrs Attributes) {
	if attrs == nil {
		attrs = make(Attributes)
	}
	s.Attributes = attrs
	s.Invalidate()
}

// SetAttribute sets a single attribute value
func (s *ShapeEntity) SetAttribute(key string, value any) {
	if s.Attributes == nil {
		s.Attributes = make(Attributes)
	}
	s.Attributes[key] = value
	s.Invalidate()
}

// CachedOrderItem returns the cached projection, if still valid
func (s *ShapeEntity) CachedOrderItem() (*OrderItem, bool) {
	return s.cached, s.cached != nil
}

// CacheOrderItem stores a freshly computed projection
func (s *ShapeEntity) CacheOrderItem(item *OrderItem) {
	s.cached = item
}

// Invalidate drops the cached projection
func (s *ShapeEntity) Invalidate() {
	s.cached = nil
}
