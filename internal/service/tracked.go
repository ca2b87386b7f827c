package service

import "composer/internal/domain"

// TrackedShape is the state of a service shape when the composition was
// opened. Attributes hold its projected payload at that time.
type TrackedShape struct {
	ID            string
	Kind          domain.EntityKind
	ServiceEntity string
	Attributes    domain.Attributes
}

// Tracked is the snapshot of initial shapes used for delete detection.
type Tracked struct {
	shapes map[string]TrackedShape
	order  []string
}

// NewTracked creates an empty snapshot
func NewTracked() *Tracked {
	return &Tracked{shapes: make(map[string]TrackedShape)}
}

// Track records a shape, replacing an earlier record with the same id.
func (t *Tracked) Track(shape TrackedShape) {
	if _, exists := t.shapes[shape.ID]; !exists {
		t.order = append(t.order, shape.ID)
	}
	t.shapes[shape.ID] = shape
}

// Get returns the record of id
func (t *Tracked) Get(id string) (TrackedShape, bool) {
	if t == nil {
		return TrackedShape{}, false
	}
	shape, ok := t.shapes[id]
	return shape, ok
}

// Exclude forgets id, so its absence from the graph no longer means a
// delete.
func (t *Tracked) Exclude(id string) bool {
	if _, ok := t.shapes[id]; !ok {
		return false
	}
	delete(t.shapes, id)
	for i, existing := range t.order {
		if existing == id {
			t.order = append(t.order[:i:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// IDs returns the tracked ids in the order they were recorded
func (t *Tracked) IDs() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns the number of tracked shapes
func (t *Tracked) Len() int {
	if t == nil {
		return 0
	}
	return len(t.shapes)
}
