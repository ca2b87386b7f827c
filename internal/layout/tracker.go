package layout

import "composer/internal/domain"

// Tracker is a reservation index of shape rectangles. It is not safe for
// concurrent use.
type Tracker struct {
	slots       map[string]domain.Rect
	step        float64
	maxAttempts int
}

// NewTracker creates an empty tracker probing with the step and attempt
// cap of opts.
func NewTracker(opts Options) *Tracker {
	opts = opts.normalize()
	return &Tracker{
		slots:       make(map[string]domain.Rect),
		step:        opts.Step,
		maxAttempts: opts.MaxAttempts,
	}
}

// Reserve records r under id, replacing any previous slot.
func (t *Tracker) Reserve(id string, r domain.Rect) {
	t.slots[id] = r
}

// UpdatePosition moves the slot of id, keeping its size. It reports
// whether the slot existed.
func (t *Tracker) UpdatePosition(id string, p domain.Position) bool {
	r, ok := t.slots[id]
	if !ok {
		return false
	}
	r.X, r.Y = p.X, p.Y
	t.slots[id] = r
	return true
}

// Release drops the slot of id
func (t *Tracker) Release(id string) {
	delete(t.slots, id)
}

// Clear drops every slot
func (t *Tracker) Clear() {
	t.slots = make(map[string]domain.Rect)
}

// Len returns the number of reserved slots
func (t *Tracker) Len() int {
	return len(t.slots)
}

// Slot returns the rect reserved under id
func (t *Tracker) Slot(id string) (domain.Rect, bool) {
	r, ok := t.slots[id]
	return r, ok
}

// Overlaps reports whether r intersects any slot other than excludeID's.
func (t *Tracker) Overlaps(r domain.Rect, excludeID string) bool {
	for id, slot := range t.slots {
		if id == excludeID {
			continue
		}
		if r.Overlaps(slot) {
			return true
		}
	}
	return false
}

// FindNextYPosition returns the first y at or below startY where a
// width x height rect at x overlaps no reservation other than excludeID.
// Probing moves down by the tracker step. When the attempt cap is hit
// the last candidate is returned as is.
func (t *Tracker) FindNextYPosition(x, width, height, startY float64, excludeID string) float64 {
	y := startY
	for attempt := 0; attempt < t.maxAttempts; attempt++ {
		candidate := domain.Rect{X: x, Y: y, Width: width, Height: height}
		if !t.Overlaps(candidate, excludeID) {
			return y
		}
		y += t.step
	}
	return y
}
