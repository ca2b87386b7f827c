package layout

import "composer/internal/domain"

// FixCollisions walks nodes in order and moves each one down, by the
// tracker step, until it overlaps none of the nodes before it. It returns
// the number of nodes that moved.
func FixCollisions(nodes []*domain.ShapeEntity, opts Options) int {
	opts = opts.normalize()
	tracker := NewTracker(opts)

	moved := 0
	for _, node := range nodes {
		ensureSize(node, opts)
		y := tracker.FindNextYPosition(node.Position.X, node.Size.Width, node.Size.Height, node.Position.Y, node.ID)
		if y != node.Position.Y {
			node.Position.Y = y
			moved++
		}
		tracker.Reserve(node.ID, node.Rect())
	}
	return moved
}

// PlaceBelow puts node in the first free slot of column x at or below
// StartY, avoiding every other shape in others.
func PlaceBelow(node *domain.ShapeEntity, others []*domain.ShapeEntity, x float64, opts Options) {
	opts = opts.normalize()
	tracker := NewTracker(opts)
	for _, other := range others {
		ensureSize(other, opts)
		tracker.Reserve(other.ID, other.Rect())
	}
	ensureSize(node, opts)
	y := tracker.FindNextYPosition(x, node.Size.Width, node.Size.Height, opts.StartY, node.ID)
	node.Position = domain.Position{X: x, Y: y}
}
