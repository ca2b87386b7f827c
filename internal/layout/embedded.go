package layout

import (
	"sort"

	"composer/internal/canvas"
	"composer/internal/domain"
)

// Embedded stacks embedded shapes in a column right of their parent,
// starting at the parent's row. The parent is the source of an incoming
// link, preferring a structural parent. Groups keep their current
// vertical order, and nested groups are placed after their own parent has
// moved. Collisions are avoided with a tracker seeded with every shape.
func Embedded(g *canvas.Graph, opts Options) {
	opts = opts.normalize()

	tracker := NewTracker(opts)
	for _, node := range g.Nodes() {
		ensureSize(node, opts)
		tracker.Reserve(node.ID, node.Rect())
	}

	incoming := incomingLinks(g.Links())
	parentOf := make(map[string]*domain.ShapeEntity)
	groups := make(map[string][]*domain.ShapeEntity)
	for _, node := range g.NodesOfKind(domain.EntityKindEmbedded) {
		parent := layoutParent(g, node, incoming[node.ID])
		if parent == nil {
			continue
		}
		parentOf[node.ID] = parent
		groups[parent.ID] = append(groups[parent.ID], node)
	}

	parents := make([]*domain.ShapeEntity, 0, len(groups))
	nesting := make(map[string]int, len(groups))
	for id := range groups {
		parent, _ := g.Node(id)
		parents = append(parents, parent)
		nesting[id] = nestingLevel(id, parentOf, make(map[string]bool))
	}
	sort.Slice(parents, func(i, j int) bool {
		if nesting[parents[i].ID] != nesting[parents[j].ID] {
			return nesting[parents[i].ID] < nesting[parents[j].ID]
		}
		return parents[i].Seq() < parents[j].Seq()
	})

	for _, parent := range parents {
		children := groups[parent.ID]
		sort.SliceStable(children, func(i, j int) bool {
			if children[i].Position.Y != children[j].Position.Y {
				return children[i].Position.Y < children[j].Position.Y
			}
			return children[i].Seq() < children[j].Seq()
		})

		for _, child := range children {
			tracker.Release(child.ID)
		}

		x := parent.Position.X + parent.Size.Width + opts.EmbeddedOffsetX
		y := parent.Position.Y
		for _, child := range children {
			y = tracker.FindNextYPosition(x, child.Size.Width, child.Size.Height, y, child.ID)
			child.Position = domain.Position{X: x, Y: y}
			tracker.Reserve(child.ID, child.Rect())
			y += child.Size.Height + opts.RowGap
		}
	}
}

func layoutParent(g *canvas.Graph, node *domain.ShapeEntity, sources []string) *domain.ShapeEntity {
	var fallback *domain.ShapeEntity
	for _, id := range sources {
		source, ok := g.Node(id)
		if !ok {
			continue
		}
		if canvas.IsStructuralParent(source, node) {
			return source
		}
		if fallback == nil || source.Seq() < fallback.Seq() {
			fallback = source
		}
	}
	return fallback
}

// nestingLevel counts the embedded ancestors of id.
func nestingLevel(id string, parentOf map[string]*domain.ShapeEntity, visiting map[string]bool) int {
	parent, ok := parentOf[id]
	if !ok || visiting[id] {
		return 0
	}
	visiting[id] = true
	return 1 + nestingLevel(parent.ID, parentOf, visiting)
}
