package layout

import (
	"sort"

	"composer/internal/canvas"
	"composer/internal/domain"
)

// Auto runs Grid followed by Embedded.
func Auto(g *canvas.Graph, opts Options) {
	Grid(g, opts)
	Embedded(g, opts)
}

// Grid places every non-embedded shape in a column chosen by its relation
// depth. Within a column shapes keep insertion order and are stacked by
// height plus RowGap. Embedded shapes are sized but left in place.
func Grid(g *canvas.Graph, opts Options) {
	opts = opts.normalize()

	incoming := incomingLinks(g.Links())
	columns := make(map[int][]*domain.ShapeEntity)
	for _, node := range g.Nodes() {
		ensureSize(node, opts)
		if node.Kind == domain.EntityKindEmbedded {
			continue
		}
		d := depth(node.ID, incoming, make(map[string]bool))
		columns[d] = append(columns[d], node)
	}

	depths := make([]int, 0, len(columns))
	for d := range columns {
		depths = append(depths, d)
	}
	sort.Ints(depths)

	for _, d := range depths {
		x := opts.StartX + float64(d)*opts.ColumnSpacing
		y := opts.StartY
		for _, node := range columns[d] {
			node.Position = domain.Position{X: x, Y: y}
			y += node.Size.Height + opts.RowGap
		}
	}
}

// Depths returns the relation depth of every shape.
func Depths(g *canvas.Graph) map[string]int {
	incoming := incomingLinks(g.Links())
	out := make(map[string]int, g.Len())
	for _, node := range g.Nodes() {
		out[node.ID] = depth(node.ID, incoming, make(map[string]bool))
	}
	return out
}

// depth is 0 for shapes without incoming links, else one more than the
// deepest source. visiting holds the current call chain only; a revisit
// is a cycle and counts as 0.
func depth(id string, incoming map[string][]string, visiting map[string]bool) int {
	if visiting[id] {
		return 0
	}
	sources := incoming[id]
	if len(sources) == 0 {
		return 0
	}

	visiting[id] = true
	defer delete(visiting, id)

	deepest := -1
	for _, source := range sources {
		if d := depth(source, incoming, visiting); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

func incomingLinks(links []domain.Link) map[string][]string {
	incoming := make(map[string][]string)
	for _, link := range links {
		incoming[link.TargetID] = append(incoming[link.TargetID], link.SourceID)
	}
	return incoming
}
