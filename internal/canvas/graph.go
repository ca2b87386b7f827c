package canvas

import (
	"sort"

	"composer/internal/core/apperror"
	"composer/internal/domain"
)

// Graph is the node/edge graph of one composition session.
type Graph struct {
	nodes   map[string]*domain.ShapeEntity
	order   []string
	nextSeq int
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[string]*domain.ShapeEntity),
	}
}

// Len returns the number of shapes
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Node returns the shape with the given id
func (g *Graph) Node(id string) (*domain.ShapeEntity, bool) {
	node, ok := g.nodes[id]
	return node, ok
}

// Has reports whether a shape with the given id exists
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Nodes returns the shapes in insertion order
func (g *Graph) Nodes() []*domain.ShapeEntity {
	out := make([]*domain.ShapeEntity, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// NodesOfKind returns the shapes of one kind in insertion order
func (g *Graph) NodesOfKind(kind domain.EntityKind) []*domain.ShapeEntity {
	var out []*domain.ShapeEntity
	for _, id := range g.order {
		if node := g.nodes[id]; node.Kind == kind {
			out = append(out, node)
		}
	}
	return out
}

// AddNode inserts a shape. Ids are unique within a graph.
func (g *Graph) AddNode(node *domain.ShapeEntity) error {
	if node == nil || node.ID == "" {
		return apperror.NewInvariant("shape must have an id")
	}
	if node.Definition == nil {
		return apperror.NewInvariant("shape must reference an entity type").WithDetail("id", node.ID)
	}
	if _, exists := g.nodes[node.ID]; exists {
		return apperror.NewInvariant("duplicate shape id").WithDetail("id", node.ID)
	}
	node.SetSeq(g.nextSeq)
	g.nextSeq++
	g.nodes[node.ID] = node
	g.order = append(g.order, node.ID)
	return nil
}

// Connected reports whether a and b are neighbors
func (g *Graph) Connected(a, b string) bool {
	na, ok := g.nodes[a]
	if !ok {
		return false
	}
	nb, ok := g.nodes[b]
	if !ok {
		return false
	}
	return na.HasConnection(nb.TypeKey(), b)
}

// Neighbors returns the ids of every shape connected to id, grouped by
// type key in sorted order and in insertion order within a group.
func (g *Graph) Neighbors(id string) []string {
	node, ok := g.nodes[id]
	if !ok {
		return nil
	}
	var out []string
	for _, typeKey := range node.ConnectionTypes() {
		out = append(out, node.ConnectionIDs(typeKey)...)
	}
	return out
}

// AddConnection connects a and b on both sides. Every precondition is
// checked before the first write, so a failed call changes nothing.
func (g *Graph) AddConnection(a, b string) error {
	na, nb, err := g.pair(a, b)
	if err != nil {
		return err
	}
	if na.HasConnection(nb.TypeKey(), b) || nb.HasConnection(na.TypeKey(), a) {
		return apperror.NewInvariant("shapes are already connected").
			WithDetail("source", a).
			WithDetail("target", b)
	}
	na.AddConnection(nb.TypeKey(), b)
	nb.AddConnection(na.TypeKey(), a)
	g.invalidateAncestors(na)
	g.invalidateAncestors(nb)
	return nil
}

// RemoveConnection disconnects a and b on both sides.
func (g *Graph) RemoveConnection(a, b string) error {
	na, nb, err := g.pair(a, b)
	if err != nil {
		return err
	}
	if !na.HasConnection(nb.TypeKey(), b) || !nb.HasConnection(na.TypeKey(), a) {
		return apperror.NewInvariant("shapes are not connected").
			WithDetail("source", a).
			WithDetail("target", b)
	}
	na.RemoveConnection(nb.TypeKey(), b)
	nb.RemoveConnection(na.TypeKey(), a)
	g.invalidateAncestors(na)
	g.invalidateAncestors(nb)
	return nil
}

func (g *Graph) pair(a, b string) (*domain.ShapeEntity, *domain.ShapeEntity, error) {
	na, ok := g.nodes[a]
	if !ok {
		return nil, nil, apperror.NewNotFound("shape", a)
	}
	nb, ok := g.nodes[b]
	if !ok {
		return nil, nil, apperror.NewNotFound("shape", b)
	}
	if a == b {
		return nil, nil, apperror.NewInvariant("a shape cannot connect to itself").WithDetail("id", a)
	}
	return na, nb, nil
}

// SetAttributes replaces the attributes of a shape
func (g *Graph) SetAttributes(id string, attrs domain.Attributes) error {
	node, ok := g.nodes[id]
	if !ok {
		return apperror.NewNotFound("shape", id)
	}
	node.SetAttributes(attrs)
	g.invalidateAncestors(node)
	return nil
}

// RemoveNode deletes a shape, drops the reciprocal entries from its
// neighbors and then removes every embedded descendant that no longer has
// a structural parent. It returns the ids of all removed shapes, the
// requested one first.
func (g *Graph) RemoveNode(id string) ([]string, error) {
	if _, ok := g.nodes[id]; !ok {
		return nil, apperror.NewNotFound("shape", id)
	}
	var removed []string
	if err := g.removeCascade(id, &removed); err != nil {
		return removed, err
	}
	return removed, nil
}

func (g *Graph) removeCascade(id string, removed *[]string) error {
	node, ok := g.nodes[id]
	if !ok {
		return nil
	}

	var orphanCandidates []string
	for _, typeKey := range node.ConnectionTypes() {
		for _, neighborID := range node.ConnectionIDs(typeKey) {
			neighbor, ok := g.nodes[neighborID]
			if !ok {
				return apperror.NewInvariant("shape references a missing neighbor").
					WithDetail("id", id).
					WithDetail("neighbor", neighborID)
			}
			neighbor.RemoveConnection(node.TypeKey(), id)
			g.invalidateAncestors(neighbor)
			if neighbor.Kind == domain.EntityKindEmbedded && IsStructuralParent(node, neighbor) {
				orphanCandidates = append(orphanCandidates, neighborID)
			}
		}
	}

	delete(g.nodes, id)
	for i, existing := range g.order {
		if existing == id {
			g.order = append(g.order[:i:i], g.order[i+1:]...)
			break
		}
	}
	*removed = append(*removed, id)

	for _, childID := range orphanCandidates {
		child, ok := g.nodes[childID]
		if !ok {
			continue
		}
		if len(g.StructuralParents(child)) == 0 {
			if err := g.removeCascade(childID, removed); err != nil {
				return err
			}
		}
	}
	return nil
}

// IsStructuralParent reports whether parent's definition declares child's
// type as one of its embedded entities.
func IsStructuralParent(parent, child *domain.ShapeEntity) bool {
	if child.Kind != domain.EntityKindEmbedded || parent.Definition == nil {
		return false
	}
	return parent.Definition.DeclaresEmbedded(child.TypeKey())
}

// StructuralParents returns the connected shapes that embed node.
func (g *Graph) StructuralParents(node *domain.ShapeEntity) []*domain.ShapeEntity {
	var parents []*domain.ShapeEntity
	for _, neighborID := range g.Neighbors(node.ID) {
		neighbor, ok := g.nodes[neighborID]
		if ok && IsStructuralParent(neighbor, node) {
			parents = append(parents, neighbor)
		}
	}
	sort.SliceStable(parents, func(i, j int) bool { return parents[i].Seq() < parents[j].Seq() })
	return parents
}

// invalidateAncestors drops the cached projection of every structural
// ancestor of node. Parents embed their children's payloads, so a change
// below makes their projection stale.
func (g *Graph) invalidateAncestors(node *domain.ShapeEntity) {
	seen := map[string]bool{node.ID: true}
	queue := []*domain.ShapeEntity{node}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, parent := range g.StructuralParents(current) {
			if seen[parent.ID] {
				continue
			}
			seen[parent.ID] = true
			parent.Invalidate()
			queue = append(queue, parent)
		}
	}
}
