package canvas

import "composer/internal/domain"

// Links derives the edges of the graph from the shapes' connection maps.
// Each connected pair yields one link. Links run from a structural parent
// to its embedded child, else from the declaring side of a relation, else
// from the earlier inserted shape.
func (g *Graph) Links() []domain.Link {
	var links []domain.Link
	seen := make(map[[2]string]bool)
	for _, node := range g.Nodes() {
		for _, typeKey := range node.ConnectionTypes() {
			for _, neighborID := range node.ConnectionIDs(typeKey) {
				neighbor, ok := g.nodes[neighborID]
				if !ok {
					continue
				}
				source, target := orient(node, neighbor)
				key := [2]string{source.ID, target.ID}
				if seen[key] {
					continue
				}
				seen[key] = true
				links = append(links, domain.NewLink(source.ID, target.ID, target.TypeKey()))
			}
		}
	}
	return links
}

// LinksOf returns the links touching id
func (g *Graph) LinksOf(id string) []domain.Link {
	var out []domain.Link
	for _, link := range g.Links() {
		if link.Involves(id) {
			out = append(out, link)
		}
	}
	return out
}

func orient(a, b *domain.ShapeEntity) (*domain.ShapeEntity, *domain.ShapeEntity) {
	switch {
	case IsStructuralParent(a, b):
		return a, b
	case IsStructuralParent(b, a):
		return b, a
	}

	aDeclares := a.Definition != nil && a.Definition.DeclaresRelationTo(b.TypeKey())
	bDeclares := b.Definition != nil && b.Definition.DeclaresRelationTo(a.TypeKey())
	switch {
	case aDeclares && !bDeclares:
		return a, b
	case bDeclares && !aDeclares:
		return b, a
	}

	if b.Seq() < a.Seq() {
		return b, a
	}
	return a, b
}
