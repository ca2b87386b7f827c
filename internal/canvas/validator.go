package canvas

import (
	"composer/internal/domain"
	"composer/internal/relations"
)

// Validator answers connection and removal questions against a compiled
// relations graph. It never mutates the canvas graph.
type Validator struct {
	relations relations.Graph
}

// NewValidator creates a validator over rg
func NewValidator(rg relations.Graph) *Validator {
	return &Validator{relations: rg}
}

// Relations returns the relations graph the validator consults
func (v *Validator) Relations() relations.Graph {
	return v.relations
}

// IsConnectionAllowed reports whether source may be connected to target.
// Both shapes must exist, differ, not already be neighbors, and accept the
// connection from their own side.
func (v *Validator) IsConnectionAllowed(g *Graph, sourceID, targetID string) bool {
	source, ok := g.Node(sourceID)
	if !ok {
		return false
	}
	target, ok := g.Node(targetID)
	if !ok {
		return false
	}
	if sourceID == targetID {
		return false
	}
	if !v.relations.Has(source.TypeKey()) && !v.relations.Has(target.TypeKey()) {
		return false
	}
	if g.Connected(sourceID, targetID) || g.Connected(targetID, sourceID) {
		return false
	}
	return v.ValidateConnection(source, target) && v.ValidateConnection(target, source)
}

// ValidateConnection checks one side of a prospective connection: self
// must declare (or mirror) a rule towards other, must still be editable,
// and must have room below the upper limit.
func (v *Validator) ValidateConnection(self, other *domain.ShapeEntity) bool {
	edge, ok := v.relations.Edge(self.TypeKey(), other.TypeKey())
	if !ok {
		return false
	}
	if edge.Modifier.IsImmutableAfterCreate() && !self.IsNew {
		return false
	}
	return edge.Rule.Accepts(self.ConnectionCount(other.TypeKey()))
}

// CanRemoveShape reports whether shape may be deleted from the canvas.
// New shapes can always go. An existing shape cannot shed connections
// governed by a create-only declaration, and cannot leave an existing
// neighbor below its lower limit or holding an immutable connection.
func (v *Validator) CanRemoveShape(g *Graph, shape *domain.ShapeEntity) bool {
	if shape.IsNew {
		return true
	}

	for _, typeKey := range shape.ConnectionTypes() {
		edge, ok := v.relations.Edge(shape.TypeKey(), typeKey)
		if ok && edge.Modifier.IsImmutableAfterCreate() {
			return false
		}
	}

	for _, neighborID := range g.Neighbors(shape.ID) {
		neighbor, ok := g.Node(neighborID)
		if !ok || neighbor.IsNew {
			continue
		}
		edge, ok := v.relations.Edge(neighbor.TypeKey(), shape.TypeKey())
		if !ok || !edge.Declared {
			continue
		}
		if edge.Modifier.IsImmutableAfterCreate() {
			return false
		}
		if !edge.Rule.Satisfied(neighbor.ConnectionCount(shape.TypeKey()) - 1) {
			return false
		}
	}
	return true
}

// CanRemoveLink reports whether the connection between a and b may be
// removed without breaking a lower limit or an immutable declaration on
// either existing endpoint. New endpoints are drafts: their missing
// connections are reported by MissingConnections instead.
func (v *Validator) CanRemoveLink(g *Graph, a, b string) bool {
	source, ok := g.Node(a)
	if !ok {
		return false
	}
	target, ok := g.Node(b)
	if !ok {
		return false
	}
	if !g.Connected(a, b) {
		return false
	}
	return v.canDetach(source, target) && v.canDetach(target, source)
}

// canDetach checks one side of a link removal. Only the side declaring a
// relation is bound by it.
func (v *Validator) canDetach(self, other *domain.ShapeEntity) bool {
	if self.IsNew {
		return true
	}
	edge, ok := v.relations.Edge(self.TypeKey(), other.TypeKey())
	if !ok || !edge.Declared {
		return true
	}
	if edge.Modifier.IsImmutableAfterCreate() {
		return false
	}
	return edge.Rule.Satisfied(self.ConnectionCount(other.TypeKey()) - 1)
}

// HasRule reports whether a shape of type a may ever connect to type b.
func (v *Validator) HasRule(a, b string) bool {
	_, ok := v.relations.Edge(a, b)
	return ok
}

// AvailableTargets returns the ids of the shapes sourceID may connect to,
// in insertion order.
func (v *Validator) AvailableTargets(g *Graph, sourceID string) []string {
	var out []string
	for _, node := range g.Nodes() {
		if v.IsConnectionAllowed(g, sourceID, node.ID) {
			out = append(out, node.ID)
		}
	}
	return out
}

// MissingConnections returns, per neighbor type key, how many connections
// shape still needs to reach the lower limit. Relations declared by the
// other side are not counted.
func (v *Validator) MissingConnections(shape *domain.ShapeEntity) map[string]int {
	missing := make(map[string]int)
	for _, typeKey := range v.relations.Neighbors(shape.TypeKey()) {
		edge, _ := v.relations.Edge(shape.TypeKey(), typeKey)
		if !edge.Declared {
			continue
		}
		if count := shape.ConnectionCount(typeKey); count < edge.Rule.LowerLimit {
			missing[typeKey] = edge.Rule.LowerLimit - count
		}
	}
	return missing
}
