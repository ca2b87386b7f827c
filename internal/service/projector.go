package service

import (
	"fmt"

	"github.com/google/uuid"

	"composer/internal/canvas"
	"composer/internal/catalog"
	"composer/internal/domain"
)

// Projector turns service shapes into order items.
type Projector struct {
	sanitizer AttributeSanitizer
}

// NewProjector creates a projector. A nil sanitizer means DefaultSanitizer.
func NewProjector(sanitizer AttributeSanitizer) *Projector {
	if sanitizer == nil {
		sanitizer = DefaultSanitizer{}
	}
	return &Projector{sanitizer: sanitizer}
}

// Project returns the order item of a core or relation shape. The result
// is cached on the shape until its attributes or connections change, or
// those of one of its embedded descendants.
func (p *Projector) Project(g *canvas.Graph, node *domain.ShapeEntity) *domain.OrderItem {
	if item, ok := node.CachedOrderItem(); ok {
		return item
	}

	def := node.Definition
	attrs := node.Attributes.Clone()
	if attrs == nil {
		attrs = make(domain.Attributes)
	}
	if node.IsNew {
		attrs = attrs.Without(def.ReadOnlyKeys())
	}
	reconstructRelations(node, def, attrs)
	p.reconstructEmbedded(g, node, def, attrs, node.IsNew, map[string]bool{node.ID: true})
	attrs = p.sanitizer.Sanitize(def, attrs).Only(def.AllowedKeys())

	action := domain.ActionUpdate
	if node.IsNew {
		action = domain.ActionCreate
	}
	item := &domain.OrderItem{
		InstanceID:    node.ID,
		ServiceEntity: def.Name,
		Action:        domain.ActionPtr(action),
		Attributes:    attrs,
		Config:        node.Config,
	}
	node.CacheOrderItem(item)
	return item
}

// OrderItems projects every core and relation shape of g in insertion
// order, then appends a delete item for each tracked shape that is no
// longer in g. Existing relation shapes whose payload did not change get
// a nil action.
func (p *Projector) OrderItems(g *canvas.Graph, tracked *Tracked) []*domain.OrderItem {
	var items []*domain.OrderItem
	for _, node := range g.Nodes() {
		if node.Kind == domain.EntityKindEmbedded || node.Definition == nil {
			continue
		}
		item := p.Project(g, node)
		if node.Kind == domain.EntityKindRelation && !node.IsNew {
			if initial, ok := tracked.Get(node.ID); ok && initial.Attributes.Equal(item.Attributes) {
				unchanged := *item
				unchanged.Action = nil
				item = &unchanged
			}
		}
		items = append(items, item)
	}

	for _, id := range tracked.IDs() {
		if g.Has(id) {
			continue
		}
		initial, _ := tracked.Get(id)
		items = append(items, &domain.OrderItem{
			InstanceID:    id,
			ServiceEntity: initial.ServiceEntity,
			Action:        domain.ActionPtr(domain.ActionDelete),
		})
	}
	return items
}

// Export prepares items for submission. No-op items are dropped, and the
// payload of an update without explicit edits becomes a single replace
// edit at the root.
func Export(items []*domain.OrderItem) []domain.OrderItem {
	out := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		if item == nil || item.Action == nil {
			continue
		}
		exported := *item
		if exported.Is(domain.ActionUpdate) && len(exported.Edits) == 0 {
			exported.Edits = []domain.Edit{{
				EditID:    fmt.Sprintf("%s_order_update-%s", exported.InstanceID, uuid.NewString()),
				Operation: domain.EditOperationReplace,
				Target:    domain.EditTargetRoot,
				Value:     exported.Attributes,
			}}
			exported.Attributes = nil
		}
		out = append(out, exported)
	}
	return out
}

// reconstructRelations rewrites every editable relation attribute from the
// shape's connections: one id for single relations, a list otherwise, and
// nothing when unconnected.
func reconstructRelations(node *domain.ShapeEntity, def *catalog.EntityTypeDefinition, attrs domain.Attributes) {
	for _, rel := range def.InterServiceRelations {
		if rel.Modifier.IsReadOnly() {
			continue
		}
		ids := node.ConnectionIDs(rel.EntityType)
		switch {
		case len(ids) == 0:
			delete(attrs, rel.Name)
		case rel.Rule().IsSingle():
			attrs[rel.Name] = ids[0]
		default:
			attrs[rel.Name] = ids
		}
	}
}

func (p *Projector) reconstructEmbedded(g *canvas.Graph, node *domain.ShapeEntity, def *catalog.EntityTypeDefinition, attrs domain.Attributes, create bool, visiting map[string]bool) {
	for i := range def.EmbeddedEntities {
		embedded := &def.EmbeddedEntities[i]
		if embedded.Modifier.IsReadOnly() {
			continue
		}

		var objects []any
		for _, childID := range node.ConnectionIDs(embedded.TypeKey()) {
			child, ok := g.Node(childID)
			if !ok || visiting[childID] || !canvas.IsStructuralParent(node, child) {
				continue
			}
			if owner, ok := def.EmbeddedFor(child.Definition); !ok || owner.Name != embedded.Name {
				continue
			}
			visiting[childID] = true
			objects = append(objects, p.embeddedPayload(g, child, &embedded.EntityTypeDefinition, create, visiting))
			delete(visiting, childID)
		}

		switch {
		case len(objects) == 0:
			delete(attrs, embedded.Name)
		case embedded.Rule().IsSingle():
			attrs[embedded.Name] = objects[0]
		default:
			attrs[embedded.Name] = objects
		}
	}
}

func (p *Projector) embeddedPayload(g *canvas.Graph, child *domain.ShapeEntity, def *catalog.EntityTypeDefinition, create bool, visiting map[string]bool) map[string]any {
	attrs := child.Attributes.Clone()
	if attrs == nil {
		attrs = make(domain.Attributes)
	}
	reconstructRelations(child, def, attrs)
	p.reconstructEmbedded(g, child, def, attrs, create, visiting)
	attrs = attrs.Only(def.AllowedKeys())
	if create {
		attrs = attrs.Without(def.ReadOnlyKeys())
	}
	return map[string]any(p.sanitizer.Sanitize(def, attrs))
}
