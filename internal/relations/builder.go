package relations

import "composer/internal/catalog"

// Build compiles the catalog's service definitions into a Graph.
// Read-only declarations are server-managed and never appear. Build is
// pure; run it again whenever the catalog changes.
func Build(defs []*catalog.EntityTypeDefinition) Graph {
	g := make(Graph)
	for _, def := range defs {
		if def == nil {
			continue
		}
		key := def.TypeKey()
		g.addRelations(key, def)
		g.addEmbedded(key, def, map[*catalog.EntityTypeDefinition]bool{def: true})
	}
	return g
}

// BuildCatalog is Build over every service of c.
func BuildCatalog(c *catalog.Catalog) Graph {
	return Build(c.Services())
}

func (g Graph) addRelations(ownerKey string, def *catalog.EntityTypeDefinition) {
	for _, rel := range def.InterServiceRelations {
		if rel.Modifier.IsReadOnly() {
			continue
		}
		declared := Edge{
			Rule:      rel.Rule(),
			Modifier:  rel.Modifier,
			Kind:      KindRelation,
			Attribute: rel.Name,
			Declared:  true,
		}
		// The target does not own the relation, so it stays editable on
		// existing targets.
		mirrored := declared
		mirrored.Modifier = catalog.ModifierReadWriteAlways
		mirrored.Attribute = ""
		mirrored.Declared = false
		g.connect(ownerKey, rel.EntityType, declared, mirrored)
	}
}

// addEmbedded walks the embedded declarations of parent. visiting holds the
// definitions on the current descent path only, so a definition reachable
// through two separate branches is still visited twice.
func (g Graph) addEmbedded(parentKey string, parent *catalog.EntityTypeDefinition, visiting map[*catalog.EntityTypeDefinition]bool) {
	for i := range parent.EmbeddedEntities {
		embedded := &parent.EmbeddedEntities[i]
		if embedded.Modifier.IsReadOnly() {
			continue
		}

		childKey := embedded.TypeKey()
		parentRule := embedded.Rule()
		attribute := embedded.Name
		// Several declarations of one type share the entry; their limits add up.
		if prior, ok := g.Edge(parentKey, childKey); ok && prior.Kind == KindEmbedded && prior.Attribute != embedded.Name {
			parentRule = prior.Rule.Combine(parentRule)
			attribute = prior.Attribute
		}
		g.connect(parentKey, childKey,
			Edge{
				Rule:      parentRule,
				Modifier:  embedded.Modifier,
				Kind:      KindEmbedded,
				Attribute: attribute,
				Declared:  true,
			},
			Edge{
				Rule:     parentRule.Mirror(),
				Modifier: embedded.Modifier,
				Kind:     KindParent,
				Declared: true,
			},
		)

		child := &embedded.EntityTypeDefinition
		g.addRelations(childKey, child)

		if visiting[child] {
			continue
		}
		visiting[child] = true
		g.addEmbedded(childKey, child, visiting)
		delete(visiting, child)
	}
}
