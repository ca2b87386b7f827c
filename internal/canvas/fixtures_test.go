package canvas

import (
	"testing"

	"composer/internal/catalog"
	"composer/internal/catalog/catalogtest"
	"composer/internal/domain"
	"composer/internal/relations"
)

type fixture struct {
	parent  *catalog.EntityTypeDefinition
	child   *catalog.EntityTypeDefinition
	iface   *catalog.EntityTypeDefinition
	address *catalog.EntityTypeDefinition
	rg      relations.Graph
}

func newFixture() fixture {
	parent := catalogtest.Parent()
	iface := &parent.EmbeddedEntities[0].EntityTypeDefinition
	return fixture{
		parent:  parent,
		child:   catalogtest.Child(),
		iface:   iface,
		address: &iface.EmbeddedEntities[0].EntityTypeDefinition,
		rg:      relations.Build([]*catalog.EntityTypeDefinition{parent, catalogtest.Child()}),
	}
}

func (f fixture) shape(t *testing.T, g *Graph, id string, def *catalog.EntityTypeDefinition, isNew bool) *domain.ShapeEntity {
	t.Helper()
	kind := domain.EntityKindCore
	switch def {
	case f.iface, f.address:
		kind = domain.EntityKindEmbedded
	case f.child:
		if !isNew {
			kind = domain.EntityKindRelation
		}
	}
	s := domain.NewShape(id, kind, def, nil, isNew)
	if err := g.AddNode(s); err != nil {
		t.Fatalf("AddNode(%s) failed: %v", id, err)
	}
	return s
}

func mustConnect(t *testing.T, g *Graph, a, b string) {
	t.Helper()
	if err := g.AddConnection(a, b); err != nil {
		t.Fatalf("AddConnection(%s, %s) failed: %v", a, b, err)
	}
}
