package relations

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"composer/internal/catalog"
	"composer/internal/catalog/catalogtest"
)

func TestBuild(t *testing.T) {
	t.Run("sample catalog", func(t *testing.T) {
		got := Build(catalogtest.Definitions())

		want := Graph{
			catalogtest.ParentService: {
				catalogtest.Interface: {
					Rule:      catalog.Unbounded(0),
					Modifier:  catalog.ModifierReadWriteAlways,
					Kind:      KindEmbedded,
					Attribute: "interfaces",
					Declared:  true,
				},
				catalogtest.ChildService: {
					Rule:      catalog.Bounded(1, 1),
					Modifier:  catalog.ModifierReadWrite,
					Kind:      KindRelation,
					Attribute: "child_ref",
					Declared:  true,
				},
			},
			catalogtest.Interface: {
				catalogtest.ParentService: {
					Rule:     catalog.Bounded(0, 1),
					Modifier: catalog.ModifierReadWriteAlways,
					Kind:     KindParent,
					Declared: true,
				},
				catalogtest.Address: {
					Rule:      catalog.Bounded(1, 1),
					Modifier:  catalog.ModifierReadWrite,
					Kind:      KindEmbedded,
					Attribute: "address",
					Declared:  true,
				},
			},
			catalogtest.Address: {
				catalogtest.Interface: {
					Rule:     catalog.Bounded(1, 1),
					Modifier: catalog.ModifierReadWrite,
					Kind:     KindParent,
					Declared: true,
				},
			},
			catalogtest.ChildService: {
				catalogtest.ParentService: {
					Rule:     catalog.Bounded(1, 1),
					Modifier: catalog.ModifierReadWriteAlways,
					Kind:     KindRelation,
				},
			},
		}

		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Build() mismatch (-want +got):\n%s", diff)
		}
		if !got.Symmetric() {
			t.Error("expected graph to be symmetric")
		}
	})

	t.Run("read-only declarations are skipped", func(t *testing.T) {
		def := &catalog.EntityTypeDefinition{
			Name: "svc",
			InterServiceRelations: []catalog.RelationDefinition{
				{Name: "peer", EntityType: "other", Modifier: catalog.ModifierReadOnly},
			},
			EmbeddedEntities: []catalog.EmbeddedDefinition{
				{EntityTypeDefinition: catalog.EntityTypeDefinition{Name: "status"}, Modifier: catalog.ModifierReadOnly},
			},
		}

		g := Build([]*catalog.EntityTypeDefinition{def})
		if len(g) != 0 {
			t.Errorf("expected empty graph, got %v", g.TypeKeys())
		}
	})

	t.Run("declared entry wins over mirror", func(t *testing.T) {
		a := &catalog.EntityTypeDefinition{
			Name: "a",
			InterServiceRelations: []catalog.RelationDefinition{
				{Name: "to_b", EntityType: "b", LowerLimit: 0, Modifier: catalog.ModifierReadWriteAlways},
			},
		}
		b := &catalog.EntityTypeDefinition{
			Name: "b",
			InterServiceRelations: []catalog.RelationDefinition{
				{Name: "to_a", EntityType: "a", LowerLimit: 2, UpperLimit: catalog.Limit(3), Modifier: catalog.ModifierReadWrite},
			},
		}

		for _, defs := range [][]*catalog.EntityTypeDefinition{{a, b}, {b, a}} {
			g := Build(defs)
			ab, _ := g.Edge("a", "b")
			ba, _ := g.Edge("b", "a")
			if !ab.Declared || ab.Attribute != "to_b" || !ab.Rule.Equal(catalog.Unbounded(0)) {
				t.Errorf("unexpected a->b edge %+v", ab)
			}
			if !ba.Declared || ba.Attribute != "to_a" || !ba.Rule.Equal(catalog.Bounded(2, 3)) {
				t.Errorf("unexpected b->a edge %+v", ba)
			}
		}
	})

	t.Run("embedded type reused in two branches", func(t *testing.T) {
		leaf := catalog.EmbeddedDefinition{
			EntityTypeDefinition: catalog.EntityTypeDefinition{Name: "tag"},
			UpperLimit:           catalog.Limit(4),
			Modifier:             catalog.ModifierReadWriteAlways,
		}
		def := &catalog.EntityTypeDefinition{
			Name: "svc",
			EmbeddedEntities: []catalog.EmbeddedDefinition{
				{
					EntityTypeDefinition: catalog.EntityTypeDefinition{
						Name:             "left",
						EmbeddedEntities: []catalog.EmbeddedDefinition{leaf},
					},
					Modifier: catalog.ModifierReadWriteAlways,
				},
				{
					EntityTypeDefinition: catalog.EntityTypeDefinition{
						Name:             "right",
						EmbeddedEntities: []catalog.EmbeddedDefinition{leaf},
					},
					Modifier: catalog.ModifierReadWriteAlways,
				},
			},
		}

		g := Build([]*catalog.EntityTypeDefinition{def})
		if got := g.Neighbors("tag"); !cmp.Equal(got, []string{"left", "right"}) {
			t.Errorf("expected tag to neighbor both branches, got %v", got)
		}
		if !g.Symmetric() {
			t.Error("expected graph to be symmetric")
		}
	})

	t.Run("embedded declarations sharing a type", func(t *testing.T) {
		address := catalog.EntityTypeDefinition{Type: "address"}
		primary, secondary := address, address
		primary.Name, secondary.Name = "primary", "secondary"
		def := &catalog.EntityTypeDefinition{
			Name: "router",
			EmbeddedEntities: []catalog.EmbeddedDefinition{
				{EntityTypeDefinition: primary, LowerLimit: 1, UpperLimit: catalog.Limit(1), Modifier: catalog.ModifierReadWriteAlways},
				{EntityTypeDefinition: secondary, UpperLimit: catalog.Limit(1), Modifier: catalog.ModifierReadWriteAlways},
			},
		}

		g := Build([]*catalog.EntityTypeDefinition{def})
		down, _ := g.Edge("router", "address")
		if !down.Rule.Equal(catalog.Bounded(1, 2)) || down.Attribute != "primary" {
			t.Errorf("unexpected router->address edge %+v", down)
		}
		up, _ := g.Edge("address", "router")
		if !up.Rule.Equal(catalog.Bounded(1, 1)) || up.Kind != KindParent {
			t.Errorf("unexpected address->router edge %+v", up)
		}
	})

	t.Run("mirrored relation stays editable", func(t *testing.T) {
		g := Build(catalogtest.Definitions())
		e, _ := g.Edge(catalogtest.ChildService, catalogtest.ParentService)
		if e.Declared || e.Modifier != catalog.ModifierReadWriteAlways {
			t.Errorf("unexpected mirrored edge %+v", e)
		}
		if !e.Rule.Equal(catalog.Bounded(1, 1)) {
			t.Errorf("expected mirrored rule {1,1}, got %s", e.Rule)
		}
	})

	t.Run("nil definitions are ignored", func(t *testing.T) {
		g := Build([]*catalog.EntityTypeDefinition{nil})
		if len(g) != 0 {
			t.Errorf("expected empty graph, got %d entries", len(g))
		}
	})
}

func TestBuildCatalog(t *testing.T) {
	g := BuildCatalog(catalogtest.Catalog())
	want := []string{catalogtest.Address, catalogtest.ChildService, catalogtest.Interface, catalogtest.ParentService}
	if diff := cmp.Diff(want, g.TypeKeys()); diff != "" {
		t.Errorf("TypeKeys() mismatch (-want +got):\n%s", diff)
	}

	rule, ok := g.Rule(catalogtest.ParentService, catalogtest.ChildService)
	if !ok || !rule.IsSingle() {
		t.Errorf("expected single relation rule, got %s (found=%v)", rule, ok)
	}
	if _, ok := g.Edge("unknown", catalogtest.ParentService); ok {
		t.Error("expected no edge for unknown type")
	}
}
