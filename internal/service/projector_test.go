package service

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"composer/internal/canvas"
	"composer/internal/catalog"
	"composer/internal/catalog/catalogtest"
	"composer/internal/domain"
)

func openSnapshot(t *testing.T, e *Engine) (*canvas.Graph, *Tracked) {
	t.Helper()
	g, tracked, err := newInitializer(t, e).Initialize(snapshot())
	require.NoError(t, err)
	return g, tracked
}

func TestProjectNewService(t *testing.T) {
	e := testEngine(t)
	g := canvas.NewGraph()
	add := func(s *domain.ShapeEntity) *domain.ShapeEntity {
		require.NoError(t, g.AddNode(s))
		return s
	}

	p := add(domain.NewShape("p", domain.EntityKindCore, parentDef(t, e), domain.Attributes{
		"name":      "edge",
		"enabled":   "true",
		"ratio":     "0.25",
		"state":     "up",
		"child_ref": "stale",
		"extra":     "dropped",
	}, true))
	add(domain.NewShape("c", domain.EntityKindRelation, childDef(t, e), nil, false))
	add(domain.NewShape("i1", domain.EntityKindEmbedded, interfaceDef(t, e), domain.Attributes{"name": "eth0", "mtu": "1500", "junk": 1}, true))
	add(domain.NewShape("i2", domain.EntityKindEmbedded, interfaceDef(t, e), domain.Attributes{"name": "eth1", "mtu": ""}, true))
	add(domain.NewShape("a1", domain.EntityKindEmbedded, addressDef(t, e), domain.Attributes{"ip": "10.0.0.1", "prefix": 24.0}, true))
	require.NoError(t, g.AddConnection("p", "c"))
	require.NoError(t, g.AddConnection("p", "i1"))
	require.NoError(t, g.AddConnection("p", "i2"))
	require.NoError(t, g.AddConnection("i1", "a1"))

	item := NewProjector(nil).Project(g, p)

	want := domain.Attributes{
		"name":      "edge",
		"enabled":   true,
		"ratio":     0.25,
		"child_ref": "c",
		"interfaces": []any{
			map[string]any{
				"name":    "eth0",
				"mtu":     int64(1500),
				"address": map[string]any{"ip": "10.0.0.1", "prefix": int64(24)},
			},
			map[string]any{"name": "eth1", "mtu": nil},
		},
	}
	if diff := cmp.Diff(want, item.Attributes); diff != "" {
		t.Errorf("projection mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, item.Is(domain.ActionCreate))
	assert.Equal(t, catalogtest.ParentService, item.ServiceEntity)
}

func TestProjectCaching(t *testing.T) {
	e := testEngine(t)
	g, _ := openSnapshot(t, e)
	p := NewProjector(nil)
	core, _ := g.Node("p1")

	first := p.Project(g, core)
	assert.Same(t, first, p.Project(g, core))

	var eth1 string
	for _, n := range g.NodesOfKind(domain.EntityKindEmbedded) {
		if n.Attributes.GetString("name") == "eth1" {
			eth1 = n.ID
		}
	}
	require.NotEmpty(t, eth1)
	require.NoError(t, g.SetAttributes(eth1, domain.Attributes{"name": "eth1", "mtu": 9000}))

	second := p.Project(g, core)
	assert.NotSame(t, first, second)
	interfaces := second.Attributes["interfaces"].([]any)
	assert.Equal(t, int64(9000), interfaces[1].(map[string]any)["mtu"])
}

func TestProjectRelationClearedWhenUnconnected(t *testing.T) {
	e := testEngine(t)
	g, _ := openSnapshot(t, e)
	core, _ := g.Node("p1")
	require.NoError(t, g.RemoveConnection("p1", "c1"))

	item := NewProjector(nil).Project(g, core)

	assert.NotContains(t, item.Attributes, "child_ref")
	assert.Equal(t, "up", item.Attributes["state"], "existing shapes keep read-only values")
}

func TestProjectEmbeddedSharingAType(t *testing.T) {
	address := catalog.EntityTypeDefinition{
		Type: "address",
		Attributes: []catalog.AttributeDefinition{
			{Name: "ip", Type: "string", Modifier: catalog.ModifierReadWriteAlways},
		},
	}
	primary, secondary := address, address
	primary.Name, secondary.Name = "primary", "secondary"
	router := &catalog.EntityTypeDefinition{
		Name: "router",
		EmbeddedEntities: []catalog.EmbeddedDefinition{
			{EntityTypeDefinition: primary, LowerLimit: 1, UpperLimit: catalog.Limit(1), Modifier: catalog.ModifierReadWriteAlways},
			{EntityTypeDefinition: secondary, UpperLimit: catalog.Limit(1), Modifier: catalog.ModifierReadWriteAlways},
		},
	}
	e := NewEngine(catalog.New([]*catalog.EntityTypeDefinition{router}))

	g, _, err := newInitializer(t, e).Initialize(domain.InstanceSnapshot{
		Instance: domain.Instance{
			ID:            "r1",
			ServiceEntity: "router",
			ActiveAttributes: domain.Attributes{
				"primary":   map[string]any{"ip": "10.0.0.1"},
				"secondary": map[string]any{"ip": "10.0.0.2"},
			},
		},
	})
	require.NoError(t, err)

	core, ok := g.Node("r1")
	require.True(t, ok)
	item := NewProjector(nil).Project(g, core)

	assert.Equal(t, map[string]any{"ip": "10.0.0.1"}, item.Attributes["primary"])
	assert.Equal(t, map[string]any{"ip": "10.0.0.2"}, item.Attributes["secondary"])
}

func TestOrderItems(t *testing.T) {
	e := testEngine(t)

	t.Run("unchanged relation has no action", func(t *testing.T) {
		g, tracked := openSnapshot(t, e)

		items := NewProjector(nil).OrderItems(g, tracked)

		require.Len(t, items, 2)
		assert.Equal(t, "p1", items[0].InstanceID)
		assert.True(t, items[0].Is(domain.ActionUpdate))
		assert.Equal(t, "c1", items[1].InstanceID)
		assert.Nil(t, items[1].Action)
	})

	t.Run("changed relation is updated", func(t *testing.T) {
		g, tracked := openSnapshot(t, e)
		require.NoError(t, g.SetAttributes("c1", domain.Attributes{"name": "renamed"}))

		items := NewProjector(nil).OrderItems(g, tracked)

		assert.True(t, items[1].Is(domain.ActionUpdate))
	})

	t.Run("delete detection", func(t *testing.T) {
		g, tracked := openSnapshot(t, e)
		_, err := g.RemoveNode("c1")
		require.NoError(t, err)

		items := NewProjector(nil).OrderItems(g, tracked)

		last := items[len(items)-1]
		assert.Equal(t, "c1", last.InstanceID)
		assert.True(t, last.Is(domain.ActionDelete))
		assert.Nil(t, last.Attributes)
		assert.Equal(t, catalogtest.ChildService, last.ServiceEntity)
	})

	t.Run("excluded shapes are not deleted", func(t *testing.T) {
		g, tracked := openSnapshot(t, e)
		_, err := g.RemoveNode("c1")
		require.NoError(t, err)
		tracked.Exclude("c1")

		for _, item := range NewProjector(nil).OrderItems(g, tracked) {
			assert.False(t, item.Is(domain.ActionDelete))
		}
	})

	t.Run("embedded shapes never appear", func(t *testing.T) {
		g, tracked := openSnapshot(t, e)
		embedded := make(map[string]bool)
		for _, n := range g.NodesOfKind(domain.EntityKindEmbedded) {
			embedded[n.ID] = true
		}

		for _, item := range NewProjector(nil).OrderItems(g, tracked) {
			assert.False(t, embedded[item.InstanceID])
			if item.Is(domain.ActionDelete) {
				_, wasTracked := tracked.Get(item.InstanceID)
				assert.True(t, wasTracked)
				assert.False(t, g.Has(item.InstanceID))
			}
		}
	})
}

func TestExport(t *testing.T) {
	attrs := domain.Attributes{"name": "x"}
	items := []*domain.OrderItem{
		{InstanceID: "new", ServiceEntity: "svc", Action: domain.ActionPtr(domain.ActionCreate), Attributes: attrs},
		{InstanceID: "noop", ServiceEntity: "svc", Attributes: attrs},
		{InstanceID: "upd", ServiceEntity: "svc", Action: domain.ActionPtr(domain.ActionUpdate), Attributes: attrs},
		{InstanceID: "edited", ServiceEntity: "svc", Action: domain.ActionPtr(domain.ActionUpdate), Edits: []domain.Edit{{EditID: "mine"}}},
		{InstanceID: "gone", ServiceEntity: "svc", Action: domain.ActionPtr(domain.ActionDelete)},
	}

	out := Export(items)

	require.Len(t, out, 4)
	assert.Equal(t, attrs, out[0].Attributes)

	upd := out[1]
	assert.Equal(t, "upd", upd.InstanceID)
	assert.Nil(t, upd.Attributes)
	require.Len(t, upd.Edits, 1)
	assert.True(t, strings.HasPrefix(upd.Edits[0].EditID, "upd_order_update-"))
	assert.Equal(t, domain.EditOperationReplace, upd.Edits[0].Operation)
	assert.Equal(t, domain.EditTargetRoot, upd.Edits[0].Target)
	assert.Equal(t, attrs, upd.Edits[0].Value)
	assert.Equal(t, attrs, items[2].Attributes, "input items are not modified")

	assert.Equal(t, "mine", out[2].Edits[0].EditID)
	assert.True(t, out[3].Is(domain.ActionDelete))
}
