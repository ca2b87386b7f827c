package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"composer/internal/catalog/catalogtest"
	"composer/internal/domain"
	"composer/internal/layout"
)

func newInitializer(t *testing.T, e *Engine) *Initializer {
	t.Helper()
	return NewInitializer(e.Catalog(), NewProjector(nil), layout.DefaultOptions(), nil)
}

func TestInitializeEmbeddedChildren(t *testing.T) {
	e := testEngine(t)
	snap := domain.InstanceSnapshot{
		Instance: domain.Instance{
			ID:            "p1",
			ServiceEntity: catalogtest.ParentService,
			ActiveAttributes: domain.Attributes{
				"name": "edge",
				"interfaces": []any{
					map[string]any{"name": "eth0"},
					map[string]any{"name": "eth1"},
					map[string]any{"name": "eth2"},
				},
			},
		},
	}

	g, tracked, err := newInitializer(t, e).Initialize(snap)
	require.NoError(t, err)

	assert.Equal(t, 4, g.Len())
	assert.Equal(t, []string{"p1"}, shapesOfKind(g, domain.EntityKindCore))
	embedded := g.NodesOfKind(domain.EntityKindEmbedded)
	require.Len(t, embedded, 3)
	for _, node := range embedded {
		assert.Equal(t, []string{"p1"}, g.Neighbors(node.ID))
		assert.False(t, node.IsNew)
	}
	assert.Equal(t, []string{"p1"}, tracked.IDs())
}

func TestInitializeFullSnapshot(t *testing.T) {
	e := testEngine(t)

	g, tracked, err := newInitializer(t, e).Initialize(snapshot())
	require.NoError(t, err)

	// core, relation, three interfaces and one address
	assert.Equal(t, 6, g.Len())
	assert.Equal(t, []string{"c1"}, shapesOfKind(g, domain.EntityKindRelation))
	assert.True(t, g.Connected("p1", "c1"), "relation attribute is wired")
	assert.Equal(t, []string{"p1", "c1"}, tracked.IDs())

	addresses := 0
	for _, node := range g.NodesOfKind(domain.EntityKindEmbedded) {
		if node.TypeKey() == catalogtest.Address {
			addresses++
			parents := g.StructuralParents(node)
			require.Len(t, parents, 1)
			assert.Equal(t, "eth0", parents[0].Attributes.GetString("name"))
		}
	}
	assert.Equal(t, 1, addresses)

	for _, a := range g.Nodes() {
		for _, b := range g.Nodes() {
			if a.ID != b.ID {
				assert.False(t, a.Rect().Overlaps(b.Rect()), "%s overlaps %s", a.ID, b.ID)
			}
		}
	}
}

func TestInitializeDeduplicatesEmbedded(t *testing.T) {
	e := testEngine(t)
	snap := snapshot()
	snap.Instance.ActiveAttributes["interfaces"] = []any{
		map[string]any{"name": "eth0"},
		map[string]any{"name": "eth0", "mtu": 9000},
		map[string]any{"mtu": 1500},
		map[string]any{"mtu": 1500},
	}

	g, _, err := newInitializer(t, e).Initialize(snap)
	require.NoError(t, err)

	assert.Len(t, g.NodesOfKind(domain.EntityKindEmbedded), 3, "same key shares a shape, keyless entries do not")
}

func TestInitializeStableIDs(t *testing.T) {
	e := testEngine(t)

	first, _, err := newInitializer(t, e).Initialize(snapshot())
	require.NoError(t, err)
	second, _, err := newInitializer(t, e).Initialize(snapshot())
	require.NoError(t, err)

	assert.Equal(t, shapesOfKind(first, domain.EntityKindEmbedded), shapesOfKind(second, domain.EntityKindEmbedded))
}

func TestInitializeSkipsUnknownTypes(t *testing.T) {
	e := testEngine(t)
	snap := snapshot()
	snap.RelatedInstances = append(snap.RelatedInstances,
		domain.Instance{ID: "x1", ServiceEntity: "unknown-service"},
		domain.Instance{ID: "c1", ServiceEntity: catalogtest.ChildService},
	)

	g, tracked, err := newInitializer(t, e).Initialize(snap)
	require.NoError(t, err)

	assert.False(t, g.Has("x1"))
	assert.Equal(t, 2, tracked.Len())

	snap.Instance.ServiceEntity = "unknown-service"
	g, tracked, err = newInitializer(t, e).Initialize(snap)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, shapesOfKind(g, domain.EntityKindRelation))
	assert.Equal(t, 1, g.Len())
	assert.Equal(t, []string{"c1"}, tracked.IDs())
}

func TestInitializePrefersCandidateAttributes(t *testing.T) {
	e := testEngine(t)
	snap := snapshot()
	snap.Instance.CandidateAttributes = domain.Attributes{"name": "pending"}

	g, _, err := newInitializer(t, e).Initialize(snap)
	require.NoError(t, err)

	core, _ := g.Node("p1")
	assert.Equal(t, "pending", core.Attributes.GetString("name"))
	assert.Empty(t, g.NodesOfKind(domain.EntityKindEmbedded))
}

func TestInitializeLayoutMetadata(t *testing.T) {
	e := testEngine(t)

	t.Run("persisted coordinates win", func(t *testing.T) {
		snap := snapshot()
		snap.Instance.Metadata = map[string]string{
			domain.MetadataCoordinates: `{"version":1,"coordinates":[{"id":"p1","coordinates":{"x":900,"y":700}}]}`,
		}

		g, _, err := newInitializer(t, e).Initialize(snap)
		require.NoError(t, err)

		core, _ := g.Node("p1")
		assert.Equal(t, domain.Position{X: 900, Y: 700}, core.Position)
	})

	for name, raw := range map[string]string{
		"malformed metadata falls back to auto layout": "{oops",
		"stale version falls back to auto layout":      `{"version":0,"coordinates":[{"id":"p1","coordinates":{"x":900,"y":700}}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			snap := snapshot()
			snap.Instance.Metadata = map[string]string{domain.MetadataCoordinates: raw}

			g, _, err := newInitializer(t, e).Initialize(snap)
			require.NoError(t, err)

			opts := layout.DefaultOptions()
			core, _ := g.Node("p1")
			assert.Equal(t, domain.Position{X: opts.StartX, Y: opts.StartY}, core.Position)
		})
	}
}
