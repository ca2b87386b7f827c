package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"composer/internal/catalog"
	"composer/internal/catalog/catalogtest"
	"composer/internal/domain"
)

func testEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e := NewEngine(catalogtest.Catalog(), opts...)
	require.NotEmpty(t, e.Relations())
	return e
}

func parentDef(t *testing.T, e *Engine) *catalog.EntityTypeDefinition {
	t.Helper()
	def, ok := e.Catalog().Get(catalogtest.ParentService)
	require.True(t, ok)
	return def
}

func childDef(t *testing.T, e *Engine) *catalog.EntityTypeDefinition {
	t.Helper()
	def, ok := e.Catalog().Get(catalogtest.ChildService)
	require.True(t, ok)
	return def
}

func interfaceDef(t *testing.T, e *Engine) *catalog.EntityTypeDefinition {
	t.Helper()
	return &parentDef(t, e).EmbeddedEntities[0].EntityTypeDefinition
}

func addressDef(t *testing.T, e *Engine) *catalog.EntityTypeDefinition {
	t.Helper()
	return &interfaceDef(t, e).EmbeddedEntities[0].EntityTypeDefinition
}

// snapshot returns a parent instance with three interfaces, the first of
// which has an address, related to one child instance.
func snapshot() domain.InstanceSnapshot {
	return domain.InstanceSnapshot{
		Instance: domain.Instance{
			ID:            "p1",
			ServiceEntity: catalogtest.ParentService,
			Version:       3,
			ActiveAttributes: domain.Attributes{
				"name":      "edge",
				"enabled":   true,
				"state":     "up",
				"child_ref": "c1",
				"interfaces": []any{
					map[string]any{"name": "eth0", "mtu": 1500, "address": map[string]any{"ip": "10.0.0.1", "prefix": 24}},
					map[string]any{"name": "eth1"},
					map[string]any{"name": "eth2"},
				},
			},
		},
		RelatedInstances: []domain.Instance{
			{
				ID:               "c1",
				ServiceEntity:    catalogtest.ChildService,
				ActiveAttributes: domain.Attributes{"name": "child", "weight": 2, "status": "ok"},
			},
		},
	}
}

func shapesOfKind(g interface {
	NodesOfKind(domain.EntityKind) []*domain.ShapeEntity
}, kind domain.EntityKind) []string {
	var ids []string
	for _, n := range g.NodesOfKind(kind) {
		ids = append(ids, n.ID)
	}
	return ids
}
