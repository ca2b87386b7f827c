// Package catalogtest provides small catalogs for tests.
package catalogtest

import "composer/internal/catalog"

// Type keys of the sample catalog.
const (
	ParentService = "parent-service"
	ChildService  = "child-service"
	Interface     = "interface"
	Address       = "address"
)

// Child returns a service with plain attributes only.
func Child() *catalog.EntityTypeDefinition {
	return &catalog.EntityTypeDefinition{
		Name: ChildService,
		Attributes: []catalog.AttributeDefinition{
			{Name: "name", Type: "string", Modifier: catalog.ModifierReadWrite},
			{Name: "weight", Type: "int?", Modifier: catalog.ModifierReadWriteAlways},
			{Name: "status", Type: "string?", Modifier: catalog.ModifierReadOnly},
		},
	}
}

// Parent returns a service embedding interfaces, each embedding exactly
// one address, and holding a mandatory create-only relation to a child
// service.
func Parent() *catalog.EntityTypeDefinition {
	address := catalog.EmbeddedDefinition{
		EntityTypeDefinition: catalog.EntityTypeDefinition{
			Name: "address",
			Type: Address,
			Attributes: []catalog.AttributeDefinition{
				{Name: "ip", Type: "string", Modifier: catalog.ModifierReadWriteAlways},
				{Name: "prefix", Type: "int", Modifier: catalog.ModifierReadWriteAlways},
			},
		},
		LowerLimit: 1,
		UpperLimit: catalog.Limit(1),
		Modifier:   catalog.ModifierReadWrite,
	}
	iface := catalog.EmbeddedDefinition{
		EntityTypeDefinition: catalog.EntityTypeDefinition{
			Name: "interfaces",
			Type: Interface,
			Attributes: []catalog.AttributeDefinition{
				{Name: "name", Type: "string", Modifier: catalog.ModifierReadWriteAlways},
				{Name: "mtu", Type: "int?", Modifier: catalog.ModifierReadWriteAlways},
			},
			EmbeddedEntities: []catalog.EmbeddedDefinition{address},
			KeyAttributes:    []string{"name"},
		},
		LowerLimit: 0,
		Modifier:   catalog.ModifierReadWriteAlways,
	}
	return &catalog.EntityTypeDefinition{
		Name: ParentService,
		Attributes: []catalog.AttributeDefinition{
			{Name: "name", Type: "string", Modifier: catalog.ModifierReadWrite},
			{Name: "enabled", Type: "bool", Modifier: catalog.ModifierReadWriteAlways},
			{Name: "ratio", Type: "float?", Modifier: catalog.ModifierReadWriteAlways},
			{Name: "labels", Type: "dict?", Modifier: catalog.ModifierReadWriteAlways},
			{Name: "state", Type: "string?", Modifier: catalog.ModifierReadOnly},
		},
		EmbeddedEntities: []catalog.EmbeddedDefinition{iface},
		InterServiceRelations: []catalog.RelationDefinition{
			{
				Name:       "child_ref",
				EntityType: ChildService,
				LowerLimit: 1,
				UpperLimit: catalog.Limit(1),
				Modifier:   catalog.ModifierReadWrite,
			},
		},
	}
}

// Definitions returns the sample service definitions, parent first.
func Definitions() []*catalog.EntityTypeDefinition {
	return []*catalog.EntityTypeDefinition{Parent(), Child()}
}

// Catalog returns the sample catalog.
func Catalog() *catalog.Catalog {
	return catalog.New(Definitions())
}
