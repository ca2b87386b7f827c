// Package domain defines the value types of a topology composition.
//
// # Core Types
//
// ShapeEntity is a placed instance on the composition canvas. Its Kind is
// core (the entity being composed), embedded (a nested sub-entity of a core
// or embedded shape) or relation (an independently managed entity the core
// relates to). Each shape records its neighbors per type key in an ordered
// connection map.
//
// Link is the edge derived from a pair of reciprocal connections.
//
// OrderItem is the create/update/delete instruction projected from a shape
// for the deployment backend.
//
// Instance and InstanceSnapshot describe the persisted instances a
// composition starts from.
//
// # Design Principles
//
// - No database or external dependencies
// - Links are views over connection maps, never stored separately
// - Cached projections are invalidated on every attribute or connection write
package domain
