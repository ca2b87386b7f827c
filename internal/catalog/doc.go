// Package catalog defines the schema catalog consumed by the composer.
//
// A catalog is a list of top-level service definitions. Each definition
// carries its attributes, its embedded entities (recursive, unbounded depth)
// and its inter-service relations. Every embedded entity and relation
// declaration carries a cardinality (RelationRule) and a Modifier that
// decides whether operators may change it.
//
// Definitions are immutable once loaded; the composer only reads them.
package catalog
