// Package canvas holds the mutable composition graph and the connection
// validator that gates every edit made to it.
//
// The Graph owns its shapes, keyed by stable id. Links are never stored:
// they are recomputed from the shapes' connection maps, so removing a
// shape cannot leave a dangling edge behind.
//
// Validator answers whether a connection may be drawn or removed and
// whether a shape may be deleted. Its predicates are pure; callers check
// them before mutating the Graph.
package canvas
