// Package relations compiles a schema catalog into the symmetric graph of
// connections operators are allowed to draw.
package relations

import (
	"sort"

	"composer/internal/catalog"
)

// Kind tells how a graph entry was declared.
type Kind string

const (
	// KindRelation is an inter-service relation.
	KindRelation Kind = "relation"
	// KindEmbedded is held by a parent towards one of its embedded entity types.
	KindEmbedded Kind = "embedded"
	// KindParent is held by an embedded entity type towards its parent.
	KindParent Kind = "parent"
)

// Edge is the entry G[a][b]: the rule a must satisfy towards b.
type Edge struct {
	Rule     catalog.RelationRule
	Modifier catalog.Modifier
	Kind     Kind
	// Attribute is the attribute on a that stores the connection; empty
	// for mirrored entries. When a declares several embedded attributes of
	// the same type, it is the first of them.
	Attribute string
	// Declared is false when the entry only mirrors the other side.
	Declared bool
}

// Graph maps a type key to its neighbor type keys. An entry G[a][b] exists
// iff G[b][a] exists; the two edges may carry different rules.
type Graph map[string]map[string]Edge

// Edge returns the entry for a towards b.
func (g Graph) Edge(a, b string) (Edge, bool) {
	neighbors, ok := g[a]
	if !ok {
		return Edge{}, false
	}
	e, ok := neighbors[b]
	return e, ok
}

// Rule returns the rule a must satisfy towards b.
func (g Graph) Rule(a, b string) (catalog.RelationRule, bool) {
	e, ok := g.Edge(a, b)
	return e.Rule, ok
}

// Has reports whether typeKey takes part in any allowed connection.
func (g Graph) Has(typeKey string) bool {
	_, ok := g[typeKey]
	return ok
}

// Neighbors returns the sorted type keys typeKey may connect to.
func (g Graph) Neighbors(typeKey string) []string {
	neighbors := make([]string, 0, len(g[typeKey]))
	for k := range g[typeKey] {
		neighbors = append(neighbors, k)
	}
	sort.Strings(neighbors)
	return neighbors
}

// TypeKeys returns every type key with an entry, sorted.
func (g Graph) TypeKeys() []string {
	keys := make([]string, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Symmetric reports whether every entry has its reverse.
func (g Graph) Symmetric() bool {
	for a, neighbors := range g {
		for b := range neighbors {
			if _, ok := g.Edge(b, a); !ok {
				return false
			}
		}
	}
	return true
}

// connect records a->b and b->a. A declared entry is never replaced by a
// mirrored one.
func (g Graph) connect(a, b string, ab, ba Edge) {
	g.set(a, b, ab)
	g.set(b, a, ba)
}

func (g Graph) set(a, b string, e Edge) {
	neighbors, ok := g[a]
	if !ok {
		neighbors = make(map[string]Edge)
		g[a] = neighbors
	}
	if existing, ok := neighbors[b]; ok && existing.Declared && !e.Declared {
		return
	}
	neighbors[b] = e
}
