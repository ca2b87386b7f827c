package catalog

import "fmt"

// RelationRule is a cardinality constraint attached to a declared connection.
// A nil UpperLimit means unbounded.
type RelationRule struct {
	LowerLimit int  `json:"lower_limit" yaml:"lower_limit"`
	UpperLimit *int `json:"upper_limit" yaml:"upper_limit"`
}

// Limit returns a pointer to n, for building bounded rules.
func Limit(n int) *int {
	return &n
}

// Bounded builds a rule with a finite upper limit.
func Bounded(lower, upper int) RelationRule {
	return RelationRule{LowerLimit: lower, UpperLimit: Limit(upper)}
}

// Unbounded builds a rule without an upper limit.
func Unbounded(lower int) RelationRule {
	return RelationRule{LowerLimit: lower}
}

// IsBounded reports whether the rule has a finite upper limit.
func (r RelationRule) IsBounded() bool {
	return r.UpperLimit != nil
}

// IsSingle reports whether at most one connection is allowed.
func (r RelationRule) IsSingle() bool {
	return r.UpperLimit != nil && *r.UpperLimit == 1
}

// Accepts reports whether one more connection may be added when count
// connections already exist.
func (r RelationRule) Accepts(count int) bool {
	return r.UpperLimit == nil || count < *r.UpperLimit
}

// Satisfied reports whether count meets the lower limit.
func (r RelationRule) Satisfied(count int) bool {
	return count >= r.LowerLimit
}

// Equal compares two rules by value.
func (r RelationRule) Equal(o RelationRule) bool {
	if r.LowerLimit != o.LowerLimit {
		return false
	}
	if r.UpperLimit == nil || o.UpperLimit == nil {
		return r.UpperLimit == nil && o.UpperLimit == nil
	}
	return *r.UpperLimit == *o.UpperLimit
}

// Mirror derives the rule an embedded child holds towards its parent:
// the child belongs to at most one parent instance, and must belong to
// one when the parent declares it mandatory.
func (r RelationRule) Mirror() RelationRule {
	mirrored := RelationRule{UpperLimit: Limit(1)}
	if r.LowerLimit > 0 {
		mirrored.LowerLimit = 1
	}
	return mirrored
}

// Combine adds the limits of two declarations sharing one graph entry.
func (r RelationRule) Combine(o RelationRule) RelationRule {
	combined := RelationRule{LowerLimit: r.LowerLimit + o.LowerLimit}
	if r.UpperLimit != nil && o.UpperLimit != nil {
		combined.UpperLimit = Limit(*r.UpperLimit + *o.UpperLimit)
	}
	return combined
}

func (r RelationRule) String() string {
	if r.UpperLimit == nil {
		return fmt.Sprintf("{%d,*}", r.LowerLimit)
	}
	return fmt.Sprintf("{%d,%d}", r.LowerLimit, *r.UpperLimit)
}
