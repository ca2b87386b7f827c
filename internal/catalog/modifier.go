package catalog

// Modifier is the mutability tag of an attribute, embedded entity or relation declaration.
type Modifier string

const (
	// ModifierReadOnly values are managed by the server and never edited on the canvas.
	ModifierReadOnly Modifier = "r"
	// ModifierReadWrite values may only be set while the owning instance is being created.
	ModifierReadWrite Modifier = "rw"
	// ModifierReadWriteAlways values may be changed at any time.
	ModifierReadWriteAlways Modifier = "rw+"
)

// ParseModifier maps the textual forms used by catalogs to a Modifier.
// Unknown values map to the empty Modifier.
func ParseModifier(s string) Modifier {
	switch s {
	case "r", "read-only", "readonly":
		return ModifierReadOnly
	case "rw", "read-write":
		return ModifierReadWrite
	case "rw+", "read-write-always-editable":
		return ModifierReadWriteAlways
	}
	return ""
}

// IsReadOnly reports whether the declaration is server-managed.
func (m Modifier) IsReadOnly() bool {
	return m == ModifierReadOnly
}

// IsImmutableAfterCreate reports whether the declaration can only be
// satisfied while the owner is new.
func (m Modifier) IsImmutableAfterCreate() bool {
	return m == ModifierReadWrite
}
