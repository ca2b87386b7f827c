package catalog

// AttributeDefinition describes one attribute of an entity type.
type AttributeDefinition struct {
	Name         string   `json:"name" yaml:"name"`
	Type         string   `json:"type" yaml:"type"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	Modifier     Modifier `json:"modifier" yaml:"modifier"`
	DefaultValue any      `json:"default_value,omitempty" yaml:"default_value,omitempty"`

	// Validation is an optional expression evaluated by the field validator.
	Validation string `json:"validation,omitempty" yaml:"validation,omitempty"`
}

// IsOptional reports whether the attribute type admits null ("string?").
func (a AttributeDefinition) IsOptional() bool {
	return len(a.Type) > 0 && a.Type[len(a.Type)-1] == '?'
}

// BaseType returns the type without the optional marker or list suffix.
func (a AttributeDefinition) BaseType() string {
	t := a.Type
	if a.IsOptional() {
		t = t[:len(t)-1]
	}
	if len(t) > 2 && t[len(t)-2:] == "[]" {
		return "list"
	}
	return t
}

// RelationDefinition declares an inter-service relation stored in the
// attribute Name and pointing at instances of EntityType.
type RelationDefinition struct {
	Name        string   `json:"name" yaml:"name"`
	EntityType  string   `json:"entity_type" yaml:"entity_type"`
	LowerLimit  int      `json:"lower_limit" yaml:"lower_limit"`
	UpperLimit  *int     `json:"upper_limit" yaml:"upper_limit"`
	Modifier    Modifier `json:"modifier" yaml:"modifier"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// Rule returns the cardinality of the declaration.
func (r RelationDefinition) Rule() RelationRule {
	return RelationRule{LowerLimit: r.LowerLimit, UpperLimit: r.UpperLimit}
}

// EntityTypeDefinition describes a composable entity: a top-level service
// or an embedded entity.
type EntityTypeDefinition struct {
	Name                  string                `json:"name" yaml:"name"`
	Type                  string                `json:"type,omitempty" yaml:"type,omitempty"`
	Description           string                `json:"description,omitempty" yaml:"description,omitempty"`
	Attributes            []AttributeDefinition `json:"attributes" yaml:"attributes"`
	EmbeddedEntities      []EmbeddedDefinition  `json:"embedded_entities" yaml:"embedded_entities"`
	InterServiceRelations []RelationDefinition  `json:"inter_service_relations" yaml:"inter_service_relations"`
	KeyAttributes         []string              `json:"key_attributes,omitempty" yaml:"key_attributes,omitempty"`
	Config                map[string]any        `json:"config,omitempty" yaml:"config,omitempty"`
}

// TypeKey identifies the entity type in the relations graph and in
// connection maps: the explicit Type when present, else Name.
func (d *EntityTypeDefinition) TypeKey() string {
	if d.Type != "" {
		return d.Type
	}
	return d.Name
}

// Attribute returns the attribute definition by name
func (d *EntityTypeDefinition) Attribute(name string) (AttributeDefinition, bool) {
	for _, a := range d.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return AttributeDefinition{}, false
}

// Embedded returns the embedded declaration stored under attribute name
func (d *EntityTypeDefinition) Embedded(name string) (*EmbeddedDefinition, bool) {
	for i := range d.EmbeddedEntities {
		if d.EmbeddedEntities[i].Name == name {
			return &d.EmbeddedEntities[i], true
		}
	}
	return nil, false
}

// EmbeddedByType returns the first embedded declaration whose type key matches.
func (d *EntityTypeDefinition) EmbeddedByType(typeKey string) (*EmbeddedDefinition, bool) {
	for i := range d.EmbeddedEntities {
		if d.EmbeddedEntities[i].TypeKey() == typeKey {
			return &d.EmbeddedEntities[i], true
		}
	}
	return nil, false
}

// EmbeddedFor returns the declaration an embedded entity of definition
// child belongs to: the one it was declared as, else the first of its type.
func (d *EntityTypeDefinition) EmbeddedFor(child *EntityTypeDefinition) (*EmbeddedDefinition, bool) {
	if child == nil {
		return nil, false
	}
	if e, ok := d.Embedded(child.Name); ok && e.TypeKey() == child.TypeKey() {
		return e, true
	}
	return d.EmbeddedByType(child.TypeKey())
}

// Relation returns the relation declaration stored under attribute name
func (d *EntityTypeDefinition) Relation(name string) (RelationDefinition, bool) {
	for _, r := range d.InterServiceRelations {
		if r.Name == name {
			return r, true
		}
	}
	return RelationDefinition{}, false
}

// DeclaresEmbedded reports whether typeKey is one of the embedded entity types.
func (d *EntityTypeDefinition) DeclaresEmbedded(typeKey string) bool {
	_, ok := d.EmbeddedByType(typeKey)
	return ok
}

// DeclaresRelationTo reports whether the definition holds a relation to typeKey.
func (d *EntityTypeDefinition) DeclaresRelationTo(typeKey string) bool {
	for _, r := range d.InterServiceRelations {
		if r.EntityType == typeKey {
			return true
		}
	}
	return false
}

// AllowedKeys returns every attribute key the definition declares:
// plain attributes, embedded entity attributes and relation attributes.
func (d *EntityTypeDefinition) AllowedKeys() map[string]struct{} {
	keys := make(map[string]struct{}, len(d.Attributes)+len(d.EmbeddedEntities)+len(d.InterServiceRelations))
	for _, a := range d.Attributes {
		keys[a.Name] = struct{}{}
	}
	for _, e := range d.EmbeddedEntities {
		keys[e.Name] = struct{}{}
	}
	for _, r := range d.InterServiceRelations {
		keys[r.Name] = struct{}{}
	}
	return keys
}

// ReadOnlyKeys returns the keys of read-only attributes, embedded entities
// and relations.
func (d *EntityTypeDefinition) ReadOnlyKeys() map[string]struct{} {
	keys := make(map[string]struct{})
	for _, a := range d.Attributes {
		if a.Modifier.IsReadOnly() {
			keys[a.Name] = struct{}{}
		}
	}
	for _, e := range d.EmbeddedEntities {
		if e.Modifier.IsReadOnly() {
			keys[e.Name] = struct{}{}
		}
	}
	for _, r := range d.InterServiceRelations {
		if r.Modifier.IsReadOnly() {
			keys[r.Name] = struct{}{}
		}
	}
	return keys
}

// EmbeddedDefinition is an embedded entity declared on a parent entity,
// stored in the parent's attribute Name.
type EmbeddedDefinition struct {
	EntityTypeDefinition `yaml:",inline"`
	LowerLimit           int      `json:"lower_limit" yaml:"lower_limit"`
	UpperLimit           *int     `json:"upper_limit" yaml:"upper_limit"`
	Modifier             Modifier `json:"modifier" yaml:"modifier"`
}

// Rule returns the parent-to-child cardinality of the declaration.
func (e *EmbeddedDefinition) Rule() RelationRule {
	return RelationRule{LowerLimit: e.LowerLimit, UpperLimit: e.UpperLimit}
}
