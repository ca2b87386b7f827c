package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"composer/internal/catalog"
)

// CatalogYAML represents the catalog file structure
type CatalogYAML struct {
	Version  string        `yaml:"version" json:"version"`
	Services []ServiceYAML `yaml:"services" json:"services"`
}

// ServiceYAML represents one entity type definition
type ServiceYAML struct {
	Name                  string          `yaml:"name" json:"name"`
	Type                  string          `yaml:"type,omitempty" json:"type,omitempty"`
	Description           string          `yaml:"description,omitempty" json:"description,omitempty"`
	Attributes            []AttributeYAML `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	EmbeddedEntities      []EmbeddedYAML  `yaml:"embedded_entities,omitempty" json:"embedded_entities,omitempty"`
	InterServiceRelations []RelationYAML  `yaml:"inter_service_relations,omitempty" json:"inter_service_relations,omitempty"`
	KeyAttributes         []string        `yaml:"key_attributes,omitempty" json:"key_attributes,omitempty"`
	Config                map[string]any  `yaml:"config,omitempty" json:"config,omitempty"`
}

// AttributeYAML represents an attribute definition
type AttributeYAML struct {
	Name         string `yaml:"name" json:"name"`
	Type         string `yaml:"type" json:"type"`
	Description  string `yaml:"description,omitempty" json:"description,omitempty"`
	Modifier     string `yaml:"modifier,omitempty" json:"modifier,omitempty"`
	DefaultValue any    `yaml:"default_value,omitempty" json:"default_value,omitempty"`
	Validation   string `yaml:"validation,omitempty" json:"validation,omitempty"`
}

// EmbeddedYAML represents an embedded entity declaration
type EmbeddedYAML struct {
	ServiceYAML `yaml:",inline"`
	LowerLimit  int    `yaml:"lower_limit" json:"lower_limit"`
	UpperLimit  *int   `yaml:"upper_limit" json:"upper_limit"`
	Modifier    string `yaml:"modifier,omitempty" json:"modifier,omitempty"`
}

// RelationYAML represents an inter-service relation declaration
type RelationYAML struct {
	Name        string `yaml:"name" json:"name"`
	EntityType  string `yaml:"entity_type" json:"entity_type"`
	LowerLimit  int    `yaml:"lower_limit" json:"lower_limit"`
	UpperLimit  *int   `yaml:"upper_limit" json:"upper_limit"`
	Modifier    string `yaml:"modifier,omitempty" json:"modifier,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// LoadFile loads a catalog from a YAML or JSON file, chosen by extension
func LoadFile(path string) (*catalog.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseJSON(data)
	}
	return ParseYAML(data)
}

// ParseYAML parses a catalog from YAML bytes
func ParseYAML(data []byte) (*catalog.Catalog, error) {
	var doc CatalogYAML
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return convertCatalog(&doc)
}

// ParseJSON parses a catalog from JSON bytes
func ParseJSON(data []byte) (*catalog.Catalog, error) {
	var doc CatalogYAML
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return convertCatalog(&doc)
}

func convertCatalog(doc *CatalogYAML) (*catalog.Catalog, error) {
	defs := make([]*catalog.EntityTypeDefinition, 0, len(doc.Services))
	for i := range doc.Services {
		def, err := convertService(&doc.Services[i], doc.Services[i].Name)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return catalog.New(defs), nil
}

func convertService(s *ServiceYAML, path string) (*catalog.EntityTypeDefinition, error) {
	if s.Name == "" {
		return nil, fmt.Errorf("entity at %q has no name", path)
	}

	def := &catalog.EntityTypeDefinition{
		Name:          s.Name,
		Type:          s.Type,
		Description:   s.Description,
		KeyAttributes: s.KeyAttributes,
		Config:        s.Config,
	}

	for _, a := range s.Attributes {
		if a.Name == "" {
			return nil, fmt.Errorf("%s: attribute without name", path)
		}
		def.Attributes = append(def.Attributes, catalog.AttributeDefinition{
			Name:         a.Name,
			Type:         a.Type,
			Description:  a.Description,
			Modifier:     parseModifier(a.Modifier, catalog.ModifierReadWriteAlways),
			DefaultValue: a.DefaultValue,
			Validation:   a.Validation,
		})
	}

	for _, r := range s.InterServiceRelations {
		if r.Name == "" || r.EntityType == "" {
			return nil, fmt.Errorf("%s: relation needs a name and an entity_type", path)
		}
		if err := checkLimits(r.LowerLimit, r.UpperLimit); err != nil {
			return nil, fmt.Errorf("%s.%s: %w", path, r.Name, err)
		}
		def.InterServiceRelations = append(def.InterServiceRelations, catalog.RelationDefinition{
			Name:        r.Name,
			EntityType:  r.EntityType,
			LowerLimit:  r.LowerLimit,
			UpperLimit:  normalizeUpper(r.UpperLimit),
			Modifier:    parseModifier(r.Modifier, catalog.ModifierReadWrite),
			Description: r.Description,
		})
	}

	for i := range s.EmbeddedEntities {
		e := &s.EmbeddedEntities[i]
		childPath := path + "." + e.Name
		child, err := convertService(&e.ServiceYAML, childPath)
		if err != nil {
			return nil, err
		}
		if err := checkLimits(e.LowerLimit, e.UpperLimit); err != nil {
			return nil, fmt.Errorf("%s: %w", childPath, err)
		}
		def.EmbeddedEntities = append(def.EmbeddedEntities, catalog.EmbeddedDefinition{
			EntityTypeDefinition: *child,
			LowerLimit:           e.LowerLimit,
			UpperLimit:           normalizeUpper(e.UpperLimit),
			Modifier:             parseModifier(e.Modifier, catalog.ModifierReadWrite),
		})
	}

	return def, nil
}

func parseModifier(s string, fallback catalog.Modifier) catalog.Modifier {
	if m := catalog.ParseModifier(strings.TrimSpace(s)); m != "" {
		return m
	}
	return fallback
}

// normalizeUpper maps negative upper limits to unbounded
func normalizeUpper(upper *int) *int {
	if upper == nil || *upper < 0 {
		return nil
	}
	return catalog.Limit(*upper)
}

func checkLimits(lower int, upper *int) error {
	if lower < 0 {
		return fmt.Errorf("lower_limit must not be negative, got %d", lower)
	}
	if upper != nil && *upper >= 0 && *upper < lower {
		return fmt.Errorf("upper_limit %d is below lower_limit %d", *upper, lower)
	}
	return nil
}
