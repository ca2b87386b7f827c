package service

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"composer/internal/catalog"
	"composer/internal/domain"
)

// AttributeSanitizer normalizes an attribute payload before it is sent
// to the backend.
type AttributeSanitizer interface {
	Sanitize(def *catalog.EntityTypeDefinition, attrs domain.Attributes) domain.Attributes
}

// FieldError is a validation failure on one attribute.
type FieldError struct {
	Attribute string `json:"attribute" yaml:"attribute"`
	Message   string `json:"message" yaml:"message"`
}

// FieldValidator checks attribute values against their definitions.
type FieldValidator interface {
	Validate(def *catalog.EntityTypeDefinition, attrs domain.Attributes) []FieldError
}

// DefaultSanitizer coerces form values to the types their definitions
// declare. Values that cannot be coerced are left unchanged for the field
// validator to report.
type DefaultSanitizer struct{}

// Sanitize returns a coerced copy of attrs
func (DefaultSanitizer) Sanitize(def *catalog.EntityTypeDefinition, attrs domain.Attributes) domain.Attributes {
	out := attrs.Clone()
	if out == nil {
		out = make(domain.Attributes)
	}
	if def == nil {
		return out
	}
	for _, attr := range def.Attributes {
		v, ok := out[attr.Name]
		if !ok {
			continue
		}
		out[attr.Name] = coerce(attr, v)
	}
	return out
}

func coerce(attr catalog.AttributeDefinition, v any) any {
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" && attr.IsOptional() {
		return nil
	}

	switch attr.BaseType() {
	case "int":
		if d, ok := toDecimal(v); ok && d.IsInteger() {
			return d.IntPart()
		}
	case "float", "number":
		if d, ok := toDecimal(v); ok {
			return d.InexactFloat64()
		}
	case "bool":
		if s, ok := v.(string); ok {
			if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
				return b
			}
		}
	case "dict":
		if s, ok := v.(string); ok {
			var m map[string]any
			if err := json.Unmarshal([]byte(s), &m); err == nil {
				return m
			}
		}
	case "list":
		if s, ok := v.(string); ok {
			var l []any
			if err := json.Unmarshal([]byte(s), &l); err == nil {
				return l
			}
		}
	}
	return v
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		return d, err == nil
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(n), true
	case float32:
		return decimal.NewFromFloat32(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case int32:
		return decimal.NewFromInt32(n), true
	}
	return decimal.Decimal{}, false
}
