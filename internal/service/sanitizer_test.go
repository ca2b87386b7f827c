package service

import (
	"encoding/json"
	"testing"

	"composer/internal/catalog"
	"composer/internal/domain"
)

func TestDefaultSanitizer(t *testing.T) {
	def := &catalog.EntityTypeDefinition{
		Name: "svc",
		Attributes: []catalog.AttributeDefinition{
			{Name: "count", Type: "int"},
			{Name: "ratio", Type: "float"},
			{Name: "limit", Type: "number?"},
			{Name: "flag", Type: "bool"},
			{Name: "labels", Type: "dict?"},
			{Name: "tags", Type: "string[]"},
			{Name: "note", Type: "string?"},
			{Name: "title", Type: "string"},
		},
	}

	tests := []struct {
		name string
		key  string
		in   any
		want any
	}{
		{"int from string", "count", "42", int64(42)},
		{"int from float", "count", 7.0, int64(7)},
		{"int from json number", "count", json.Number("3"), int64(3)},
		{"fractional int is kept", "count", "4.5", "4.5"},
		{"float from string", "ratio", "1.5", 1.5},
		{"float from int", "ratio", 2, 2.0},
		{"empty optional number", "limit", "", nil},
		{"bool from string", "flag", "false", false},
		{"invalid bool is kept", "flag", "maybe", "maybe"},
		{"dict from json", "labels", `{"a":"b"}`, map[string]any{"a": "b"}},
		{"list from json", "tags", `["x","y"]`, []any{"x", "y"}},
		{"empty optional string", "note", " ", nil},
		{"empty mandatory string", "title", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := DefaultSanitizer{}.Sanitize(def, domain.Attributes{tt.key: tt.in})
			if !domain.Attributes(out).Equal(domain.Attributes{tt.key: tt.want}) {
				t.Errorf("Sanitize(%v) = %#v, want %#v", tt.in, out[tt.key], tt.want)
			}
		})
	}

	t.Run("input is not modified", func(t *testing.T) {
		in := domain.Attributes{"count": "1", "unknown": "kept"}
		out := DefaultSanitizer{}.Sanitize(def, in)
		if in["count"] != "1" {
			t.Errorf("expected input to stay untouched, got %v", in["count"])
		}
		if out["unknown"] != "kept" {
			t.Errorf("expected undeclared keys to pass through, got %v", out["unknown"])
		}
	})
}
