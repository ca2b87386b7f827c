package fieldcheck

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"composer/internal/catalog"
	"composer/internal/domain"
)

func definition() *catalog.EntityTypeDefinition {
	return &catalog.EntityTypeDefinition{
		Name: "router",
		Attributes: []catalog.AttributeDefinition{
			{Name: "name", Type: "string", Validation: "size(value) > 0 && size(value) <= 16"},
			{Name: "asn", Type: "int?", Validation: "value >= 64512 && value <= 65534"},
			{Name: "tags", Type: "string[]?", Validation: "value.all(t, t.startsWith('env:'))"},
			{Name: "comment", Type: "string?"},
		},
		EmbeddedEntities: []catalog.EmbeddedDefinition{
			{
				EntityTypeDefinition: catalog.EntityTypeDefinition{
					Name: "interfaces",
					Attributes: []catalog.AttributeDefinition{
						{Name: "mtu", Type: "int?", Validation: "value >= 576 && value <= 9216"},
					},
				},
			},
		},
	}
}

func TestValidate(t *testing.T) {
	v, err := NewCEL()
	require.NoError(t, err)

	tests := []struct {
		name   string
		attrs  domain.Attributes
		failed []string
	}{
		{
			name:  "valid payload",
			attrs: domain.Attributes{"name": "edge", "asn": 65001, "tags": []any{"env:prod"}},
		},
		{
			name:  "null and absent values are skipped",
			attrs: domain.Attributes{"name": "edge", "asn": nil},
		},
		{
			name:   "out of range number",
			attrs:  domain.Attributes{"name": "edge", "asn": json.Number("100")},
			failed: []string{"asn"},
		},
		{
			name:   "several failures",
			attrs:  domain.Attributes{"name": "", "tags": []string{"prod"}},
			failed: []string{"name", "tags"},
		},
		{
			name: "embedded list entries",
			attrs: domain.Attributes{
				"name":       "edge",
				"interfaces": []any{map[string]any{"mtu": 1500}, map[string]any{"mtu": 100}},
			},
			failed: []string{"interfaces[1].mtu"},
		},
		{
			name:   "embedded single object",
			attrs:  domain.Attributes{"name": "edge", "interfaces": map[string]any{"mtu": int64(10000)}},
			failed: []string{"interfaces.mtu"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, fe := range v.Validate(definition(), tt.attrs) {
				got = append(got, fe.Attribute)
				assert.NotEmpty(t, fe.Message)
			}
			assert.Equal(t, tt.failed, got)
		})
	}
}

func TestValidateTypeMismatch(t *testing.T) {
	v, err := NewCEL()
	require.NoError(t, err)

	errs := v.Validate(definition(), domain.Attributes{"name": 42})
	require.Len(t, errs, 1)
	assert.Equal(t, "name", errs[0].Attribute)
}

func TestCheck(t *testing.T) {
	v, err := NewCEL()
	require.NoError(t, err)

	assert.NoError(t, v.Check("value > 1"))
	assert.Error(t, v.Check("value >"))
	assert.Error(t, v.Check("'text'"))

	assert.NoError(t, v.CheckCatalog([]*catalog.EntityTypeDefinition{definition()}))

	bad := definition()
	bad.EmbeddedEntities[0].Attributes[0].Validation = "value +"
	err = v.CheckCatalog([]*catalog.EntityTypeDefinition{bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interfaces.mtu")
}
