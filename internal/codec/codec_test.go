package codec

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"composer/internal/domain"
)

const snapshotJSON = `{
  "instance": {
    "id": "p1",
    "service_entity": "parent-service",
    "version": 2,
    "active_attributes": {"name": "edge", "mtu": 1500, "interfaces": [{"name": "eth0"}]},
    "metadata": {"coordinates": "{\"version\":1,\"coordinates\":[]}"}
  },
  "related_instances": [
    {"id": "c1", "service_entity": "child-service", "active_attributes": {"name": "child"}}
  ]
}`

const snapshotYAML = `
instance:
  id: p1
  service_entity: parent-service
  candidate_attributes:
    name: pending
  active_attributes:
    name: edge
    interfaces:
      - name: eth0
related_instances:
  - id: c1
    service_entity: child-service
`

func TestForFormat(t *testing.T) {
	for _, name := range []string{"json", "YAML", "yml"} {
		c, err := ForFormat(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, c.Format())
	}
	_, err := ForFormat("xml")
	assert.Error(t, err)
}

func TestParseSnapshot(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		s, err := NewJSONCodec().ParseSnapshot(strings.NewReader(snapshotJSON))
		require.NoError(t, err)

		assert.Equal(t, "p1", s.Instance.ID)
		assert.Equal(t, json.Number("1500"), s.Instance.ActiveAttributes["mtu"])
		objects, isList := s.Instance.ActiveAttributes.Objects("interfaces")
		assert.True(t, isList)
		assert.Len(t, objects, 1)
		raw, ok := s.Instance.LayoutMetadata()
		assert.True(t, ok)
		assert.Contains(t, raw, "coordinates")
		require.Len(t, s.RelatedInstances, 1)
	})

	t.Run("yaml", func(t *testing.T) {
		s, err := NewYAMLCodec().ParseSnapshot(strings.NewReader(snapshotYAML))
		require.NoError(t, err)

		assert.Equal(t, "pending", s.Instance.BestAttributes().GetString("name"))
		objects, _ := s.Instance.ActiveAttributes.Objects("interfaces")
		require.Len(t, objects, 1)
		assert.Equal(t, "eth0", objects[0].GetString("name"))
		assert.Equal(t, "c1", s.RelatedInstances[0].ID)
	})

	t.Run("invalid input", func(t *testing.T) {
		inputs := []string{"{", `{"instance":{"service_entity":"x"}}`, `{"instance":{"id":"x"}}`}
		for _, in := range inputs {
			_, err := NewJSONCodec().ParseSnapshot(strings.NewReader(in))
			assert.Error(t, err, in)
		}
		_, err := NewYAMLCodec().ParseSnapshot(strings.NewReader("instance: [oops"))
		assert.Error(t, err)
	})
}

func TestExport(t *testing.T) {
	fragment := domain.NewFragment()
	fragment.AddNode(domain.FragmentNode{ID: "p1", Kind: domain.EntityKindCore, Type: "parent-service", Label: "edge"})
	fragment.AddNode(domain.FragmentNode{ID: "c1", Kind: domain.EntityKindRelation, Type: "child-service", Label: "child"})
	fragment.AddLink(domain.NewLink("p1", "c1", "child-service"))

	items := []domain.OrderItem{
		{InstanceID: "p1", ServiceEntity: "parent-service", Action: domain.ActionPtr(domain.ActionCreate), Attributes: domain.Attributes{"name": "edge"}},
		{InstanceID: "c1", ServiceEntity: "child-service", Action: domain.ActionPtr(domain.ActionDelete)},
	}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewJSONCodec().Export(fragment, &buf))

		var decoded domain.Fragment
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Len(t, decoded.Nodes, 2)
		assert.Equal(t, "c1", decoded.Links[0].TargetID)

		buf.Reset()
		require.NoError(t, NewJSONCodec().ExportOrder(items, &buf))
		var doc map[string][]map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
		require.Len(t, doc["service_order_items"], 2)
		assert.Equal(t, "delete", doc["service_order_items"][1]["action"])
		assert.Nil(t, doc["service_order_items"][1]["attributes"])
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewYAMLCodec().Export(fragment, &buf))

		var decoded domain.Fragment
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
		assert.Len(t, decoded.Nodes, 2)
		assert.Equal(t, domain.EntityKindRelation, decoded.Nodes[1].Kind)
		assert.Equal(t, "p1", decoded.Links[0].SourceID)

		buf.Reset()
		require.NoError(t, NewYAMLCodec().ExportOrder(nil, &buf))
		assert.Contains(t, buf.String(), "service_order_items: []")
	})
}
