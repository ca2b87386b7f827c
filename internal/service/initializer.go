package service

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"

	"composer/internal/canvas"
	"composer/internal/catalog"
	"composer/internal/domain"
	"composer/internal/layout"
	"composer/pkg/logger"
)

// identifierFields are tried, in order, when an embedded definition has no
// key attributes.
var identifierFields = []string{"id", "uuid", "identifier", "name"}

// Initializer builds a canvas graph from an instance snapshot.
type Initializer struct {
	catalog   *catalog.Catalog
	projector *Projector
	layout    layout.Options
	log       *logger.Logger
}

// NewInitializer creates an initializer
func NewInitializer(c *catalog.Catalog, projector *Projector, opts layout.Options, log *logger.Logger) *Initializer {
	if projector == nil {
		projector = NewProjector(nil)
	}
	return &Initializer{
		catalog:   c,
		projector: projector,
		layout:    opts,
		log:       log.OrNop().WithComponent("initializer"),
	}
}

// Initialize creates one core shape for the root instance, one relation
// shape per related instance and the embedded shapes found in the root's
// attributes, wires their connections and lays them out. Instances whose
// service entity is missing from the catalog are skipped with a warning.
// The returned Tracked records every service shape for delete detection.
func (i *Initializer) Initialize(snapshot domain.InstanceSnapshot) (*canvas.Graph, *Tracked, error) {
	g := canvas.NewGraph()
	root := snapshot.Instance

	core, err := i.addInstance(g, root, domain.EntityKindCore)
	if err != nil {
		return nil, nil, err
	}
	for _, related := range snapshot.RelatedInstances {
		if related.ID == root.ID || g.Has(related.ID) {
			i.log.Warnw("skipping duplicate related instance", "instance_id", related.ID)
			continue
		}
		if _, err := i.addInstance(g, related, domain.EntityKindRelation); err != nil {
			return nil, nil, err
		}
	}

	if core != nil {
		b := &embedBuilder{graph: g, rootID: core.ID, cache: make(map[string]string)}
		if err := b.materialize(core, core.Definition, core.Attributes); err != nil {
			return nil, nil, err
		}
	}

	if err := i.wireRelations(g); err != nil {
		return nil, nil, err
	}

	layout.Auto(g, i.layout)
	i.applyMetadata(g, root)

	tracked := NewTracked()
	for _, node := range g.Nodes() {
		if node.Kind == domain.EntityKindEmbedded {
			continue
		}
		item := i.projector.Project(g, node)
		tracked.Track(TrackedShape{
			ID:            node.ID,
			Kind:          node.Kind,
			ServiceEntity: item.ServiceEntity,
			Attributes:    item.Attributes.Clone(),
		})
	}

	i.log.Debugw("canvas initialized",
		"instance_id", root.ID,
		"shapes", g.Len(),
		"tracked", tracked.Len(),
	)
	return g, tracked, nil
}

func (i *Initializer) addInstance(g *canvas.Graph, inst domain.Instance, kind domain.EntityKind) (*domain.ShapeEntity, error) {
	def, ok := i.catalog.Get(inst.ServiceEntity)
	if !ok {
		i.log.Warnw("service entity not found in catalog, skipping instance",
			"instance_id", inst.ID,
			"service_entity", inst.ServiceEntity,
		)
		return nil, nil
	}
	shape := domain.NewShape(inst.ID, kind, def, inst.BestAttributes().Clone(), false)
	shape.Config = inst.Config
	if err := g.AddNode(shape); err != nil {
		return nil, err
	}
	return shape, nil
}

// wireRelations connects every shape to the shapes its relation attributes
// reference. References to instances outside the snapshot are ignored.
func (i *Initializer) wireRelations(g *canvas.Graph) error {
	for _, node := range g.Nodes() {
		for _, rel := range node.Definition.InterServiceRelations {
			if rel.Modifier.IsReadOnly() {
				continue
			}
			for _, targetID := range node.Attributes.Strings(rel.Name) {
				target, ok := g.Node(targetID)
				if !ok {
					i.log.Debugw("relation target not in snapshot",
						"shape_id", node.ID,
						"attribute", rel.Name,
						"target_id", targetID,
					)
					continue
				}
				if target.TypeKey() != rel.EntityType || targetID == node.ID || g.Connected(node.ID, targetID) {
					continue
				}
				if err := g.AddConnection(node.ID, targetID); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (i *Initializer) applyMetadata(g *canvas.Graph, root domain.Instance) {
	raw, ok := root.LayoutMetadata()
	if !ok {
		return
	}
	m, err := layout.ParseMetadata(raw)
	if err != nil {
		i.log.Warnw("ignoring malformed layout metadata", "instance_id", root.ID, "error", err)
		return
	}
	if applied := m.Apply(g); len(applied) > 0 {
		layout.FixCollisions(g.Nodes(), i.layout)
	}
}

// embedBuilder materializes embedded shapes below one root. Shapes are
// shared between occurrences with the same cache key.
type embedBuilder struct {
	graph  *canvas.Graph
	rootID string
	cache  map[string]string
}

func (b *embedBuilder) materialize(parent *domain.ShapeEntity, def *catalog.EntityTypeDefinition, attrs domain.Attributes) error {
	for idx := range def.EmbeddedEntities {
		embedded := &def.EmbeddedEntities[idx]
		if embedded.Modifier.IsReadOnly() {
			continue
		}

		objects, _ := attrs.Objects(embedded.Name)
		for n, obj := range objects {
			key := b.cacheKey(parent, embedded, obj, n)
			if existing, ok := b.cache[key]; ok {
				if existing != parent.ID && !b.graph.Connected(parent.ID, existing) {
					if err := b.graph.AddConnection(parent.ID, existing); err != nil {
						return err
					}
				}
				continue
			}

			child := domain.NewShape(b.shapeID(key), domain.EntityKindEmbedded, &embedded.EntityTypeDefinition, obj.Clone(), false)
			if err := b.graph.AddNode(child); err != nil {
				return err
			}
			b.cache[key] = child.ID
			if err := b.graph.AddConnection(parent.ID, child.ID); err != nil {
				return err
			}
			if err := b.materialize(child, &embedded.EntityTypeDefinition, obj); err != nil {
				return err
			}
		}
	}
	return nil
}

// cacheKey identifies one logical embedded entity: its type plus its key
// attribute values, else its identifier-like fields. Without either, each
// occurrence is its own entity.
func (b *embedBuilder) cacheKey(parent *domain.ShapeEntity, embedded *catalog.EmbeddedDefinition, obj domain.Attributes, n int) string {
	typeKey := embedded.TypeKey()
	if values := keyValues(obj, embedded.KeyAttributes); values != "" {
		return typeKey + "|" + values
	}
	for _, field := range identifierFields {
		if values := keyValues(obj, []string{field}); values != "" {
			return typeKey + "|" + values
		}
	}
	return fmt.Sprintf("%s|%s/%s[%d]", typeKey, parent.ID, embedded.Name, n)
}

func keyValues(obj domain.Attributes, fields []string) string {
	if len(fields) == 0 {
		return ""
	}
	parts := make([]string, 0, len(fields))
	found := false
	for _, field := range fields {
		v, ok := obj[field]
		if !ok || v == nil {
			parts = append(parts, "")
			continue
		}
		s := fmt.Sprint(v)
		if s != "" {
			found = true
		}
		parts = append(parts, field+"="+s)
	}
	if !found {
		return ""
	}
	return strings.Join(parts, ",")
}

// shapeID derives a stable id so reopening the same snapshot yields the
// same embedded shape ids.
func (b *embedBuilder) shapeID(key string) string {
	sum := blake2b.Sum256([]byte(b.rootID + "\x00" + key))
	return hex.EncodeToString(sum[:16])
}
