package service

import (
	"github.com/go-openapi/inflect"
	"github.com/google/uuid"

	"composer/internal/canvas"
	"composer/internal/catalog"
	"composer/internal/core/apperror"
	"composer/internal/domain"
	"composer/internal/layout"
	"composer/pkg/logger"
)

// Session is one composition: a canvas graph, the snapshot of the shapes
// it was opened with, and the gestures an operator may perform on it.
// Every gesture is checked by the validator before the graph is touched.
// A Session is not safe for concurrent use.
type Session struct {
	engine    *Engine
	graph     *canvas.Graph
	validator *canvas.Validator
	tracked   *Tracked
	log       *logger.Logger
}

func newSession(e *Engine, g *canvas.Graph, tracked *Tracked) *Session {
	if g == nil {
		g = canvas.NewGraph()
	}
	if tracked == nil {
		tracked = NewTracked()
	}
	return &Session{
		engine:    e,
		graph:     g,
		validator: canvas.NewValidator(e.relations),
		tracked:   tracked,
		log:       e.log.WithComponent("session"),
	}
}

// Graph returns the live canvas graph
func (s *Session) Graph() *canvas.Graph {
	return s.graph
}

// Validator returns the connection validator
func (s *Session) Validator() *canvas.Validator {
	return s.validator
}

// Tracked returns the initial shape snapshot
func (s *Session) Tracked() *Tracked {
	return s.tracked
}

// Place adds a new core or embedded shape for def below the existing
// shapes.
func (s *Session) Place(def *catalog.EntityTypeDefinition, kind domain.EntityKind, attrs domain.Attributes) (*domain.ShapeEntity, error) {
	if def == nil {
		return nil, apperror.NewValidation("entity type is required")
	}
	if kind == domain.EntityKindRelation {
		return nil, apperror.NewValidation("relation shapes are added from the inventory").
			WithDetail("service_entity", def.Name)
	}

	shape := domain.NewShape(uuid.NewString(), kind, def, attrs.Clone(), true)
	layout.PlaceBelow(shape, s.graph.Nodes(), s.engine.layout.StartX, s.engine.layout)
	if err := s.graph.AddNode(shape); err != nil {
		return nil, err
	}

	s.publish(EventShapePlaced, map[string]any{"shape_id": shape.ID, "type": shape.TypeKey(), "kind": string(kind)})
	return shape, nil
}

// AddInventory places an existing instance as a relation shape. Its
// current payload becomes the baseline, so it is only submitted once
// changed.
func (s *Session) AddInventory(inst domain.Instance) (*domain.ShapeEntity, error) {
	def, ok := s.engine.catalog.Get(inst.ServiceEntity)
	if !ok {
		return nil, apperror.NewSchemaInconsistency(inst.ServiceEntity).WithDetail("instance_id", inst.ID)
	}

	shape := domain.NewShape(inst.ID, domain.EntityKindRelation, def, inst.BestAttributes().Clone(), false)
	shape.Config = inst.Config
	layout.PlaceBelow(shape, s.graph.Nodes(), s.engine.layout.StartX+s.engine.layout.ColumnSpacing, s.engine.layout)
	if err := s.graph.AddNode(shape); err != nil {
		return nil, err
	}

	item := s.engine.projector.Project(s.graph, shape)
	s.tracked.Track(TrackedShape{
		ID:            shape.ID,
		Kind:          shape.Kind,
		ServiceEntity: item.ServiceEntity,
		Attributes:    item.Attributes.Clone(),
	})

	s.publish(EventShapePlaced, map[string]any{"shape_id": shape.ID, "type": shape.TypeKey(), "kind": string(shape.Kind)})
	return shape, nil
}

// Connect links two shapes if the validator allows it.
func (s *Session) Connect(sourceID, targetID string) error {
	if err := s.requireShapes(sourceID, targetID); err != nil {
		return err
	}
	if !s.validator.IsConnectionAllowed(s.graph, sourceID, targetID) {
		s.log.Debugw("connection rejected", "source", sourceID, "target", targetID)
		return apperror.NewConstraintViolation("connection not allowed").
			WithDetail("source", sourceID).
			WithDetail("target", targetID)
	}
	if err := s.graph.AddConnection(sourceID, targetID); err != nil {
		return err
	}

	s.publish(EventConnectionCreated, map[string]string{"source": sourceID, "target": targetID})
	return nil
}

// Disconnect removes the link between two shapes if the validator allows
// it.
func (s *Session) Disconnect(sourceID, targetID string) error {
	if err := s.requireShapes(sourceID, targetID); err != nil {
		return err
	}
	if !s.validator.CanRemoveLink(s.graph, sourceID, targetID) {
		return apperror.NewConstraintViolation("link cannot be removed").
			WithDetail("source", sourceID).
			WithDetail("target", targetID)
	}
	if err := s.graph.RemoveConnection(sourceID, targetID); err != nil {
		return err
	}

	s.publish(EventConnectionDeleted, map[string]string{"source": sourceID, "target": targetID})
	return nil
}

// Remove deletes a shape and its orphaned embedded descendants. Removing
// an existing relation shape only detaches it from the composition, so
// no delete is submitted for it.
func (s *Session) Remove(id string) ([]string, error) {
	shape, ok := s.graph.Node(id)
	if !ok {
		return nil, apperror.NewNotFound("shape", id)
	}
	if !s.validator.CanRemoveShape(s.graph, shape) {
		s.log.Debugw("removal rejected", "shape_id", id, "type", shape.TypeKey())
		return nil, apperror.NewConstraintViolation("shape cannot be removed").WithDetail("id", id)
	}

	removed, err := s.graph.RemoveNode(id)
	if err != nil {
		return removed, err
	}
	if shape.Kind == domain.EntityKindRelation && !shape.IsNew {
		s.tracked.Exclude(id)
	}

	s.publish(EventShapeRemoved, map[string]any{"shape_id": id, "removed": removed})
	return removed, nil
}

// UpdateAttributes merges attrs into the shape's payload. Read-only
// attributes can never be set, and create-only attributes only while the
// shape is new. A nil value clears the attribute.
func (s *Session) UpdateAttributes(id string, attrs domain.Attributes) error {
	shape, ok := s.graph.Node(id)
	if !ok {
		return apperror.NewNotFound("shape", id)
	}

	for key := range attrs {
		def, ok := shape.Definition.Attribute(key)
		if !ok {
			return apperror.NewValidation("unknown attribute").
				WithDetail("id", id).
				WithDetail("attribute", key)
		}
		if def.Modifier.IsReadOnly() || (def.Modifier.IsImmutableAfterCreate() && !shape.IsNew) {
			return apperror.NewConstraintViolation("attribute is not editable").
				WithDetail("id", id).
				WithDetail("attribute", key)
		}
	}

	merged := shape.Attributes.Clone()
	if merged == nil {
		merged = make(domain.Attributes)
	}
	for key, value := range attrs {
		if value == nil {
			delete(merged, key)
			continue
		}
		merged[key] = value
	}
	if err := s.graph.SetAttributes(id, merged); err != nil {
		return err
	}

	s.publish(EventShapeUpdated, map[string]any{"shape_id": id, "attributes": attrs.Keys()})
	return nil
}

// Move sets the position of a shape
func (s *Session) Move(id string, p domain.Position) error {
	shape, ok := s.graph.Node(id)
	if !ok {
		return apperror.NewNotFound("shape", id)
	}
	shape.Position = p
	s.publish(EventShapeMoved, map[string]any{"shape_id": id, "x": p.X, "y": p.Y})
	return nil
}

// AutoLayout recomputes every position.
func (s *Session) AutoLayout() {
	layout.Auto(s.graph, s.engine.layout)
	s.publish(EventLayoutApplied, map[string]int{"shapes": s.graph.Len()})
}

// AvailableTargets returns the ids id may be connected to
func (s *Session) AvailableTargets(id string) []string {
	return s.validator.AvailableTargets(s.graph, id)
}

// MissingConnections returns, per type key, how many connections id still
// needs.
func (s *Session) MissingConnections(id string) (map[string]int, error) {
	shape, ok := s.graph.Node(id)
	if !ok {
		return nil, apperror.NewNotFound("shape", id)
	}
	return s.validator.MissingConnections(shape), nil
}

// ExcludeFromSnapshot forgets an initial shape so its removal is not
// submitted as a delete.
func (s *Session) ExcludeFromSnapshot(id string) bool {
	return s.tracked.Exclude(id)
}

// OrderItems projects the composition, no-op items included.
func (s *Session) OrderItems() []*domain.OrderItem {
	return s.engine.projector.OrderItems(s.graph, s.tracked)
}

// Export returns the change-set ready for submission. When a field
// validator is configured, any field error fails the export.
func (s *Session) Export() ([]domain.OrderItem, error) {
	items := s.OrderItems()

	if s.engine.fields != nil {
		var problems []map[string]string
		for _, item := range items {
			if item.Action == nil || item.Is(domain.ActionDelete) {
				continue
			}
			def, ok := s.engine.catalog.Get(item.ServiceEntity)
			if !ok {
				continue
			}
			for _, fe := range s.engine.fields.Validate(def, item.Attributes) {
				problems = append(problems, map[string]string{
					"instance_id": item.InstanceID,
					"attribute":   fe.Attribute,
					"message":     fe.Message,
				})
			}
		}
		if len(problems) > 0 {
			return nil, apperror.NewValidation("attribute validation failed").WithDetail("fields", problems)
		}
	}

	exported := Export(items)
	s.publish(EventOrderExported, map[string]int{"items": len(exported)})
	return exported, nil
}

// Fragment returns an exportable view of the composition.
func (s *Session) Fragment() *domain.Fragment {
	f := domain.NewFragment()
	for _, node := range s.graph.Nodes() {
		f.AddNode(domain.FragmentNode{
			ID:         node.ID,
			Kind:       node.Kind,
			Type:       node.TypeKey(),
			Label:      label(node),
			IsNew:      node.IsNew,
			Position:   node.Position,
			Size:       node.Size,
			Attributes: node.Attributes.Clone(),
		})
	}
	for _, link := range s.graph.Links() {
		f.AddLink(link)
	}
	return f
}

// LayoutMetadata serializes the current positions.
func (s *Session) LayoutMetadata() (string, error) {
	return layout.EncodeMetadata(s.graph)
}

func (s *Session) requireShapes(ids ...string) error {
	for _, id := range ids {
		if !s.graph.Has(id) {
			return apperror.NewNotFound("shape", id)
		}
	}
	return nil
}

func (s *Session) publish(t EventType, payload any) {
	s.engine.events.Publish(Event{Type: t, Payload: payload})
}

// label is the shape's name attribute, else its humanized type name.
func label(node *domain.ShapeEntity) string {
	if name := node.Attributes.GetString("name"); name != "" {
		return name
	}
	return inflect.Titleize(node.Definition.Name)
}
