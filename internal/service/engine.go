package service

import (
	"composer/internal/catalog"
	"composer/internal/domain"
	"composer/internal/layout"
	"composer/internal/relations"
	"composer/pkg/logger"
)

// Engine opens composition sessions against one catalog snapshot. The
// relations graph is compiled once and shared read-only by every session.
type Engine struct {
	catalog   *catalog.Catalog
	relations relations.Graph
	projector *Projector
	fields    FieldValidator
	layout    layout.Options
	events    *EventBus
	log       *logger.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithSanitizer sets the attribute sanitizer used by projections
func WithSanitizer(s AttributeSanitizer) Option {
	return func(e *Engine) { e.projector = NewProjector(s) }
}

// WithFieldValidator sets the validator consulted before export
func WithFieldValidator(v FieldValidator) Option {
	return func(e *Engine) { e.fields = v }
}

// WithLayout sets the layout geometry
func WithLayout(opts layout.Options) Option {
	return func(e *Engine) { e.layout = opts }
}

// WithEventBus sets the bus sessions publish to
func WithEventBus(bus *EventBus) Option {
	return func(e *Engine) { e.events = bus }
}

// WithLogger sets the logger
func WithLogger(log *logger.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// NewEngine compiles the relations graph of c.
func NewEngine(c *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog:   c,
		relations: relations.BuildCatalog(c),
		projector: NewProjector(nil),
		layout:    layout.DefaultOptions(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.OrNop()
	return e
}

// Catalog returns the catalog the engine was built from
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Relations returns the compiled relations graph
func (e *Engine) Relations() relations.Graph {
	return e.relations
}

// Events returns the engine's event bus, which may be nil
func (e *Engine) Events() *EventBus {
	return e.events
}

// Open initializes a session from an existing instance and its related
// instances.
func (e *Engine) Open(snapshot domain.InstanceSnapshot) (*Session, error) {
	initializer := NewInitializer(e.catalog, e.projector, e.layout, e.log)
	g, tracked, err := initializer.Initialize(snapshot)
	if err != nil {
		return nil, err
	}
	s := newSession(e, g, tracked)
	s.publish(EventCanvasInitialized, map[string]any{
		"instance_id": snapshot.Instance.ID,
		"shapes":      g.Len(),
	})
	return s, nil
}

// Compose starts an empty session for a brand new service.
func (e *Engine) Compose() *Session {
	return newSession(e, nil, nil)
}
