package catalog

import "sort"

// Catalog indexes the top-level service definitions by name.
type Catalog struct {
	services []*EntityTypeDefinition
	byName   map[string]*EntityTypeDefinition
}

// New creates a catalog from a list of service definitions. Later
// definitions with a duplicate name replace earlier ones.
func New(defs []*EntityTypeDefinition) *Catalog {
	c := &Catalog{
		services: make([]*EntityTypeDefinition, 0, len(defs)),
		byName:   make(map[string]*EntityTypeDefinition, len(defs)),
	}
	for _, def := range defs {
		if def == nil {
			continue
		}
		if _, exists := c.byName[def.Name]; !exists {
			c.services = append(c.services, def)
		} else {
			for i, existing := range c.services {
				if existing.Name == def.Name {
					c.services[i] = def
				}
			}
		}
		c.byName[def.Name] = def
	}
	return c
}

// Get returns the service definition by name
func (c *Catalog) Get(name string) (*EntityTypeDefinition, bool) {
	if c == nil {
		return nil, false
	}
	def, ok := c.byName[name]
	return def, ok
}

// Services returns the definitions in catalog order.
func (c *Catalog) Services() []*EntityTypeDefinition {
	if c == nil {
		return nil
	}
	out := make([]*EntityTypeDefinition, len(c.services))
	copy(out, c.services)
	return out
}

// Names returns the sorted service names.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.byName))
	for name := range c.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of services.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.services)
}
