// Package fieldcheck validates attribute values against the CEL
// expressions attached to their definitions.
package fieldcheck

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"composer/internal/catalog"
	"composer/internal/domain"
	"composer/internal/service"
)

// CEL evaluates `validation` expressions. Each expression sees the
// attribute value as `value` and must return a boolean. Compiled programs
// are cached by expression text.
type CEL struct {
	env *cel.Env

	mu       sync.Mutex
	programs map[string]cel.Program
}

var _ service.FieldValidator = (*CEL)(nil)

// NewCEL creates a validator with the `value` variable declared
func NewCEL() (*CEL, error) {
	env, err := cel.NewEnv(
		cel.Variable("value", cel.DynType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &CEL{
		env:      env,
		programs: make(map[string]cel.Program),
	}, nil
}

// Check compiles an expression and verifies it yields a boolean
func (c *CEL) Check(expression string) error {
	ast, issues := c.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("invalid CEL expression: %w", issues.Err())
	}
	if t := ast.OutputType(); !t.IsExactType(cel.BoolType) && !t.IsExactType(cel.DynType) {
		return fmt.Errorf("CEL expression must return boolean, got: %s", t)
	}
	return nil
}

// CheckCatalog compiles every validation expression in defs, embedded
// entities included.
func (c *CEL) CheckCatalog(defs []*catalog.EntityTypeDefinition) error {
	for _, def := range defs {
		if err := c.checkDefinition(def); err != nil {
			return err
		}
	}
	return nil
}

func (c *CEL) checkDefinition(def *catalog.EntityTypeDefinition) error {
	for _, attr := range def.Attributes {
		if attr.Validation == "" {
			continue
		}
		if err := c.Check(attr.Validation); err != nil {
			return fmt.Errorf("%s.%s: %w", def.Name, attr.Name, err)
		}
	}
	for i := range def.EmbeddedEntities {
		if err := c.checkDefinition(&def.EmbeddedEntities[i].EntityTypeDefinition); err != nil {
			return err
		}
	}
	return nil
}

// Validate evaluates the expressions of def against attrs and descends
// into embedded entity payloads. Absent and null values are not checked.
func (c *CEL) Validate(def *catalog.EntityTypeDefinition, attrs domain.Attributes) []service.FieldError {
	if def == nil {
		return nil
	}
	return c.validate(def, attrs, "")
}

func (c *CEL) validate(def *catalog.EntityTypeDefinition, attrs domain.Attributes, prefix string) []service.FieldError {
	var errs []service.FieldError

	for _, attr := range def.Attributes {
		if attr.Validation == "" {
			continue
		}
		v, ok := attrs[attr.Name]
		if !ok || v == nil {
			continue
		}
		passed, err := c.eval(attr.Validation, v)
		switch {
		case err != nil:
			errs = append(errs, service.FieldError{Attribute: prefix + attr.Name, Message: err.Error()})
		case !passed:
			errs = append(errs, service.FieldError{
				Attribute: prefix + attr.Name,
				Message:   fmt.Sprintf("value %v does not satisfy %q", v, attr.Validation),
			})
		}
	}

	for i := range def.EmbeddedEntities {
		embedded := &def.EmbeddedEntities[i]
		objects, isList := attrs.Objects(embedded.Name)
		for n, obj := range objects {
			path := prefix + embedded.Name + "."
			if isList {
				path = fmt.Sprintf("%s%s[%d].", prefix, embedded.Name, n)
			}
			errs = append(errs, c.validate(&embedded.EntityTypeDefinition, obj, path)...)
		}
	}

	return errs
}

func (c *CEL) eval(expression string, value any) (bool, error) {
	program, err := c.program(expression)
	if err != nil {
		return false, err
	}

	result, _, err := program.Eval(map[string]any{"value": normalize(value)})
	if err != nil {
		return false, fmt.Errorf("failed to evaluate CEL expression: %w", err)
	}

	passed, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("CEL expression did not evaluate to boolean, got: %T", result.Value())
	}
	return passed, nil
}

func (c *CEL) program(expression string) (cel.Program, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.programs[expression]; ok {
		return p, nil
	}

	ast, issues := c.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile CEL expression: %w", issues.Err())
	}
	p, err := c.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}
	c.programs[expression] = p
	return p, nil
}

// normalize converts decoded payload values to types the CEL adapter
// understands natively.
func normalize(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	case domain.Attributes:
		return normalize(map[string]any(x))
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = normalize(item)
		}
		return out
	case []string:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = item
		}
		return out
	}
	return v
}
