package domain

import (
	"encoding/json"
	"reflect"
	"sort"
)

// Attributes holds the attribute payload of an instance or shape.
type Attributes map[string]any

// Clone returns a deep copy. Nested maps and slices are copied so the
// clone can be edited without touching the original.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return map[string]any(Attributes(t).Clone())
	case Attributes:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	}
	return v
}

// GetString returns string value or empty string if not found/wrong type.
func (a Attributes) GetString(key string) string {
	if a == nil {
		return ""
	}
	if v, ok := a[key].(string); ok {
		return v
	}
	return ""
}

// Strings returns the value of key as a list of strings. A single string is
// returned as a one-element list; non-string list items are skipped.
func (a Attributes) Strings(key string) []string {
	if a == nil {
		return nil
	}
	switch v := a[key].(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		out := make([]string, 0, len(v))
		for _, s := range v {
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Objects returns the value of key as a list of objects. A single object
// yields a one-element list. The second result reports whether the value
// was a list.
func (a Attributes) Objects(key string) ([]Attributes, bool) {
	if a == nil {
		return nil, false
	}
	switch v := a[key].(type) {
	case map[string]any:
		return []Attributes{Attributes(v)}, false
	case Attributes:
		return []Attributes{v}, false
	case []any:
		out := make([]Attributes, 0, len(v))
		for _, item := range v {
			switch obj := item.(type) {
			case map[string]any:
				out = append(out, Attributes(obj))
			case Attributes:
				out = append(out, obj)
			}
		}
		return out, true
	case []map[string]any:
		out := make([]Attributes, 0, len(v))
		for _, obj := range v {
			out = append(out, Attributes(obj))
		}
		return out, true
	}
	return nil, false
}

// Keys returns the sorted attribute keys.
func (a Attributes) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Only returns a copy restricted to the given keys.
func (a Attributes) Only(keys map[string]struct{}) Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		if _, ok := keys[k]; ok {
			out[k] = v
		}
	}
	return out
}

// Without returns a copy with the given keys removed.
func (a Attributes) Without(keys map[string]struct{}) Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		if _, ok := keys[k]; !ok {
			out[k] = v
		}
	}
	return out
}

// Equal compares two payloads by their JSON representation, so numbers
// decoded as json.Number compare equal to float64 values.
func (a Attributes) Equal(o Attributes) bool {
	if reflect.DeepEqual(a, o) {
		return true
	}
	left, err := json.Marshal(a)
	if err != nil {
		return false
	}
	right, err := json.Marshal(o)
	if err != nil {
		return false
	}
	var l, r any
	if json.Unmarshal(left, &l) != nil || json.Unmarshal(right, &r) != nil {
		return false
	}
	return reflect.DeepEqual(l, r)
}
