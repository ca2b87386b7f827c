package domain

// Action is the operation an order item asks the backend to perform
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// ActionPtr returns a pointer to a, for building order items.
func ActionPtr(a Action) *Action {
	return &a
}

// Edit is a patch applied to an existing instance
type Edit struct {
	EditID    string `json:"edit_id" yaml:"edit_id"`
	Operation string `json:"operation" yaml:"operation"`
	Target    string `json:"target" yaml:"target"`
	Value     any    `json:"value" yaml:"value"`
}

// EditOperationReplace replaces the value at Target
const EditOperationReplace = "replace"

// EditTargetRoot addresses the whole attribute payload
const EditTargetRoot = "."

// OrderItem is one entry of the change-set submitted to the backend. A nil
// Action means the shape needs no change.
type OrderItem struct {
	InstanceID    string         `json:"instance_id" yaml:"instance_id"`
	ServiceEntity string         `json:"service_entity" yaml:"service_entity"`
	Action        *Action        `json:"action" yaml:"action"`
	Attributes    Attributes     `json:"attributes" yaml:"attributes"`
	Edits         []Edit         `json:"edits,omitempty" yaml:"edits,omitempty"`
	Config        map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// ActionName returns the action as a string, or "" for a no-op item
func (o *OrderItem) ActionName() string {
	if o.Action == nil {
		return ""
	}
	return string(*o.Action)
}

// Is reports whether the item performs action a
func (o *OrderItem) Is(a Action) bool {
	return o.Action != nil && *o.Action == a
}
