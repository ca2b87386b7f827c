package domain

// MetadataCoordinates is the instance metadata key holding serialized
// canvas coordinates.
const MetadataCoordinates = "coordinates"

// Instance is a persisted service instance as returned by the inventory.
type Instance struct {
	ID                  string            `json:"id" yaml:"id"`
	ServiceEntity       string            `json:"service_entity" yaml:"service_entity"`
	Version             int               `json:"version" yaml:"version"`
	Config              map[string]any    `json:"config,omitempty" yaml:"config,omitempty"`
	CandidateAttributes Attributes        `json:"candidate_attributes" yaml:"candidate_attributes"`
	ActiveAttributes    Attributes        `json:"active_attributes" yaml:"active_attributes"`
	Metadata            map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// BestAttributes returns the pending candidate attributes when present,
// else the last active set.
func (i *Instance) BestAttributes() Attributes {
	if i.CandidateAttributes != nil {
		return i.CandidateAttributes
	}
	return i.ActiveAttributes
}

// LayoutMetadata returns the serialized coordinates blob, if any
func (i *Instance) LayoutMetadata() (string, bool) {
	if i.Metadata == nil {
		return "", false
	}
	raw, ok := i.Metadata[MetadataCoordinates]
	return raw, ok && raw != ""
}

// InstanceSnapshot is the payload a composition is initialized from.
type InstanceSnapshot struct {
	Instance         Instance   `json:"instance" yaml:"instance"`
	RelatedInstances []Instance `json:"related_instances" yaml:"related_instances"`
}
