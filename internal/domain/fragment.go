package domain

// FragmentNode is the exported form of a shape
type FragmentNode struct {
	ID         string     `json:"id" yaml:"id"`
	Kind       EntityKind `json:"kind" yaml:"kind"`
	Type       string     `json:"type" yaml:"type"`
	Label      string     `json:"label" yaml:"label"`
	IsNew      bool       `json:"is_new" yaml:"is_new"`
	Position   Position   `json:"position" yaml:"position"`
	Size       Size       `json:"size" yaml:"size"`
	Attributes Attributes `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Fragment is an exportable view of a composition
type Fragment struct {
	Nodes []FragmentNode `json:"nodes" yaml:"nodes"`
	Links []Link         `json:"links" yaml:"links"`
}

// NewFragment creates an empty fragment
func NewFragment() *Fragment {
	return &Fragment{
		Nodes: make([]FragmentNode, 0),
		Links: make([]Link, 0),
	}
}

// AddNode adds a node to the fragment
func (f *Fragment) AddNode(node FragmentNode) {
	f.Nodes = append(f.Nodes, node)
}

// AddLink adds a link to the fragment
func (f *Fragment) AddLink(link Link) {
	f.Links = append(f.Links, link)
}
