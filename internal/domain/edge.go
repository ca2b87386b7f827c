package domain

import (
	"crypto/sha256"
	"fmt"
)

// Link is the canvas edge between two connected shapes. It is derived
// from the endpoints' connection maps and carries no state of its own.
type Link struct {
	ID       string `json:"id" yaml:"id"`
	SourceID string `json:"source_id" yaml:"source_id"`
	TargetID string `json:"target_id" yaml:"target_id"`

	// Role is the type key of the target as seen from the source.
	Role string `json:"role" yaml:"role"`
}

// NewLink creates a link with a deterministic id
func NewLink(sourceID, targetID, role string) Link {
	link := Link{
		SourceID: sourceID,
		TargetID: targetID,
		Role:     role,
	}
	link.ID = link.GenerateID()
	return link
}

// GenerateID creates a deterministic ID for the link based on endpoints
func (l Link) GenerateID() string {
	// Normalize endpoints so both directions share an id
	from, to := l.SourceID, l.TargetID
	if from > to {
		from, to = to, from
	}

	key := fmt.Sprintf("%s-%s", from, to)
	hash := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", hash[:8])
}

// Involves checks if this link touches the given shape
func (l Link) Involves(id string) bool {
	return l.SourceID == id || l.TargetID == id
}

// OtherEnd returns the shape on the other end of this link
func (l Link) OtherEnd(id string) string {
	if l.SourceID == id {
		return l.TargetID
	}
	return l.SourceID
}
