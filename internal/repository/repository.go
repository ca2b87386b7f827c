package repository

import (
	"context"
	"time"

	"composer/internal/domain"
)

// Inventory defines the interface for instance inventory access
type Inventory interface {
	// Read operations
	GetInstance(ctx context.Context, id string) (*domain.Instance, error)
	Snapshot(ctx context.Context, id string) (*domain.InstanceSnapshot, error)

	// Write operations
	SaveInstance(ctx context.Context, inst *domain.Instance) error
	DeleteInstance(ctx context.Context, id string) error
	Relate(ctx context.Context, instanceID, relatedID string) error

	// Layout persistence
	SaveLayout(ctx context.Context, id, metadata string) error

	// Change-set history
	RecordChangeSet(ctx context.Context, instanceID string, items []domain.OrderItem) (string, error)
	ChangeSet(ctx context.Context, id string) (*ChangeSet, error)

	// Bulk operations
	ImportSnapshot(ctx context.Context, snapshot *domain.InstanceSnapshot) error

	// Close releases resources
	Close() error
}

// ChangeSet is a recorded export of a composition
type ChangeSet struct {
	ID         string             `json:"id"`
	InstanceID string             `json:"instance_id"`
	Items      []domain.OrderItem `json:"items"`
	Compressed bool               `json:"compressed"`
	CreatedAt  time.Time          `json:"created_at"`
}
