package service

import (
	"context"
	"fmt"

	"composer/internal/domain"
	"composer/internal/repository"
	"composer/pkg/logger"
)

// InventoryService loads compositions from an inventory store and records
// what they export. The engine is passed per call since the CLI swaps it
// when the catalog is reloaded.
type InventoryService struct {
	repo repository.Inventory
	log  *logger.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(repo repository.Inventory, log *logger.Logger) *InventoryService {
	return &InventoryService{
		repo: repo,
		log:  log.OrNop().WithComponent("inventory"),
	}
}

// Import stores a snapshot's instances and relations
func (s *InventoryService) Import(ctx context.Context, snapshot *domain.InstanceSnapshot) error {
	if err := s.repo.ImportSnapshot(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to import snapshot: %w", err)
	}
	s.log.Infow("snapshot imported",
		"instance_id", snapshot.Instance.ID,
		"related", len(snapshot.RelatedInstances),
	)
	return nil
}

// Open initializes a session from the stored snapshot of instanceID
func (s *InventoryService) Open(ctx context.Context, engine *Engine, instanceID string) (*Session, error) {
	snapshot, err := s.repo.Snapshot(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	return engine.Open(*snapshot)
}

// Submit exports the session, persists its layout on instanceID and
// records the change-set. It returns the change-set id.
func (s *InventoryService) Submit(ctx context.Context, instanceID string, session *Session) (string, error) {
	items, err := session.Export()
	if err != nil {
		return "", err
	}

	metadata, err := session.LayoutMetadata()
	if err != nil {
		return "", err
	}
	if err := s.repo.SaveLayout(ctx, instanceID, metadata); err != nil {
		return "", err
	}

	id, err := s.repo.RecordChangeSet(ctx, instanceID, items)
	if err != nil {
		return "", err
	}
	s.log.Infow("change-set recorded", "id", id, "instance_id", instanceID, "items", len(items))
	return id, nil
}

// ChangeSet returns a recorded change-set
func (s *InventoryService) ChangeSet(ctx context.Context, id string) (*repository.ChangeSet, error) {
	return s.repo.ChangeSet(ctx, id)
}
