package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"

	"composer/internal/core/apperror"
	"composer/internal/domain"
	"composer/internal/repository"
)

// DefaultCompressThreshold is the payload size above which change-sets
// are stored zstd-compressed.
const DefaultCompressThreshold = 4 * 1024

const (
	compressionNone = "none"
	compressionZstd = "zstd"
)

// Repository implements repository.Inventory using SQLite
type Repository struct {
	db *sql.DB

	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

var _ repository.Inventory = (*Repository)(nil)

// Option configures a Repository
type Option func(*Repository)

// WithCompressThreshold sets the change-set size, in bytes, above which
// payloads are compressed.
func WithCompressThreshold(n int) Option {
	return func(r *Repository) {
		r.compressThreshold = n
	}
}

// New opens (or creates) the database at dbPath and migrates the schema
func New(dbPath string, opts ...Option) (*Repository, error) {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	dsn := dbPath + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if strings.Contains(dbPath, ":memory:") {
		// Every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	repo := &Repository{
		db:                db,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: DefaultCompressThreshold,
	}
	for _, opt := range opts {
		opt(repo)
	}

	if err := repo.migrate(); err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS instances (
		id TEXT PRIMARY KEY,
		service_entity TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 0,
		config JSON,
		candidate_attributes JSON,
		active_attributes JSON,
		metadata JSON,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS instance_relations (
		instance_id TEXT NOT NULL,
		related_id TEXT NOT NULL,
		PRIMARY KEY (instance_id, related_id),
		FOREIGN KEY (instance_id) REFERENCES instances(id) ON DELETE CASCADE,
		FOREIGN KEY (related_id) REFERENCES instances(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS change_sets (
		id TEXT PRIMARY KEY,
		instance_id TEXT,
		item_count INTEGER NOT NULL,
		compression TEXT NOT NULL DEFAULT 'none',
		payload BLOB NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_instances_service_entity ON instances(service_entity);
	CREATE INDEX IF NOT EXISTS idx_instance_relations_related ON instance_relations(related_id);
	CREATE INDEX IF NOT EXISTS idx_change_sets_instance ON change_sets(instance_id);
	`

	_, err := r.db.Exec(schema)
	return err
}

// querier is satisfied by *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// GetInstance retrieves an instance by id
func (r *Repository) GetInstance(ctx context.Context, id string) (*domain.Instance, error) {
	return getInstance(ctx, r.db, id)
}

func getInstance(ctx context.Context, q querier, id string) (*domain.Instance, error) {
	var row instanceRow
	err := q.QueryRowContext(ctx, `SELECT `+instanceColumns+` FROM instances WHERE id = ?`, id).
		Scan(row.scanArgs()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("instance", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query instance: %w", err)
	}
	return row.toDomain()
}

// Snapshot loads an instance together with every instance it relates to,
// ordered by id.
func (r *Repository) Snapshot(ctx context.Context, id string) (*domain.InstanceSnapshot, error) {
	inst, err := r.GetInstance(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+instanceColumns+`
		FROM instances
		WHERE id IN (SELECT related_id FROM instance_relations WHERE instance_id = ?)
		ORDER BY id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query related instances: %w", err)
	}
	defer rows.Close()

	snapshot := &domain.InstanceSnapshot{
		Instance:         *inst,
		RelatedInstances: make([]domain.Instance, 0),
	}
	for rows.Next() {
		var row instanceRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan instance: %w", err)
		}
		related, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		snapshot.RelatedInstances = append(snapshot.RelatedInstances, *related)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating related instances: %w", err)
	}

	return snapshot, nil
}

// SaveInstance inserts or updates an instance
func (r *Repository) SaveInstance(ctx context.Context, inst *domain.Instance) error {
	return saveInstance(ctx, r.db, inst)
}

func saveInstance(ctx context.Context, q querier, inst *domain.Instance) error {
	if inst.ID == "" || inst.ServiceEntity == "" {
		return apperror.NewValidation("instance requires id and service_entity")
	}
	args, err := instanceInsertArgs(inst)
	if err != nil {
		return err
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO instances (`+instanceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			service_entity = excluded.service_entity,
			version = excluded.version,
			config = excluded.config,
			candidate_attributes = excluded.candidate_attributes,
			active_attributes = excluded.active_attributes,
			metadata = excluded.metadata,
			updated_at = CURRENT_TIMESTAMP
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert instance: %w", err)
	}
	return nil
}

// DeleteInstance removes an instance and its relations
func (r *Repository) DeleteInstance(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM instances WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete instance: %w", err)
	}
	return nil
}

// Relate records that instanceID references relatedID. Both instances
// must exist. Relating twice is a no-op.
func (r *Repository) Relate(ctx context.Context, instanceID, relatedID string) error {
	return relate(ctx, r.db, instanceID, relatedID)
}

func relate(ctx context.Context, q querier, instanceID, relatedID string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO instance_relations (instance_id, related_id)
		VALUES (?, ?)
		ON CONFLICT(instance_id, related_id) DO NOTHING
	`, instanceID, relatedID)
	if err != nil {
		return fmt.Errorf("failed to relate %s to %s: %w", instanceID, relatedID, err)
	}
	return nil
}

// SaveLayout stores the serialized coordinates blob in the instance
// metadata.
func (r *Repository) SaveLayout(ctx context.Context, id, metadata string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	inst, err := getInstance(ctx, tx, id)
	if err != nil {
		return err
	}
	if inst.Metadata == nil {
		inst.Metadata = make(map[string]string)
	}
	inst.Metadata[domain.MetadataCoordinates] = metadata

	metadataJSON, err := marshalToNull(inst.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE instances SET metadata = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, metadataJSON, id)
	if err != nil {
		return fmt.Errorf("failed to save layout: %w", err)
	}

	return tx.Commit()
}

// RecordChangeSet stores an exported change-set and returns its id
func (r *Repository) RecordChangeSet(ctx context.Context, instanceID string, items []domain.OrderItem) (string, error) {
	if items == nil {
		items = []domain.OrderItem{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("marshal change-set: %w", err)
	}

	compression := compressionNone
	if len(payload) > r.compressThreshold {
		payload = r.encoder.EncodeAll(payload, nil)
		compression = compressionZstd
	}

	id := uuid.NewString()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO change_sets (id, instance_id, item_count, compression, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, stringToNull(instanceID), len(items), compression, payload, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("failed to record change-set: %w", err)
	}

	return id, nil
}

// ChangeSet loads a recorded change-set
func (r *Repository) ChangeSet(ctx context.Context, id string) (*repository.ChangeSet, error) {
	var (
		instanceID  sql.NullString
		compression string
		payload     []byte
		createdAt   string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT instance_id, compression, payload, created_at FROM change_sets WHERE id = ?
	`, id).Scan(&instanceID, &compression, &payload, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("change-set", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query change-set: %w", err)
	}

	if compression == compressionZstd {
		payload, err = r.decoder.DecodeAll(payload, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress change-set: %w", err)
		}
	}

	cs := &repository.ChangeSet{
		ID:         id,
		InstanceID: nullToString(instanceID),
		Compressed: compression == compressionZstd,
	}
	if err := unmarshalJSONField(sql.NullString{String: string(payload), Valid: true}, &cs.Items); err != nil {
		return nil, fmt.Errorf("unmarshal change-set: %w", err)
	}
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		cs.CreatedAt = t
	}

	return cs, nil
}

// ImportSnapshot stores a snapshot's instances and their relations in a
// single transaction.
func (r *Repository) ImportSnapshot(ctx context.Context, snapshot *domain.InstanceSnapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := saveInstance(ctx, tx, &snapshot.Instance); err != nil {
		return err
	}
	for i := range snapshot.RelatedInstances {
		related := &snapshot.RelatedInstances[i]
		if err := saveInstance(ctx, tx, related); err != nil {
			return err
		}
		if err := relate(ctx, tx, snapshot.Instance.ID, related.ID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	return nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.encoder != nil {
		r.encoder.Close()
	}
	if r.decoder != nil {
		r.decoder.Close()
	}
	return r.db.Close()
}
