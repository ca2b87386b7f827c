package sqlite

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"

	"composer/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// ============================================================================
// JSON Marshaling Helpers
// ============================================================================

// unmarshalJSONField unmarshals JSON from a nullable string into target.
// Numbers are decoded as json.Number so integers keep their exact value.
func unmarshalJSONField(ns sql.NullString, target any) error {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	decoder := json.NewDecoder(bytes.NewReader([]byte(ns.String)))
	decoder.UseNumber()
	return decoder.Decode(target)
}

// marshalToNull marshals v to a nullable JSON string. Nil values are
// stored as NULL.
func marshalToNull(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	if string(data) == "null" {
		return sql.NullString{}, nil
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// ============================================================================
// Instance Row Scanner
// ============================================================================
//
// Column order must match between instanceColumns, scanArgs() and
// instanceInsertArgs().

// instanceRow holds all columns from an instance query for scanning
type instanceRow struct {
	ID            string
	ServiceEntity string
	Version       int
	ConfigJSON    sql.NullString
	CandidateJSON sql.NullString
	ActiveJSON    sql.NullString
	MetadataJSON  sql.NullString
}

// scanArgs returns pointers to all fields for sql.Scan()
func (r *instanceRow) scanArgs() []any {
	return []any{
		&r.ID,            // 1
		&r.ServiceEntity, // 2
		&r.Version,       // 3
		&r.ConfigJSON,    // 4
		&r.CandidateJSON, // 5
		&r.ActiveJSON,    // 6
		&r.MetadataJSON,  // 7
	}
}

// toDomain converts the scanned row to a domain.Instance
func (r *instanceRow) toDomain() (*domain.Instance, error) {
	inst := &domain.Instance{
		ID:            r.ID,
		ServiceEntity: r.ServiceEntity,
		Version:       r.Version,
	}

	if err := unmarshalJSONField(r.ConfigJSON, &inst.Config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := unmarshalJSONField(r.CandidateJSON, &inst.CandidateAttributes); err != nil {
		return nil, fmt.Errorf("unmarshal candidate attributes: %w", err)
	}
	if err := unmarshalJSONField(r.ActiveJSON, &inst.ActiveAttributes); err != nil {
		return nil, fmt.Errorf("unmarshal active attributes: %w", err)
	}
	if err := unmarshalJSONField(r.MetadataJSON, &inst.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}

	return inst, nil
}

// instanceColumns is the SELECT column list for instance queries
const instanceColumns = `id, service_entity, version, config,
	candidate_attributes, active_attributes, metadata`

// instanceInsertArgs returns the values for an instance upsert in
// instanceColumns order.
func instanceInsertArgs(inst *domain.Instance) ([]any, error) {
	configJSON, err := marshalToNull(inst.Config)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	candidateJSON, err := marshalToNull(inst.CandidateAttributes)
	if err != nil {
		return nil, fmt.Errorf("marshal candidate attributes: %w", err)
	}
	activeJSON, err := marshalToNull(inst.ActiveAttributes)
	if err != nil {
		return nil, fmt.Errorf("marshal active attributes: %w", err)
	}
	metadataJSON, err := marshalToNull(inst.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}

	return []any{
		inst.ID,
		inst.ServiceEntity,
		inst.Version,
		configJSON,
		candidateJSON,
		activeJSON,
		metadataJSON,
	}, nil
}
