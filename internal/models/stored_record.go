package models

import (
	"fmt"
	"strconv"
	"time"
)

// StoredRecord is a wire record persisted by the reference collaborator.
//
// Payload holds the wire fields other than id and created_at, which the collaborator assigns.
type StoredRecord struct {
	id        int64
	userID    string
	dataset   string
	payload   map[string]any
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewStoredRecord creates an unsaved [StoredRecord] owned by userID.
func NewStoredRecord(userID, dataset string, payload map[string]any) *StoredRecord {
	now := time.Now().UTC()
	return &StoredRecord{
		userID:    userID,
		dataset:   dataset,
		payload:   payload,
		createdAt: now,
		updatedAt: now,
	}
}

func (r *StoredRecord) ID() string              { return strconv.FormatInt(r.id, 10) }
func (r *StoredRecord) Serial() int64           { return r.id }
func (r *StoredRecord) UserID() string          { return r.userID }
func (r *StoredRecord) Dataset() string         { return r.dataset }
func (r *StoredRecord) Payload() map[string]any { return r.payload }
func (r *StoredRecord) CreatedAt() time.Time    { return r.createdAt }
func (r *StoredRecord) UpdatedAt() time.Time    { return r.updatedAt }
func (r *StoredRecord) DeletedAt() *time.Time   { return r.deletedAt }

func (r *StoredRecord) SetSerial(id int64)          { r.id = id }
func (r *StoredRecord) SetPayload(p map[string]any) { r.payload = p }
func (r *StoredRecord) SetCreatedAt(t time.Time)    { r.createdAt = t }
func (r *StoredRecord) SetUpdatedAt(t time.Time)    { r.updatedAt = t }
func (r *StoredRecord) SetDeletedAt(t *time.Time)   { r.deletedAt = t }

// Validate checks ownership and dataset.
func (r *StoredRecord) Validate() error {
	if r.userID == "" {
		return fmt.Errorf("record owner is required")
	}
	if !IsDataset(r.dataset) {
		return fmt.Errorf("unknown dataset %q", r.dataset)
	}
	return nil
}

// Wire returns the record in wire shape, with the collaborator-assigned id and created_at.
func (r *StoredRecord) Wire() map[string]any {
	out := make(map[string]any, len(r.payload)+2)
	for k, v := range r.payload {
		out[k] = v
	}
	out["id"] = r.id
	out["created_at"] = r.createdAt.UTC().Format(time.RFC3339)
	return out
}
