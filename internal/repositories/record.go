package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/carekeep/internal/models"
	"github.com/desertthunder/carekeep/internal/shared"
)

const recordColumns = `id, user_id, dataset, payload, created_at, updated_at, deleted_at`

// RecordRepository implements [models.Repository] for [models.StoredRecord] persistence.
//
// Get, Update and Delete are unscoped; the collaborator uses the owner-scoped
// variants so that another user's record is indistinguishable from a missing one.
type RecordRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.StoredRecord] = (*RecordRepository)(nil)

// NewRecordRepository creates a new [RecordRepository] with the given database connection
func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// Create inserts a record and assigns its serial id.
func (r *RecordRepository) Create(rec *models.StoredRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	payload, err := encodePayload(rec.Payload())
	if err != nil {
		return err
	}

	query := `
		INSERT INTO records (user_id, dataset, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query, rec.UserID(), rec.Dataset(), payload, rec.CreatedAt(), rec.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get record id: %w", err)
	}
	rec.SetSerial(id)
	return nil
}

// Get retrieves a record by id regardless of owner.
func (r *RecordRepository) Get(id string) (*models.StoredRecord, error) {
	serial, err := parseSerial(id)
	if err != nil {
		return nil, err
	}
	return r.get(`id = ?`, serial)
}

// GetOwned retrieves a record by id only when userID owns it in dataset.
func (r *RecordRepository) GetOwned(userID, dataset, id string) (*models.StoredRecord, error) {
	serial, err := parseSerial(id)
	if err != nil {
		return nil, err
	}
	return r.get(`id = ? AND user_id = ? AND dataset = ?`, serial, userID, dataset)
}

func (r *RecordRepository) get(where string, args ...any) (*models.StoredRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE ` + where + ` AND deleted_at IS NULL`

	rec, err := scanRecord(r.db.QueryRow(query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: record %v", shared.ErrNotFound, args[0])
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query record: %w", err)
	}
	return rec, nil
}

// Update replaces a record's payload. Owner and dataset must match the stored row.
func (r *RecordRepository) Update(rec *models.StoredRecord) error {
	payload, err := encodePayload(rec.Payload())
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	query := `
		UPDATE records
		SET payload = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND dataset = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, payload, now, rec.Serial(), rec.UserID(), rec.Dataset())
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}
	if err := expectAffected(result, "record", rec.ID()); err != nil {
		return err
	}
	rec.SetUpdatedAt(now)
	return nil
}

// Delete soft-deletes a record by id regardless of owner.
func (r *RecordRepository) Delete(id string) error {
	serial, err := parseSerial(id)
	if err != nil {
		return err
	}
	return r.delete(`id = ?`, serial)
}

// DeleteOwned soft-deletes a record only when userID owns it in dataset.
func (r *RecordRepository) DeleteOwned(userID, dataset, id string) error {
	serial, err := parseSerial(id)
	if err != nil {
		return err
	}
	return r.delete(`id = ? AND user_id = ? AND dataset = ?`, serial, userID, dataset)
}

func (r *RecordRepository) delete(where string, args ...any) error {
	query := `UPDATE records SET deleted_at = ? WHERE ` + where + ` AND deleted_at IS NULL`

	result, err := r.db.Exec(query, append([]any{time.Now().UTC()}, args...)...)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return expectAffected(result, "record", fmt.Sprint(args[0]))
}

// List retrieves records newest first, excluding soft-deleted rows.
//
// Supported criteria: "user_id", "dataset".
func (r *RecordRepository) List(criteria map[string]any) ([]*models.StoredRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE deleted_at IS NULL`
	args := []any{}

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}
	if dataset, ok := criteria["dataset"].(string); ok && dataset != "" {
		query += " AND dataset = ?"
		args = append(args, dataset)
	}

	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	records := []*models.StoredRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

func scanRecord(row scanner) (*models.StoredRecord, error) {
	var (
		id        int64
		userID    string
		dataset   string
		payload   string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	if err := row.Scan(&id, &userID, &dataset, &payload, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		return nil, fmt.Errorf("failed to decode payload of record %d: %w", id, err)
	}

	rec := models.NewStoredRecord(userID, dataset, fields)
	rec.SetSerial(id)
	rec.SetCreatedAt(createdAt)
	rec.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		rec.SetDeletedAt(&deletedAt.Time)
	}
	return rec, nil
}

func encodePayload(fields map[string]any) (string, error) {
	if fields == nil {
		return "{}", nil
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("%w: payload: %v", shared.ErrInvalidArgument, err)
	}
	return string(data), nil
}

func parseSerial(id string) (int64, error) {
	serial, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: record %s", shared.ErrNotFound, id)
	}
	return serial, nil
}
