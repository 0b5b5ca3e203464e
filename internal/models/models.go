package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Dataset names understood by the sync layer and the reference collaborator.
const (
	DatasetMemories  = "memories"
	DatasetJournals  = "journals"
	DatasetReminders = "reminders"
	DatasetLocations = "locations"
)

// Datasets lists every known dataset in display order.
var Datasets = []string{DatasetMemories, DatasetJournals, DatasetReminders, DatasetLocations}

// IsDataset reports whether name is one of [Datasets].
func IsDataset(name string) bool {
	for _, d := range Datasets {
		if d == name {
			return true
		}
	}
	return false
}

// Model defines the base interface for all persistent models held by the reference collaborator.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Record is the dataset-agnostic view of a cached record.
type Record interface {
	ID() string
	CreatedAt() time.Time
	Title() string
	Description() string
}

// Entity is the constraint satisfied by every dataset record type T.
//
// WithIdentity returns a copy of the record carrying id and creation time, used both for
// records minted on this device and for values assigned by the collaborator.
type Entity[T any] interface {
	Record
	WithIdentity(id string, at time.Time) T
}

// Fields is the local shape of a record as a JSON object.
type Fields map[string]any

// ToFields converts v into its local JSON shape.
func ToFields(v any) (Fields, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}

	var fields Fields
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode record fields: %w", err)
	}
	return fields, nil
}

// FromFields builds a T from its local JSON shape. Unknown fields are ignored.
func FromFields[T any](fields Fields) (T, error) {
	var v T
	data, err := json.Marshal(fields)
	if err != nil {
		return v, fmt.Errorf("failed to encode fields: %w", err)
	}

	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("failed to decode record: %w", err)
	}
	return v, nil
}

// Merge returns a copy of base with every key in patch applied on top.
func (f Fields) Merge(patch Fields) Fields {
	out := make(Fields, len(f)+len(patch))
	for k, v := range f {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
