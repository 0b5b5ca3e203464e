package syncer

import (
	"context"

	"github.com/desertthunder/carekeep/internal/models"
)

// Handle is the dataset-agnostic view of a [Collection] used by the CLI and TUI.
type Handle interface {
	Name() string
	Load(ctx context.Context) error
	CreateFields(ctx context.Context, fields models.Fields) (models.Record, error)
	UpdateFields(ctx context.Context, id string, fields models.Fields) (models.Record, error)
	Delete(ctx context.Context, id string) error
	Find(id string) (models.Record, bool)
	Entries() []models.Record
	Mode() Mode
	Stats() Stats
}

type handle[T models.Entity[T]] struct {
	*Collection[T]
}

// AsHandle wraps c as a [Handle].
func AsHandle[T models.Entity[T]](c *Collection[T]) Handle {
	return handle[T]{c}
}

func (h handle[T]) CreateFields(ctx context.Context, fields models.Fields) (models.Record, error) {
	rec, err := h.Collection.CreateFields(ctx, fields)
	if err != nil && rec.ID() == "" {
		return nil, err
	}
	return rec, err
}

func (h handle[T]) UpdateFields(ctx context.Context, id string, fields models.Fields) (models.Record, error) {
	rec, err := h.Collection.UpdateFields(ctx, id, fields)
	if err != nil && rec.ID() == "" {
		return nil, err
	}
	return rec, err
}

func (h handle[T]) Find(id string) (models.Record, bool) {
	rec, ok := h.Collection.Find(id)
	if !ok {
		return nil, false
	}
	return rec, true
}
