package syncer

import (
	"fmt"
	"sync"

	"github.com/desertthunder/carekeep/internal/models"
	"github.com/desertthunder/carekeep/internal/remote"
	"github.com/desertthunder/carekeep/internal/shared"
)

// Field mappings between the local shape of each dataset and the collaborator's columns.
var (
	MemoryMapping = remote.Mapping{
		{Local: "id", Wire: "id"},
		{Local: "name", Wire: "title"},
		{Local: "relationship", Wire: "relationship"},
		{Local: "notes", Wire: "description"},
		{Local: "photo", Wire: "image_url"},
		{Local: "audio", Wire: "audio_url"},
		{Local: "created_at", Wire: "created_at"},
	}

	JournalMapping = remote.Mapping{
		{Local: "id", Wire: "id"},
		{Local: "title", Wire: "title"},
		{Local: "body", Wire: "content"},
		{Local: "mood", Wire: "mood"},
		{Local: "created_at", Wire: "created_at"},
	}

	ReminderMapping = remote.Mapping{
		{Local: "id", Wire: "id"},
		{Local: "title", Wire: "title"},
		{Local: "due_at", Wire: "remind_at"},
		{Local: "repeat", Wire: "frequency"},
		{Local: "done", Wire: "completed"},
		{Local: "created_at", Wire: "created_at"},
	}

	LocationMapping = remote.Mapping{
		{Local: "id", Wire: "id"},
		{Local: "label", Wire: "name"},
		{Local: "latitude", Wire: "lat"},
		{Local: "longitude", Wire: "lng"},
		{Local: "note", Wire: "notes"},
		{Local: "created_at", Wire: "created_at"},
	}
)

var seeds = sync.OnceValue(models.MustLoadSeeds)

// Memories configures the memory vault.
func Memories() Dataset[models.Memory] {
	return Dataset[models.Memory]{Name: models.DatasetMemories, Path: "/memories", Mapping: MemoryMapping, Defaults: seeds().Memories}
}

// Journals configures the journal.
func Journals() Dataset[models.Journal] {
	return Dataset[models.Journal]{Name: models.DatasetJournals, Path: "/journals", Mapping: JournalMapping, Defaults: seeds().Journals}
}

// Reminders configures reminders.
func Reminders() Dataset[models.Reminder] {
	return Dataset[models.Reminder]{Name: models.DatasetReminders, Path: "/reminders", Mapping: ReminderMapping, Defaults: seeds().Reminders}
}

// Locations configures saved places.
func Locations() Dataset[models.Location] {
	return Dataset[models.Location]{Name: models.DatasetLocations, Path: "/locations", Mapping: LocationMapping, Defaults: seeds().Locations}
}

// Open creates the [Handle] for the dataset called name. Its renderer receives dataset-agnostic
// records.
func Open(name string, opts Options[models.Record]) (Handle, error) {
	switch name {
	case models.DatasetMemories:
		return AsHandle(New(Memories(), adapt[models.Memory](opts))), nil
	case models.DatasetJournals:
		return AsHandle(New(Journals(), adapt[models.Journal](opts))), nil
	case models.DatasetReminders:
		return AsHandle(New(Reminders(), adapt[models.Reminder](opts))), nil
	case models.DatasetLocations:
		return AsHandle(New(Locations(), adapt[models.Location](opts))), nil
	default:
		return nil, fmt.Errorf("%w: %q", shared.ErrUnknownDataset, name)
	}
}

func adapt[T models.Entity[T]](opts Options[models.Record]) Options[T] {
	out := Options[T]{
		Store:  opts.Store,
		Remote: opts.Remote,
		Auth:   opts.Auth,
		Logger: opts.Logger,
		Events: opts.Events,
		Now:    opts.Now,
	}
	if opts.Render != nil {
		out.Render = func(records []T) {
			entries := make([]models.Record, len(records))
			for i, r := range records {
				entries[i] = r
			}
			opts.Render(entries)
		}
	}
	return out
}
