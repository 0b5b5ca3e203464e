package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/carekeep/internal/models"
	"github.com/desertthunder/carekeep/internal/shared"
)

var _ list.Item = recordItem{}

// recordItem wraps [models.Record] to implement [list.Item].
type recordItem struct {
	record models.Record
}

func (i recordItem) FilterValue() string { return i.record.Title() }
func (i recordItem) Title() string       { return i.record.Title() }
func (i recordItem) Description() string {
	desc := i.record.CreatedAt().Format("Jan 2, 2006")
	if i.record.CreatedAt().IsZero() {
		desc = "undated"
	}
	if d := i.record.Description(); d != "" {
		desc = fmt.Sprintf("%s • %s", desc, d)
	}
	if shared.IsLocalID(i.record.ID()) {
		desc += " • local only"
	}
	return desc
}

func toItems(records []models.Record) []list.Item {
	items := make([]list.Item, len(records))
	for i, r := range records {
		items[i] = recordItem{record: r}
	}
	return items
}

// primaryField is the field filled by the quick-add prompt of each dataset.
var primaryField = map[string]string{
	models.DatasetMemories:  "name",
	models.DatasetJournals:  "body",
	models.DatasetReminders: "title",
	models.DatasetLocations: "label",
}
