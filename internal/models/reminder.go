package models

import (
	"strings"
	"time"
)

// Reminder is a due task, optionally repeating.
type Reminder struct {
	RecordID string    `json:"id" yaml:"id,omitempty"`
	Label    string    `json:"title" yaml:"title"`
	DueAt    time.Time `json:"due_at" yaml:"due_at"`
	Repeat   string    `json:"repeat" yaml:"repeat"`
	Done     bool      `json:"done" yaml:"done"`
	Added    time.Time `json:"created_at" yaml:"created_at,omitempty"`
}

func (r Reminder) ID() string           { return r.RecordID }
func (r Reminder) CreatedAt() time.Time { return r.Added }
func (r Reminder) Title() string        { return r.Label }

func (r Reminder) Description() string {
	var parts []string
	if !r.DueAt.IsZero() {
		parts = append(parts, "due "+r.DueAt.Format("Jan 2 15:04"))
	}
	if r.Repeat != "" {
		parts = append(parts, r.Repeat)
	}
	if r.Done {
		parts = append(parts, "done")
	}
	return strings.Join(parts, " · ")
}

func (r Reminder) WithIdentity(id string, at time.Time) Reminder {
	r.RecordID = id
	r.Added = at
	return r
}
