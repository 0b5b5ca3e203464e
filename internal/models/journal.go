package models

import "time"

// Journal is a free-text journal entry.
type Journal struct {
	RecordID string    `json:"id" yaml:"id,omitempty"`
	Heading  string    `json:"title" yaml:"title"`
	Body     string    `json:"body" yaml:"body"`
	Mood     string    `json:"mood" yaml:"mood"`
	Added    time.Time `json:"created_at" yaml:"created_at,omitempty"`
}

func (j Journal) ID() string           { return j.RecordID }
func (j Journal) CreatedAt() time.Time { return j.Added }

func (j Journal) Title() string {
	if j.Heading == "" {
		return truncate(j.Body, 40)
	}
	return j.Heading
}

func (j Journal) Description() string {
	if j.Mood == "" {
		return truncate(j.Body, 60)
	}
	return "[" + j.Mood + "] " + truncate(j.Body, 52)
}

func (j Journal) WithIdentity(id string, at time.Time) Journal {
	j.RecordID = id
	j.Added = at
	return j
}
