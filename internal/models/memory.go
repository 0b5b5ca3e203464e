package models

import (
	"fmt"
	"time"
)

// Memory is a person in the memory vault with an optional photo and audio clip.
type Memory struct {
	RecordID     string    `json:"id" yaml:"id,omitempty"`
	Name         string    `json:"name" yaml:"name"`
	Relationship string    `json:"relationship" yaml:"relationship"`
	Notes        string    `json:"notes" yaml:"notes"`
	Photo        string    `json:"photo" yaml:"photo"`
	Audio        string    `json:"audio" yaml:"audio"`
	Added        time.Time `json:"created_at" yaml:"created_at,omitempty"`
}

func (m Memory) ID() string           { return m.RecordID }
func (m Memory) CreatedAt() time.Time { return m.Added }
func (m Memory) Title() string        { return m.Name }

func (m Memory) Description() string {
	if m.Relationship == "" {
		return truncate(m.Notes, 60)
	}
	if m.Notes == "" {
		return m.Relationship
	}
	return fmt.Sprintf("%s · %s", m.Relationship, truncate(m.Notes, 48))
}

func (m Memory) WithIdentity(id string, at time.Time) Memory {
	m.RecordID = id
	m.Added = at
	return m
}
