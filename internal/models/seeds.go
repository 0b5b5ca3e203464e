package models

import (
	"bytes"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed seeds.yaml
var seedData []byte

// Seeds holds the default records per dataset.
type Seeds struct {
	Memories  []Memory   `yaml:"memories"`
	Journals  []Journal  `yaml:"journals"`
	Reminders []Reminder `yaml:"reminders"`
	Locations []Location `yaml:"locations"`
}

// LoadSeeds decodes the embedded seed fixtures.
func LoadSeeds() (*Seeds, error) {
	return ParseSeeds(seedData)
}

// ParseSeeds decodes seed fixtures from YAML, rejecting unknown keys.
func ParseSeeds(data []byte) (*Seeds, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Seeds
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode seeds: %w", err)
	}
	return &s, nil
}

// MustLoadSeeds is [LoadSeeds] for package initialisation; the embedded file is part of the binary.
func MustLoadSeeds() *Seeds {
	s, err := LoadSeeds()
	if err != nil {
		panic(err)
	}
	return s
}
