package models

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Location is a saved place.
type Location struct {
	RecordID  string    `json:"id" yaml:"id,omitempty"`
	Label     string    `json:"label" yaml:"label"`
	Latitude  float64   `json:"latitude" yaml:"latitude"`
	Longitude float64   `json:"longitude" yaml:"longitude"`
	Note      string    `json:"note" yaml:"note"`
	Added     time.Time `json:"created_at" yaml:"created_at,omitempty"`
}

func (l Location) ID() string           { return l.RecordID }
func (l Location) CreatedAt() time.Time { return l.Added }
func (l Location) Title() string        { return l.Label }

func (l Location) Description() string {
	coords := fmt.Sprintf("%.4f, %.4f", l.Latitude, l.Longitude)
	if l.Note == "" {
		return coords
	}
	return coords + " · " + truncate(l.Note, 40)
}

// MapURL links to the place on OpenStreetMap.
func (l Location) MapURL() string {
	lat := strconv.FormatFloat(l.Latitude, 'f', -1, 64)
	lon := strconv.FormatFloat(l.Longitude, 'f', -1, 64)
	q := url.Values{"mlat": {lat}, "mlon": {lon}}
	return "https://www.openstreetmap.org/?" + q.Encode() + "#map=17/" + lat + "/" + lon
}

func (l Location) WithIdentity(id string, at time.Time) Location {
	l.RecordID = id
	l.Added = at
	return l
}
