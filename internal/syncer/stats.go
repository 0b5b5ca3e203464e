package syncer

import (
	"time"

	"github.com/desertthunder/carekeep/internal/models"
)

// Week is the window counted by [Stats.AddedThisWeek].
const Week = 7 * 24 * time.Hour

// Stats are derived from the cache, so they include records that only exist locally.
type Stats struct {
	Total         int       `json:"total"`
	AddedThisWeek int       `json:"added_this_week"`
	Newest        time.Time `json:"newest"`
}

// ComputeStats summarises records relative to now.
func ComputeStats[T models.Record](records []T, now time.Time) Stats {
	s := Stats{Total: len(records)}
	cutoff := now.Add(-Week)

	for _, r := range records {
		at := r.CreatedAt()
		if at.IsZero() {
			continue
		}
		if at.After(cutoff) && !at.After(now) {
			s.AddedThisWeek++
		}
		if at.After(s.Newest) {
			s.Newest = at
		}
	}
	return s
}
