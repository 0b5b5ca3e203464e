package syncer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/carekeep/internal/auth"
	"github.com/desertthunder/carekeep/internal/localstore"
	"github.com/desertthunder/carekeep/internal/models"
	"github.com/desertthunder/carekeep/internal/shared"
)

func TestComputeStats(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	records := []models.Location{
		{Label: "today", Added: now.Add(-time.Hour)},
		{Label: "six days", Added: now.Add(-6 * 24 * time.Hour)},
		{Label: "eight days", Added: now.Add(-8 * 24 * time.Hour)},
		{Label: "future", Added: now.Add(time.Hour)},
		{Label: "unknown"},
	}

	s := ComputeStats(records, now)
	if s.Total != 5 {
		t.Errorf("expected total 5, got %d", s.Total)
	}
	if s.AddedThisWeek != 2 {
		t.Errorf("expected 2 this week, got %d", s.AddedThisWeek)
	}
	if !s.Newest.Equal(now.Add(time.Hour)) {
		t.Errorf("unexpected newest %v", s.Newest)
	}

	if empty := ComputeStats([]models.Location{}, now); empty.Total != 0 || !empty.Newest.IsZero() {
		t.Errorf("unexpected empty stats: %+v", empty)
	}
}

func TestEvents(t *testing.T) {
	t.Run("Never block", func(t *testing.T) {
		events := make(chan Event)
		done := make(chan struct{})

		go func() {
			sendEvent(events, Event{Phase: PhaseLoading})
			sendEvent(nil, Event{Phase: PhaseLoading})
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("sendEvent blocked")
		}
	})

	t.Run("Phase names", func(t *testing.T) {
		if PhaseOffline.String() != "offline" || Phase(99).String() != "" {
			t.Error("unexpected phase names")
		}
		if ModeOnline.String() != "online" || ModeOffline.String() != "offline" {
			t.Error("unexpected mode names")
		}
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	store := localstore.New(localstore.NewMemoryBackend(0), "test", nil)

	for _, name := range models.Datasets {
		t.Run(name, func(t *testing.T) {
			fake := newFakeRemote()
			var rendered []models.Record

			h, err := Open(name, Options[models.Record]{
				Store:  store,
				Remote: fake,
				Auth:   auth.NewStatic("rose@example.com", "tok"),
				Render: func(rs []models.Record) { rendered = rs },
			})
			if err != nil {
				t.Fatalf("open failed: %v", err)
			}
			if h.Name() != name {
				t.Errorf("expected %s, got %s", name, h.Name())
			}

			if err := h.Load(ctx); err != nil {
				t.Fatalf("load failed: %v", err)
			}
			if len(h.Entries()) != 2 || len(rendered) != 2 {
				t.Errorf("expected 2 seeded entries, got %d rendered %d", len(h.Entries()), len(rendered))
			}

			first := h.Entries()[0]
			if _, ok := h.Find(first.ID()); !ok {
				t.Error("find should locate a cached entry")
			}
			if err := h.Delete(ctx, first.ID()); err != nil {
				t.Fatalf("delete failed: %v", err)
			}
			if h.Stats().Total != 1 {
				t.Errorf("expected 1 entry left, got %d", h.Stats().Total)
			}
		})
	}

	t.Run("CreateFields through a handle", func(t *testing.T) {
		h, err := Open(models.DatasetLocations, Options[models.Record]{
			Store:  localstore.New(localstore.NewMemoryBackend(0), "test", nil),
			Remote: newFakeRemote(),
			Auth:   auth.NewStatic("rose@example.com", "tok"),
		})
		if err != nil {
			t.Fatalf("open failed: %v", err)
		}

		rec, err := h.CreateFields(ctx, models.Fields{"label": "Park", "latitude": 40.1, "longitude": -73.2})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		loc, ok := rec.(models.Location)
		if !ok || loc.Label != "Park" || loc.Latitude != 40.1 {
			t.Errorf("unexpected record: %#v", rec)
		}

		if _, err := h.CreateFields(ctx, models.Fields{"latitude": "north"}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Unknown dataset", func(t *testing.T) {
		if _, err := Open("reports", Options[models.Record]{}); !errors.Is(err, shared.ErrUnknownDataset) {
			t.Errorf("expected ErrUnknownDataset, got %v", err)
		}
	})
}
