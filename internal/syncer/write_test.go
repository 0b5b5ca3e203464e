package syncer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/desertthunder/carekeep/internal/localstore"
	"github.com/desertthunder/carekeep/internal/models"
	"github.com/desertthunder/carekeep/internal/remote"
	"github.com/desertthunder/carekeep/internal/shared"
)

// loaded returns a harness whose cache already holds the given records, loaded while offline.
func loaded(t *testing.T, records ...models.Journal) *harness {
	t.Helper()

	h := newHarness(t, harnessOpts{})
	if err := h.store.Set(models.DatasetJournals, records); err != nil {
		t.Fatalf("failed to seed local store: %v", err)
	}
	if err := h.store.Set(Journals().SeededKey(), true); err != nil {
		t.Fatalf("failed to set seed flag: %v", err)
	}

	h.fake.setDown(true)
	if err := h.c.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	h.fake.setDown(false)
	h.phases()
	return h
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("Success writes through", func(t *testing.T) {
		h := loaded(t)
		before := h.renderCount()

		saved, err := h.c.Create(ctx, models.Journal{Heading: "Walk", Body: "Around the park"})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if saved.ID() != "101" {
			t.Errorf("expected server id 101, got %s", saved.ID())
		}

		if _, ok := h.c.Find("101"); !ok {
			t.Error("cache should contain the server id")
		}
		if got := ids(h.local()); len(got) != 1 || got[0] != "101" {
			t.Errorf("local store should contain the server id, got %v", got)
		}
		if wire := h.fake.stored("/journals"); wire[0]["content"] != "Around the park" {
			t.Errorf("body should be sent as content, got %v", wire[0])
		}
		if h.c.Mode() != ModeOnline {
			t.Errorf("expected online, got %s", h.c.Mode())
		}
		if h.renderCount() != before+1 {
			t.Errorf("expected one render, got %d", h.renderCount()-before)
		}
	})

	t.Run("Unavailable keeps a local record", func(t *testing.T) {
		h := loaded(t)
		h.fake.setDown(true)

		saved, err := h.c.Create(ctx, models.Journal{Heading: "Offline"})
		if err != nil {
			t.Fatalf("create should not surface remote failures: %v", err)
		}
		if !shared.IsLocalID(saved.ID()) {
			t.Errorf("expected local id, got %s", saved.ID())
		}
		if !saved.CreatedAt().Equal(testNow) {
			t.Errorf("expected current time, got %v", saved.CreatedAt())
		}
		if got := ids(h.local()); len(got) != 1 || got[0] != saved.ID() {
			t.Errorf("local store should hold the local record, got %v", got)
		}
		if h.c.Mode() != ModeOffline {
			t.Errorf("expected offline, got %s", h.c.Mode())
		}
		if !strings.Contains(h.logs.String(), "kept locally") {
			t.Errorf("expected a warning in logs, got %q", h.logs.String())
		}
	})

	t.Run("Flapping remote", func(t *testing.T) {
		h := loaded(t)
		h.fake.failCreates = 1

		first, err := h.c.Create(ctx, models.Journal{Heading: "first"})
		if err != nil {
			t.Fatalf("first create failed: %v", err)
		}
		second, err := h.c.Create(ctx, models.Journal{Heading: "second"})
		if err != nil {
			t.Fatalf("second create failed: %v", err)
		}

		if !shared.IsLocalID(first.ID()) {
			t.Errorf("first should have a local id, got %s", first.ID())
		}
		if shared.IsLocalID(second.ID()) {
			t.Errorf("second should have a server id, got %s", second.ID())
		}

		want := []string{second.ID(), first.ID()}
		if diff := cmp.Diff(want, ids(h.c.Records())); diff != "" {
			t.Errorf("cache order (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(want, ids(h.local())); diff != "" {
			t.Errorf("local order (-want +got):\n%s", diff)
		}
	})

	t.Run("Local storage failure keeps the cache", func(t *testing.T) {
		h := newHarness(t, harnessOpts{backend: localstore.NewMemoryBackend(16)})

		saved, err := h.c.Create(ctx, models.Journal{Heading: "x"})
		if !errors.Is(err, shared.ErrLocalStorage) {
			t.Fatalf("expected ErrLocalStorage, got %v", err)
		}
		if _, ok := h.c.Find(saved.ID()); !ok {
			t.Error("cache should still hold the record")
		}
	})

	t.Run("Double submit is not de-duplicated", func(t *testing.T) {
		h := loaded(t)

		var wg sync.WaitGroup
		for range 2 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := h.c.Create(ctx, models.Journal{Heading: "same"}); err != nil {
					t.Errorf("create failed: %v", err)
				}
			}()
		}
		wg.Wait()

		if got := len(h.c.Records()); got != 2 {
			t.Errorf("expected both submissions to be kept, got %d", got)
		}
	})

	t.Run("Offline records are never pushed", func(t *testing.T) {
		h := loaded(t)
		h.fake.setDown(true)

		local, err := h.c.Create(ctx, models.Journal{Heading: "written offline"})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}

		h.fake.setDown(false)
		h.fake.put("/journals", remote.WireRecord{"id": 7, "title": "server", "created_at": "2025-03-01T09:00:00Z"})
		posts := h.fake.count("POST")

		if err := h.c.Load(ctx); err != nil {
			t.Fatalf("load failed: %v", err)
		}

		if h.fake.count("POST") != posts {
			t.Error("reconnecting should not push offline records")
		}
		for _, w := range h.fake.stored("/journals") {
			if w["title"] == "written offline" {
				t.Error("offline record should never reach the server")
			}
		}
		if _, ok := h.c.Find(local.ID()); ok {
			t.Error("successful load should replace the cache with remote records")
		}
		if diff := cmp.Diff([]string{"7"}, ids(h.c.Records())); diff != "" {
			t.Errorf("cache should equal remote truth (-want +got):\n%s", diff)
		}
	})

	t.Run("Requires a session", func(t *testing.T) {
		h := loaded(t)
		h.c.auth = nil

		if _, err := h.c.Create(ctx, models.Journal{}); !errors.Is(err, shared.ErrAuthMissing) {
			t.Errorf("expected ErrAuthMissing, got %v", err)
		}
		if h.fake.count("POST") != 0 {
			t.Error("no remote call should be attempted")
		}
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)

	t.Run("Success replaces the cached record", func(t *testing.T) {
		h := loaded(t, models.Journal{RecordID: "42", Heading: "old", Added: created})
		h.fake.put("/journals", remote.WireRecord{"id": 42, "title": "old", "created_at": created.Format(time.RFC3339)})

		saved, err := h.c.Update(ctx, models.Journal{RecordID: "42", Heading: "new", Mood: "calm"})
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if saved.Heading != "new" || !saved.Added.Equal(created) {
			t.Errorf("unexpected saved record: %+v", saved)
		}

		got, _ := h.c.Find("42")
		if got.Heading != "new" || got.Mood != "calm" {
			t.Errorf("cache not updated: %+v", got)
		}
		if local := h.local(); local[0].Heading != "new" {
			t.Errorf("local store not updated: %+v", local)
		}
		if h.c.Mode() != ModeOnline {
			t.Errorf("expected online, got %s", h.c.Mode())
		}
	})

	t.Run("Not found keeps the cache unchanged", func(t *testing.T) {
		prior := models.Journal{RecordID: "42", Heading: "prior", Added: created}
		h := loaded(t, prior)

		got, err := h.c.Update(ctx, models.Journal{RecordID: "42", Heading: "edited"})
		if err != nil {
			t.Fatalf("not found should not surface as an error: %v", err)
		}
		if diff := cmp.Diff(prior, got); diff != "" {
			t.Errorf("returned record should be the prior one (-want +got):\n%s", diff)
		}

		cached, _ := h.c.Find("42")
		if diff := cmp.Diff(prior, cached); diff != "" {
			t.Errorf("cache changed (-want +got):\n%s", diff)
		}
		if !strings.Contains(h.logs.String(), "record missing on remote") {
			t.Errorf("expected a log entry, got %q", h.logs.String())
		}
		if !containsPhase(h.phases(), PhaseWarning) {
			t.Error("expected a warning event")
		}
	})

	t.Run("Unavailable applies locally", func(t *testing.T) {
		h := loaded(t, models.Journal{RecordID: "42", Heading: "old", Added: created})
		h.fake.setDown(true)

		saved, err := h.c.Update(ctx, models.Journal{RecordID: "42", Heading: "local edit"})
		if err != nil {
			t.Fatalf("update should not surface remote failures: %v", err)
		}
		if saved.Heading != "local edit" || !saved.Added.Equal(created) {
			t.Errorf("unexpected saved record: %+v", saved)
		}
		if local := h.local(); local[0].Heading != "local edit" {
			t.Errorf("local store not updated: %+v", local)
		}
		if h.c.Mode() != ModeOffline {
			t.Errorf("expected offline, got %s", h.c.Mode())
		}
	})

	t.Run("Uncached record", func(t *testing.T) {
		h := loaded(t)
		if _, err := h.c.Update(ctx, models.Journal{RecordID: "nope"}); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if h.fake.count("PUT") != 0 {
			t.Error("no remote call should be attempted")
		}
	})

	t.Run("UpdateFields merges", func(t *testing.T) {
		h := loaded(t, models.Journal{RecordID: "42", Heading: "keep", Body: "old", Added: created})
		h.fake.setDown(true)

		saved, err := h.c.UpdateFields(ctx, "42", models.Fields{"body": "new"})
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if saved.Heading != "keep" || saved.Body != "new" || saved.ID() != "42" {
			t.Errorf("unexpected merge: %+v", saved)
		}
	})

	t.Run("UpdateFields rejects bad values", func(t *testing.T) {
		h := loaded(t, models.Journal{RecordID: "42"})
		if _, err := h.c.UpdateFields(ctx, "42", models.Fields{"body": 12}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		onRemote bool
		down     bool
		mode     Mode
	}{
		{"success", true, false, ModeOnline},
		{"not found", false, false, ModeOnline},
		{"unavailable", true, true, ModeOffline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := loaded(t, models.Journal{RecordID: "5"}, models.Journal{RecordID: "6"})
			if tt.onRemote {
				h.fake.put("/journals", remote.WireRecord{"id": 5})
			}
			h.fake.setDown(tt.down)

			if err := h.c.Delete(ctx, "5"); err != nil {
				t.Fatalf("delete should not surface remote failures: %v", err)
			}

			if _, ok := h.c.Find("5"); ok {
				t.Error("record should be removed from the cache")
			}
			if diff := cmp.Diff([]string{"6"}, ids(h.local())); diff != "" {
				t.Errorf("record should be removed from the local store (-want +got):\n%s", diff)
			}
			if h.c.Mode() != tt.mode {
				t.Errorf("expected %s, got %s", tt.mode, h.c.Mode())
			}
			if h.c.Stats().Total != 1 {
				t.Errorf("stats should be recomputed, got %+v", h.c.Stats())
			}
		})
	}
}
