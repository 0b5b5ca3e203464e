package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/carekeep/internal/models"
	"github.com/desertthunder/carekeep/internal/shared"
	"github.com/desertthunder/carekeep/internal/syncer"
)

type fakeHandle struct {
	name    string
	records []models.Record
	mode    syncer.Mode
	loadErr error
	created models.Fields
	deleted string
}

func (h *fakeHandle) Name() string                      { return h.name }
func (h *fakeHandle) Load(context.Context) error        { return h.loadErr }
func (h *fakeHandle) Entries() []models.Record          { return h.records }
func (h *fakeHandle) Mode() syncer.Mode                 { return h.mode }
func (h *fakeHandle) Stats() syncer.Stats               { return syncer.Stats{Total: len(h.records)} }
func (h *fakeHandle) Find(string) (models.Record, bool) { return nil, false }

func (h *fakeHandle) CreateFields(_ context.Context, fields models.Fields) (models.Record, error) {
	h.created = fields
	rec := models.Journal{RecordID: "local-1", Body: fields["body"].(string), Added: time.Now()}
	h.records = append([]models.Record{rec}, h.records...)
	return rec, nil
}

func (h *fakeHandle) UpdateFields(context.Context, string, models.Fields) (models.Record, error) {
	return nil, shared.ErrNotImplemented
}

func (h *fakeHandle) Delete(_ context.Context, id string) error {
	h.deleted = id
	h.records = nil
	return nil
}

func newTestModel(h *fakeHandle) *Model {
	m := NewModel(context.Background(), h, Options{})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	return m
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// run executes cmd and feeds the resulting message back into the model.
func run(m *Model, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if msg, ok := cmd().(Msg); ok {
		m.Update(msg)
	}
}

func journalHandle() *fakeHandle {
	return &fakeHandle{
		name: models.DatasetJournals,
		mode: syncer.ModeOnline,
		records: []models.Record{
			models.Journal{RecordID: "1", Heading: "A good morning", Body: "Birds", Added: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
			models.Journal{RecordID: "local-2", Heading: "Draft", Body: "Offline note"},
		},
	}
}

func TestModel(t *testing.T) {
	t.Run("Load populates the list", func(t *testing.T) {
		m := newTestModel(journalHandle())
		m.Update(loadedMsg(nil))

		if got := len(m.records.Items()); got != 2 {
			t.Fatalf("expected 2 items, got %d", got)
		}
		view := m.View()
		if !strings.Contains(view, "online") {
			t.Errorf("expected online indicator, got:\n%s", view)
		}
		if !strings.Contains(view, "2 total") {
			t.Errorf("expected summary, got:\n%s", view)
		}
	})

	t.Run("Offline banner", func(t *testing.T) {
		h := journalHandle()
		h.mode = syncer.ModeOffline
		m := newTestModel(h)
		m.Update(loadedMsg(nil))

		if !strings.Contains(m.View(), "OFFLINE") {
			t.Errorf("expected offline banner, got:\n%s", m.View())
		}
	})

	t.Run("Missing session quits", func(t *testing.T) {
		h := journalHandle()
		m := newTestModel(h)
		_, cmd := m.Update(loadedMsg(shared.ErrAuthMissing))

		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
		if !strings.Contains(m.View(), "carekeep auth login") {
			t.Errorf("expected login hint, got:\n%s", m.View())
		}
	})

	t.Run("Storage problem is shown", func(t *testing.T) {
		m := newTestModel(journalHandle())
		m.Update(loadedMsg(errors.Join(shared.ErrLocalStorage, errors.New("disk full"))))

		if !strings.Contains(m.View(), "disk full") {
			t.Errorf("expected storage status, got:\n%s", m.View())
		}
	})

	t.Run("Warning events update the status", func(t *testing.T) {
		m := newTestModel(journalHandle())
		m.Update(eventMsg(syncer.Event{Phase: syncer.PhaseOffline, Message: "working offline"}))
		m.Update(eventMsg(syncer.Event{Phase: syncer.PhaseLoaded, Message: "ignored"}))

		if m.status != "working offline" {
			t.Errorf("expected offline status, got %q", m.status)
		}
	})

	t.Run("Store change marks the view stale", func(t *testing.T) {
		m := newTestModel(journalHandle())
		m.Update(storeChangedMsg())

		if !strings.Contains(m.View(), "Press r to reload") {
			t.Errorf("expected reload hint, got:\n%s", m.View())
		}

		_, cmd := m.Update(keyPress("r"))
		run(m, cmd)
		if m.stale {
			t.Error("expected reload to clear the stale flag")
		}
	})

	t.Run("Quick add", func(t *testing.T) {
		h := journalHandle()
		m := newTestModel(h)
		m.Update(loadedMsg(nil))

		m.Update(keyPress("a"))
		if m.view != AddView {
			t.Fatalf("expected add view, got %v", m.view)
		}
		for _, r := range "Walked to the park" {
			m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		}
		_, cmd := m.Update(keyPress("enter"))
		run(m, cmd)

		if h.created["body"] != "Walked to the park" {
			t.Errorf("expected body field, got %v", h.created)
		}
		if m.view != RecordListView {
			t.Errorf("expected list view after add, got %v", m.view)
		}
		if got := len(m.records.Items()); got != 3 {
			t.Errorf("expected 3 items, got %d", got)
		}
	})

	t.Run("Delete asks for confirmation", func(t *testing.T) {
		h := journalHandle()
		m := newTestModel(h)
		m.Update(loadedMsg(nil))

		m.Update(keyPress("d"))
		if m.view != ConfirmDeleteView {
			t.Fatalf("expected confirm view, got %v", m.view)
		}
		m.Update(keyPress("n"))
		if m.view != RecordListView || h.deleted != "" {
			t.Fatalf("expected cancel to keep the record, deleted=%q", h.deleted)
		}

		m.Update(keyPress("d"))
		_, cmd := m.Update(keyPress("y"))
		run(m, cmd)
		if h.deleted != "1" {
			t.Errorf("expected record 1 deleted, got %q", h.deleted)
		}
		if len(m.records.Items()) != 0 {
			t.Errorf("expected empty list, got %d", len(m.records.Items()))
		}
	})

	t.Run("Detail view", func(t *testing.T) {
		m := newTestModel(journalHandle())
		m.Update(loadedMsg(nil))

		m.Update(keyPress("enter"))
		if m.view != DetailView {
			t.Fatalf("expected detail view, got %v", m.view)
		}
		if !strings.Contains(m.View(), "Birds") {
			t.Errorf("expected record fields, got:\n%s", m.View())
		}
		m.Update(keyPress("esc"))
		if m.view != RecordListView {
			t.Errorf("expected list view, got %v", m.view)
		}
	})
}

func TestRecordItem(t *testing.T) {
	local := recordItem{record: models.Journal{RecordID: "local-9", Body: "note"}}
	if !strings.Contains(local.Description(), "local only") {
		t.Errorf("expected local marker, got %q", local.Description())
	}
	if !strings.Contains(local.Description(), "undated") {
		t.Errorf("expected undated marker, got %q", local.Description())
	}

	synced := recordItem{record: models.Journal{RecordID: "4", Heading: "Hi", Added: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)}}
	if strings.Contains(synced.Description(), "local only") {
		t.Errorf("unexpected local marker, got %q", synced.Description())
	}
	if synced.Title() != "Hi" {
		t.Errorf("expected title Hi, got %q", synced.Title())
	}
}
