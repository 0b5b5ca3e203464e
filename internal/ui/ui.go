package ui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/carekeep/internal/models"
	"github.com/desertthunder/carekeep/internal/shared"
	"github.com/desertthunder/carekeep/internal/syncer"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	RecordListView ViewState = iota
	DetailView
	AddView
	ConfirmDeleteView
)

// Options carries the channels the TUI listens on besides the keyboard.
type Options struct {
	Events  <-chan syncer.Event // Collection events, usually the channel given to the collection
	Changes <-chan struct{}     // Signals that another process wrote the local store
}

// Model represents the TUI application state for one dataset.
type Model struct {
	ctx      context.Context
	view     ViewState
	handle   syncer.Handle
	events   <-chan syncer.Event
	changes  <-chan struct{}
	width    int
	height   int
	records  list.Model
	selected models.Record
	input    textinput.Model
	status   string
	stale    bool
	loading  bool
	err      error
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model over a dataset handle.
func NewModel(ctx context.Context, h syncer.Handle, opts Options) *Model {
	input := textinput.New()
	input.Placeholder = primaryField[h.Name()]
	input.CharLimit = 280

	records := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	records.Title = titleFor(h.Name())
	records.SetShowHelp(false)

	return &Model{
		ctx:     ctx,
		view:    RecordListView,
		handle:  h,
		events:  opts.Events,
		changes: opts.Changes,
		records: records,
		input:   input,
		loading: true,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init loads the dataset and starts listening for events and store changes.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.waitForEvent(), m.waitForChange())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.records.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case RecordListView:
			return m.handleListKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case AddView:
			return m.handleAddKeys(msg)
		case ConfirmDeleteView:
			return m.handleConfirmKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	var cmd tea.Cmd
	m.records, cmd = m.records.Update(msg)
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgLoaded:
		m.loading = false
		m.stale = false
		if err := asError(msg.data); err != nil {
			if errors.Is(err, shared.ErrAuthMissing) {
				m.err = err
				return m, tea.Quit
			}
			m.status = fmt.Sprintf("local storage problem: %v", err)
		}
		return m, m.refresh()

	case MsgCreated:
		res, _ := msg.data.(result)
		if res.err != nil && res.record == nil {
			m.status = fmt.Sprintf("could not add: %v", res.err)
		} else if res.err != nil {
			m.status = fmt.Sprintf("added, but saving on this device failed: %v", res.err)
		}
		m.view = RecordListView
		return m, m.refresh()

	case MsgDeleted:
		if err := asError(msg.data); err != nil {
			m.status = fmt.Sprintf("delete not saved on this device: %v", err)
		}
		m.selected = nil
		m.view = RecordListView
		return m, m.refresh()

	case MsgEvent:
		if e, ok := msg.data.(syncer.Event); ok {
			switch e.Phase {
			case syncer.PhaseOffline, syncer.PhaseWarning, syncer.PhaseSeeded:
				m.status = e.Message
			}
		}
		return m, m.waitForEvent()

	case MsgStoreChanged:
		m.stale = true
		return m, m.waitForChange()
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nRun `carekeep auth login`, then try again.", m.err))
	}

	var b strings.Builder
	b.WriteString(m.renderBanner())

	switch m.view {
	case RecordListView:
		b.WriteString(m.renderList())
	case DetailView:
		b.WriteString(m.renderDetail())
	case AddView:
		b.WriteString(m.renderAdd())
	case ConfirmDeleteView:
		b.WriteString(m.renderConfirm())
	}
	return b.String()
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.records.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.records, cmd = m.records.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.records.SelectedItem().(recordItem); ok {
			m.selected = item.record
			m.view = DetailView
		}
		return m, nil
	case key.Matches(msg, m.keys.add):
		m.input.SetValue("")
		m.view = AddView
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.remove):
		if item, ok := m.records.SelectedItem().(recordItem); ok {
			m.selected = item.record
			m.view = ConfirmDeleteView
		}
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.loading = true
		m.status = ""
		return m, m.load()
	}

	var cmd tea.Cmd
	m.records, cmd = m.records.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = RecordListView
	case key.Matches(msg, m.keys.remove):
		m.view = ConfirmDeleteView
	}
	return m, nil
}

func (m *Model) handleAddKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.input.Blur()
		m.view = RecordListView
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		m.input.Blur()
		if value == "" {
			m.view = RecordListView
			return m, nil
		}
		return m, m.create(value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		if m.selected == nil {
			m.view = RecordListView
			return m, nil
		}
		return m, m.remove(m.selected.ID())
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.view = RecordListView
	}
	return m, nil
}

func (m *Model) refresh() tea.Cmd {
	return m.records.SetItems(toItems(m.handle.Entries()))
}

func (m *Model) load() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg(m.handle.Load(m.ctx))
	}
}

func (m *Model) create(value string) tea.Cmd {
	fields := models.Fields{primaryField[m.handle.Name()]: value}
	return func() tea.Msg {
		return createdMsg(m.handle.CreateFields(m.ctx, fields))
	}
}

func (m *Model) remove(id string) tea.Cmd {
	return func() tea.Msg {
		return deletedMsg(m.handle.Delete(m.ctx, id))
	}
}

func (m *Model) waitForEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case e, ok := <-m.events:
			if !ok {
				return nil
			}
			return eventMsg(e)
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) waitForChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case _, ok := <-m.changes:
			if !ok {
				return nil
			}
			return storeChangedMsg()
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) renderBanner() string {
	var lines []string
	switch {
	case m.loading:
		lines = append(lines, styles.help.Render("Loading..."))
	case m.handle.Mode() == syncer.ModeOffline:
		lines = append(lines, styles.banner.Render("OFFLINE")+" "+styles.warn.Render("showing saved data; changes stay on this device"))
	default:
		lines = append(lines, styles.ok.Render("● online"))
	}
	if m.stale {
		lines = append(lines, styles.warn.Render("Data changed in another window. Press r to reload."))
	}
	if m.status != "" {
		lines = append(lines, styles.warn.Render(m.status))
	}
	return strings.Join(lines, "\n") + "\n\n"
}

func (m *Model) renderList() string {
	s := m.handle.Stats()
	summary := styles.help.Render(fmt.Sprintf("%d total • %d added this week", s.Total, s.AddedThisWeek))
	helpKeys := []key.Binding{m.keys.enter, m.keys.add, m.keys.remove, m.keys.reload, m.keys.quit}
	return fmt.Sprintf("%s\n%s\n\n%s", m.records.View(), summary, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderDetail() string {
	if m.selected == nil {
		return ""
	}
	title := styles.title.Render(m.selected.Title())

	var info strings.Builder
	fields, err := models.ToFields(m.selected)
	if err != nil {
		fmt.Fprintf(&info, "%s\n", m.selected.Description())
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(&info, "%s: %v\n", k, fields[k])
	}

	helpKeys := []key.Binding{m.keys.back, m.keys.remove, m.keys.quit}
	return fmt.Sprintf("%s\n%s\n%s", title, info.String(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderAdd() string {
	title := styles.title.Render(fmt.Sprintf("New %s", singular(m.handle.Name())))
	return fmt.Sprintf("%s\n%s\n\n%s", title, m.input.View(), styles.help.Render("enter to save • esc to cancel"))
}

func (m *Model) renderConfirm() string {
	if m.selected == nil {
		return ""
	}
	title := styles.title.Render(fmt.Sprintf("Delete '%s'?", m.selected.Title()))
	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	return fmt.Sprintf("%s\n%s", title, m.help.ShortHelpView(helpKeys))
}

func titleFor(dataset string) string {
	if dataset == "" {
		return ""
	}
	return strings.ToUpper(dataset[:1]) + dataset[1:]
}

func singular(dataset string) string {
	return strings.TrimSuffix(dataset, "s")
}
