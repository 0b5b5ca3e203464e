package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/carekeep/internal/models"
	"github.com/desertthunder/carekeep/internal/syncer"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgLoaded MsgKind = iota
	MsgCreated
	MsgDeleted
	MsgEvent
	MsgStoreChanged
)

type result struct {
	record models.Record
	err    error
}

// loadedMsg is the constructor for [MsgLoaded]
func loadedMsg(err error) Msg {
	return Msg{kind: MsgLoaded, data: err}
}

// createdMsg is the constructor for [MsgCreated]
func createdMsg(record models.Record, err error) Msg {
	return Msg{kind: MsgCreated, data: result{record, err}}
}

// deletedMsg is the constructor for [MsgDeleted]
func deletedMsg(err error) Msg {
	return Msg{kind: MsgDeleted, data: err}
}

// eventMsg is the constructor for [MsgEvent]
func eventMsg(e syncer.Event) Msg {
	return Msg{kind: MsgEvent, data: e}
}

// storeChangedMsg is the constructor for [MsgStoreChanged]
func storeChangedMsg() Msg {
	return Msg{kind: MsgStoreChanged}
}

func asError(data any) error {
	err, _ := data.(error)
	return err
}
