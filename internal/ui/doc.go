// Package ui implements an interactive terminal interface over one dataset using bubbletea's Elm architecture.
//
// The TUI has four views:
//  1. [RecordListView] : Browse cached records, newest first, with a weekly summary
//  2. [DetailView] : Show every field of the selected record
//  3. [AddView] : Quick-add a record by its primary field
//  4. [ConfirmDeleteView] : Confirm removal of the selected record
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Collection events and local store change signals flow through channels, and an offline banner is shown whenever the
// collection could not reach the collaborator.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, a, d, r, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
