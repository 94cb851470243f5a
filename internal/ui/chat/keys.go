// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines the keyboard bindings of the chat screen.
type KeyMap struct {
	Send     key.Binding
	Upload   key.Binding
	Export   key.Binding
	Copy     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Close    key.Binding
	Quit     key.Binding

	// Upload options modal
	ChooseFile key.Binding
	UseCamera  key.Binding

	// Camera view
	Capture key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
		Upload: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("C-o", "upload"),
		),
		Export: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "export"),
		),
		Copy: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("C-y", "copy reply"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "scroll down"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "close"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "quit"),
		),
		ChooseFile: key.NewBinding(
			key.WithKeys("f", "1"),
			key.WithHelp("f", "upload file"),
		),
		UseCamera: key.NewBinding(
			key.WithKeys("c", "2"),
			key.WithHelp("c", "use camera"),
		),
		Capture: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("Enter/Space", "capture"),
		),
	}
}

// ShortHelp returns the bindings shown in the idle status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.Upload, k.Export, k.Copy, k.Quit}
}

// ModalHelp returns the bindings shown while the upload modal is open.
func (k KeyMap) ModalHelp() []key.Binding {
	return []key.Binding{k.ChooseFile, k.UseCamera, k.Close}
}

// CameraHelp returns the bindings shown while the camera view is open.
func (k KeyMap) CameraHelp() []key.Binding {
	return []key.Binding{k.Capture, k.Close}
}
