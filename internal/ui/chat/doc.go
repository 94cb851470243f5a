// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the terminal chat screen of chatdock.

The Model is a Bubble Tea front end over a panel.Panel. Key presses call
the panel's Begin operations; the returned jobs run as tea.Cmds and report
back with JobDoneMsg, after which the screen re-reads the panel snapshot.

# Key Components

## Model (model.go)

Holds the panel, the widgets (text input, file path input, viewport,
spinner) and the optional camera control.

## Update (update.go)

Routes key presses by overlay mode:

	Idle        enter send, ctrl+o upload options, ctrl+s export, ctrl+y copy
	Modal open  f choose file, c use camera, esc close
	Camera open enter/space capture, esc close
	Path prompt enter upload, esc cancel

In PDF-only mode ctrl+o goes straight to the path prompt.

## View Rendering (view.go)

Header, message bubbles (user on the right, assistant on the left), the
loading row while a request is pending, the "upload a PDF" prompt, the
input box or the active overlay, and a status bar.
*/
package chat
