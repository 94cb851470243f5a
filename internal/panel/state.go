// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panel

import "github.com/jeranaias/chatdock/internal/model"

// =============================================================================
// UI MODE
// =============================================================================

// Mode is the panel's overlay mode. The upload-options modal and the camera
// view are exclusive by construction.
type Mode int

const (
	ModeIdle Mode = iota
	ModeModalOpen
	ModeCameraOpen
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeModalOpen:
		return "modal_open"
	case ModeCameraOpen:
		return "camera_open"
	default:
		return "unknown"
	}
}

// =============================================================================
// REQUEST LIFECYCLE
// =============================================================================

// RequestState is the lifecycle of one kind of outbound request.
type RequestState int

const (
	RequestIdle RequestState = iota
	RequestPending
	RequestSucceeded
	RequestFailed
)

// String returns the lifecycle name.
func (s RequestState) String() string {
	switch s {
	case RequestIdle:
		return "idle"
	case RequestPending:
		return "pending"
	case RequestSucceeded:
		return "succeeded"
	case RequestFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Action names an outbound request kind.
type Action int

const (
	ActionSend Action = iota
	ActionUpload
	ActionCapture

	numActions
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionSend:
		return "send"
	case ActionUpload:
		return "upload"
	case ActionCapture:
		return "capture"
	default:
		return "unknown"
	}
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// State is a consistent copy of the panel state for rendering.
type State struct {
	Messages     []model.Message
	Input        string
	FileSelected bool
	PDFOnly      bool
	Mode         Mode

	Send    RequestState
	Upload  RequestState
	Capture RequestState

	// LastError is set only under PolicySurface.
	LastError string
}

// Loading reports whether a request is in flight.
func (s State) Loading() bool {
	return s.Send == RequestPending || s.Upload == RequestPending || s.Capture == RequestPending
}

// ModalOpen reports whether the upload-options modal is visible.
func (s State) ModalOpen() bool { return s.Mode == ModeModalOpen }

// CameraOpen reports whether the camera view is visible.
func (s State) CameraOpen() bool { return s.Mode == ModeCameraOpen }

// ShowUploadPrompt reports whether the "upload a PDF" prompt applies: PDF
// mode before any file has been chosen.
func (s State) ShowUploadPrompt() bool { return s.PDFOnly && !s.FileSelected }
