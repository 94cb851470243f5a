// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/chatdock/internal/panel"
)

// =============================================================================
// PANEL JOB MESSAGES
// =============================================================================

// JobDoneMsg reports that a panel job finished. The outcome is read from
// the panel snapshot.
type JobDoneMsg struct {
	Action panel.Action
}

// =============================================================================
// CAMERA MESSAGES
// =============================================================================

// CameraMountedMsg reports the result of starting the preview.
type CameraMountedMsg struct {
	Err error
}

// PhotoCapturedMsg carries a still taken from the camera as a JPEG data URL.
type PhotoCapturedMsg struct {
	DataURL string
}

// CaptureFailedMsg reports a failed snapshot.
type CaptureFailedMsg struct {
	Err error
}

// =============================================================================
// UTILITY MESSAGES
// =============================================================================

// ExportDoneMsg reports a transcript export.
type ExportDoneMsg struct {
	Path string
	Err  error
}

// CopyDoneMsg reports a clipboard copy of the last reply.
type CopyDoneMsg struct {
	Err error
}
