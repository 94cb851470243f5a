// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/chatdock/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single conversation entry. Messages are values: once
// appended to a Conversation they are never modified.
type Message struct {
	// Identity (local only, never sent to the API)
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	Role    Role          `json:"role"`
	Content []ContentPart `json:"content"`
}

// NewMessage creates a message holding a single content part.
func NewMessage(role Role, part ContentPart) Message {
	return Message{
		ID:        "msg_" + uuid.NewString(),
		Timestamp: time.Now(),
		Role:      role,
		Content:   []ContentPart{part},
	}
}

// NewTextMessage creates a text message.
func NewTextMessage(role Role, text string) Message {
	return NewMessage(role, TextPart(text))
}

// NewImageMessage creates a user message referencing an uploaded image.
func NewImageMessage(url string) Message {
	return NewMessage(RoleUser, ImagePart(url))
}

// Part returns the message's content part. Messages built by this package
// always hold exactly one; a zero part is returned for empty content.
func (m Message) Part() ContentPart {
	if len(m.Content) == 0 {
		return ContentPart{}
	}
	return m.Content[0]
}

// Text returns the text of a text message, or "" for image messages.
func (m Message) Text() string {
	p := m.Part()
	if !p.IsText() {
		return ""
	}
	return p.Text
}

// Preview returns a single-line truncated preview of the message.
func (m Message) Preview(maxLen int) string {
	p := m.Part()
	if p.IsImage() {
		return util.TruncateRunes("[image] "+p.URL(), maxLen)
	}
	return util.TruncateRunes(util.SingleLine(p.Text), maxLen)
}

// clone returns a copy that shares no slices with m.
func (m Message) clone() Message {
	out := m
	out.Content = make([]ContentPart, len(m.Content))
	for i, p := range m.Content {
		if p.ImageURL != nil {
			img := *p.ImageURL
			p.ImageURL = &img
		}
		out.Content[i] = p
	}
	return out
}
