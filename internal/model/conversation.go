// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is an append-only, ordered list of messages. It never
// shrinks and never reorders or edits an appended message. Safe for
// concurrent use.
type Conversation struct {
	ID        string
	CreatedAt time.Time

	mu        sync.RWMutex
	messages  []Message
	updatedAt time.Time
}

// NewConversation creates an empty conversation with a generated ID.
func NewConversation() *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        "conv_" + uuid.NewString(),
		CreatedAt: now,
		updatedAt: now,
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// Append adds messages to the end of the conversation, in order.
func (c *Conversation) Append(msgs ...Message) {
	if len(msgs) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range msgs {
		c.messages = append(c.messages, m.clone())
	}
	c.updatedAt = time.Now()
}

// Messages returns a copy of the history, oldest first.
func (c *Conversation) Messages() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Message, len(c.messages))
	for i, m := range c.messages {
		out[i] = m.clone()
	}
	return out
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return c.Len() == 0
}

// Last returns the most recent message with the given role.
func (c *Conversation) Last(role Role) (Message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == role {
			return c.messages[i].clone(), true
		}
	}
	return Message{}, false
}

// UpdatedAt returns the time of the last append.
func (c *Conversation) UpdatedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updatedAt
}

// Summary derives a title from the first user text message.
func (c *Conversation) Summary() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, m := range c.messages {
		if m.Role == RoleUser && m.Part().IsText() && m.Text() != "" {
			return m.Preview(50)
		}
	}
	return "New conversation"
}
