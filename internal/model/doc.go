// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// This package defines the core domain types shared by the chat panel, the
// API client and both front ends.
//
// # Key Types
//
//   - Message: Single immutable message with a role and exactly one content part
//   - ContentPart: Tagged union of a text part or an image reference part
//   - Conversation: Append-only, ordered message list
//   - Role: Message role enumeration (user, assistant)
//
// # Usage
//
//	conv := model.NewConversation()
//	conv.Append(model.NewTextMessage(model.RoleUser, "Hello!"))
//	conv.Append(model.NewImageMessage("https://cdn.example.com/a.jpg"))
//
//	for _, msg := range conv.Messages() {
//	    fmt.Println(msg.Role, msg.Part().Type)
//	}
package model
