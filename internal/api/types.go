// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/jeranaias/chatdock/internal/media"
	"github.com/jeranaias/chatdock/internal/model"
)

// Service is the backend contract the chat panel depends on.
type Service interface {
	// SendMessages posts the ordered history and returns the reply.
	SendMessages(ctx context.Context, history []model.Message) (*SendResponse, error)

	// UploadFile stores a file and returns its hosted URL(s).
	UploadFile(ctx context.Context, file *media.File) (*UploadResponse, error)
}

// =============================================================================
// REQUEST TYPES
// =============================================================================

// wireMessage is the on-the-wire shape of a history entry. Local fields
// such as ID and timestamp are not sent.
type wireMessage struct {
	Role    model.Role          `json:"role"`
	Content []model.ContentPart `json:"content"`
}

// sendRequest is the chat endpoint request body.
type sendRequest struct {
	Messages []wireMessage `json:"messages"`
}

func newSendRequest(history []model.Message) sendRequest {
	req := sendRequest{Messages: make([]wireMessage, len(history))}
	for i, m := range history {
		req.Messages[i] = wireMessage{Role: m.Role, Content: m.Content}
	}
	return req
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ResponsePart is one content part of a returned sub-message.
type ResponsePart struct {
	Type string `json:"type,omitempty"`
	Text string `json:"text"`
}

// ResponseMessage is one sub-message returned by the chat endpoint.
type ResponseMessage struct {
	Role    string         `json:"role,omitempty"`
	Content []ResponsePart `json:"content"`
}

// SendResponse is the chat endpoint response body.
type SendResponse struct {
	Messages []ResponseMessage `json:"messages"`
}

// Text collapses the response into the text of a single assistant message.
// Parts within a sub-message are joined with a space; sub-messages are
// separated by a blank line. ok is false when no sub-messages came back.
func (r *SendResponse) Text() (text string, ok bool) {
	if r == nil || len(r.Messages) == 0 {
		return "", false
	}
	blocks := make([]string, len(r.Messages))
	for i, m := range r.Messages {
		parts := make([]string, len(m.Content))
		for j, p := range m.Content {
			parts[j] = p.Text
		}
		blocks[i] = strings.Join(parts, " ")
	}
	return strings.Join(blocks, "\n\n"), true
}

// UploadResponse is the upload endpoint response body. The backend returns
// either a single image_url or a list of image_urls.
type UploadResponse struct {
	ImageURL  string   `json:"image_url,omitempty"`
	ImageURLs []string `json:"image_urls,omitempty"`
}

// URLs returns the hosted URLs in order. image_url wins when both are set.
func (r *UploadResponse) URLs() []string {
	if r == nil {
		return nil
	}
	if r.ImageURL != "" {
		return []string{r.ImageURL}
	}
	return r.ImageURLs
}

// First returns the first hosted URL, if any.
func (r *UploadResponse) First() (string, bool) {
	urls := r.URLs()
	if len(urls) == 0 {
		return "", false
	}
	return urls[0], true
}

// =============================================================================
// ERRORS
// =============================================================================

// Error is returned for non-2xx responses from the backend.
type Error struct {
	Status int
	Body   string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("api error (HTTP %d)", e.Status)
	}
	return fmt.Sprintf("api error (HTTP %d): %s", e.Status, e.Body)
}
