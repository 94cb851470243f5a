// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"

	"github.com/jeranaias/chatdock/internal/model"
)

// JSONExporter exports the complete message list.
type JSONExporter struct{}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

type jsonTranscript struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	CreatedAt  time.Time       `json:"created_at"`
	ExportedAt time.Time       `json:"exported_at"`
	Messages   []model.Message `json:"messages"`
}

// Export converts a conversation to indented JSON.
func (e *JSONExporter) Export(conv *model.Conversation) ([]byte, error) {
	if err := checkConversation(conv); err != nil {
		return nil, err
	}
	return json.MarshalIndent(jsonTranscript{
		ID:         conv.ID,
		Title:      conv.Summary(),
		CreatedAt:  conv.CreatedAt,
		ExportedAt: time.Now(),
		Messages:   conv.Messages(),
	}, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string { return ".json" }

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string { return "application/json" }
