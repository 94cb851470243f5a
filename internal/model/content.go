// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// CONTENT PART TYPE
// =============================================================================

// PartType discriminates the ContentPart union.
type PartType string

const (
	PartText     PartType = "text"
	PartImageURL PartType = "image_url"
)

// ImageURL references a hosted image.
type ImageURL struct {
	URL string `json:"url"`
}

// ContentPart is one typed unit of message content. Exactly one of Text or
// ImageURL is meaningful, selected by Type.
type ContentPart struct {
	Type     PartType  `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// TextPart constructs a text content part.
func TextPart(text string) ContentPart {
	return ContentPart{Type: PartText, Text: text}
}

// ImagePart constructs an image_url content part.
func ImagePart(url string) ContentPart {
	return ContentPart{Type: PartImageURL, ImageURL: &ImageURL{URL: url}}
}

// IsText reports whether the part carries text.
func (p ContentPart) IsText() bool {
	return p.Type == PartText
}

// IsImage reports whether the part references an image.
func (p ContentPart) IsImage() bool {
	return p.Type == PartImageURL && p.ImageURL != nil
}

// URL returns the image URL, or "" for text parts.
func (p ContentPart) URL() string {
	if p.ImageURL == nil {
		return ""
	}
	return p.ImageURL.URL
}
