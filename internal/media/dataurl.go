// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package media

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // register PNG decoder for canvas snapshots
	"strings"
)

// CapturedName and CapturedType describe every camera still uploaded.
const (
	CapturedName = "captured-image.jpg"
	CapturedType = "image/jpeg"
)

// jpegQuality matches the browser canvas default for toDataURL.
const jpegQuality = 92

// ErrInvalidDataURL is returned for malformed data URLs.
var ErrInvalidDataURL = errors.New("invalid data URL")

// DecodeDataURL splits a base64 data URL into its media type and bytes.
func DecodeDataURL(dataURL string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return "", nil, ErrInvalidDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrInvalidDataURL
	}
	mediaType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", nil, fmt.Errorf("%w: only base64 payloads are supported", ErrInvalidDataURL)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	if len(data) == 0 {
		return "", nil, fmt.Errorf("%w: empty payload", ErrInvalidDataURL)
	}
	return mediaType, data, nil
}

// EncodeDataURL renders data as a base64 data URL.
func EncodeDataURL(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// FromDataURL converts a captured still into the upload payload
// captured-image.jpg. Non-JPEG images are re-encoded as JPEG.
func FromDataURL(dataURL string) (*File, error) {
	_, data, err := DecodeDataURL(dataURL)
	if err != nil {
		return nil, err
	}
	jpg, err := ToJPEG(data)
	if err != nil {
		return nil, err
	}
	return &File{Name: CapturedName, ContentType: CapturedType, Data: jpg}, nil
}

// ToJPEG returns data unchanged when it is already JPEG, otherwise decodes
// it and re-encodes it as JPEG.
func ToJPEG(data []byte) ([]byte, error) {
	if DetectContentType(data) == CapturedType {
		return data, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
