// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package media handles the binary payloads the chat panel uploads: files
// chosen by the user and stills captured from a camera.
//
// Content types are sniffed from magic bytes with h2non/filetype rather than
// trusted from file extensions. Captured stills arrive as data URLs and are
// normalized to a JPEG payload named captured-image.jpg.
package media
