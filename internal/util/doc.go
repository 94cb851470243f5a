// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across chatdock.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - TruncateWidth: display-width aware truncation (CJK, emoji)
//   - SingleLine: collapse whitespace runs for one-line previews
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
//   - ExpandHome: resolve a leading "~/" against the user's home
package util
