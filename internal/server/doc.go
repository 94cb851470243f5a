// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server serves the browser front end of chatdock.
//
// Each browser session (a cookie holding a UUID) owns one chat panel. Pages
// are rendered on the server from the panel snapshot; forms post actions
// back and are redirected to the page. Network calls run in the background
// and the page refreshes itself while a request is pending.
//
// # Endpoints
//
//   - GET  /              - Chat page
//   - GET  /state         - Panel snapshot as JSON
//   - POST /send          - Send the "message" form field
//   - POST /upload        - Upload the "file" multipart field
//   - POST /capture       - Upload the "image" data URL from the camera
//   - POST /modal/open    - Show the upload options
//   - POST /modal/close   - Hide the upload options
//   - POST /camera/open   - Switch from the options to the camera view
//   - POST /camera/close  - Hide the camera view
//   - GET  /export        - Download the transcript (?format=html|md|json)
//   - GET  /health        - Health check
//
// # Middleware
//
//   - Panic recovery
//   - Security headers
//   - Request logging (zap)
//   - Session lookup with idle expiry
//   - Per-session rate limiting of POST requests (x/time/rate)
//
// Clients sending "Accept: application/json" get the state as JSON instead
// of a redirect, and rejected actions as status codes: busy 409, no file
// 400, unsupported type 415, oversize 413. Browsers are redirected to the
// page either way.
package server
