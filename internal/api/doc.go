// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the chat backend.
//
// The backend exposes two endpoints: a chat endpoint that takes the full
// conversation history and returns one or more assistant sub-messages, and
// an upload endpoint that stores a file and returns hosted image URLs.
//
// # Usage
//
//	client := api.NewClient("http://localhost:8000").
//	    WithAPIKey(os.Getenv("CHATDOCK_API_KEY")).
//	    WithTimeout(30 * time.Second)
//
//	resp, err := client.SendMessages(ctx, conv.Messages())
//	if err != nil {
//	    return err
//	}
//	if text, ok := resp.Text(); ok {
//	    fmt.Println(text)
//	}
package api
