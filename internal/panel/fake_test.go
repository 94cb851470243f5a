// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panel_test

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"sync"

	"github.com/jeranaias/chatdock/internal/api"
	"github.com/jeranaias/chatdock/internal/media"
	"github.com/jeranaias/chatdock/internal/model"
)

// fakeService records calls and answers with canned results. When gate is
// non-nil every call blocks until it receives.
type fakeService struct {
	mu sync.Mutex

	sendResp   *api.SendResponse
	sendErr    error
	uploadResp *api.UploadResponse
	uploadErr  error

	gate chan struct{}

	sendCalls   [][]model.Message
	uploadCalls []*media.File
}

func (f *fakeService) SendMessages(ctx context.Context, history []model.Message) (*api.SendResponse, error) {
	f.mu.Lock()
	f.sendCalls = append(f.sendCalls, history)
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sendResp, f.sendErr
}

func (f *fakeService) UploadFile(ctx context.Context, file *media.File) (*api.UploadResponse, error) {
	f.mu.Lock()
	f.uploadCalls = append(f.uploadCalls, file)
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploadResp, f.uploadErr
}

func (f *fakeService) sends() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sendCalls)
}

func (f *fakeService) uploads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploadCalls)
}

func textReply(blocks ...[]string) *api.SendResponse {
	resp := &api.SendResponse{}
	for _, parts := range blocks {
		msg := api.ResponseMessage{Role: "assistant"}
		for _, p := range parts {
			msg.Content = append(msg.Content, api.ResponsePart{Type: "text", Text: p})
		}
		resp.Messages = append(resp.Messages, msg)
	}
	return resp
}

func jpegDataURL() string {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2)), nil); err != nil {
		panic(err)
	}
	return media.EncodeDataURL("image/jpeg", buf.Bytes())
}

var pdfFile = &media.File{
	Name:        "report.pdf",
	ContentType: "application/pdf",
	Data:        []byte("%PDF-1.4\n%%EOF\n"),
}

var pngFile = &media.File{
	Name:        "photo.png",
	ContentType: "image/png",
	Data:        []byte{0x89, 'P', 'N', 'G'},
}
