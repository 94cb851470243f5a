// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/chatdock/internal/media"
	"github.com/jeranaias/chatdock/internal/model"
	"github.com/jeranaias/chatdock/internal/util"
)

// Configuration constants for the backend API.
const (
	// DefaultBaseURL is where the development backend listens.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultChatPath and DefaultUploadPath are the endpoint paths.
	DefaultChatPath   = "/chat"
	DefaultUploadPath = "/upload"

	// DefaultTimeout bounds a single request.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize caps how much of a response body is read.
	MaxResponseSize = 10 * 1024 * 1024

	// maxErrorBody caps the body text kept on an *Error.
	maxErrorBody = 512

	userAgent = "chatdock/1.0"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Client talks to the chat backend over HTTP. It implements Service.
type Client struct {
	baseURL    string
	chatPath   string
	uploadPath string
	apiKey     string
	httpClient *http.Client
	log        *zap.Logger
}

var _ Service = (*Client)(nil)

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		chatPath:   DefaultChatPath,
		uploadPath: DefaultUploadPath,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		log:        zap.NewNop(),
	}
}

// WithAPIKey sets a bearer token sent on every request.
func (c *Client) WithAPIKey(key string) *Client {
	c.apiKey = strings.TrimSpace(key)
	return c
}

// WithPaths overrides the chat and upload endpoint paths. Empty values keep
// the current path.
func (c *Client) WithPaths(chatPath, uploadPath string) *Client {
	if chatPath != "" {
		c.chatPath = chatPath
	}
	if uploadPath != "" {
		c.uploadPath = uploadPath
	}
	return c
}

// WithTimeout sets the per-request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	if timeout > 0 {
		c.httpClient.Timeout = timeout
	}
	return c
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// WithLogger sets the logger used for request tracing.
func (c *Client) WithLogger(log *zap.Logger) *Client {
	if log != nil {
		c.log = log
	}
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// OPERATIONS
// =============================================================================

// SendMessages posts the full history to the chat endpoint.
func (c *Client) SendMessages(ctx context.Context, history []model.Message) (*SendResponse, error) {
	body, err := json.Marshal(newSendRequest(history))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.chatPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp SendResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UploadFile posts file as multipart form field "file".
func (c *Client) UploadFile(ctx context.Context, file *media.File) (*UploadResponse, error) {
	if file == nil {
		return nil, fmt.Errorf("upload: nil file")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(file.Name)))
	h.Set("Content-Type", file.ContentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form part: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, fmt.Errorf("failed to write form part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.uploadPath, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp UploadResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// =============================================================================
// TRANSPORT
// =============================================================================

// do sends req and decodes a 2xx JSON body into out. Request and response
// bodies are never logged.
func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("api request failed",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Error(err))
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	c.log.Debug("api response",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{
			Status: resp.StatusCode,
			Body:   util.TruncateRunes(strings.TrimSpace(string(data)), maxErrorBody),
		}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
