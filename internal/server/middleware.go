// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// sessionKey is the fiber.Locals key of the request's session.
const sessionKey = "session"

// ============================================================================
// Security Headers
// ============================================================================

// contentSecurityPolicy allows remote and data: images (uploaded files are
// served by the API) and the camera stream; scripts and styles come from
// this server only.
const contentSecurityPolicy = "default-src 'self'; img-src 'self' http: https: data:; media-src 'self' blob: mediastream:"

func securityHeaders(c *fiber.Ctx) error {
	c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
	c.Set(fiber.HeaderXFrameOptions, "DENY")
	c.Set(fiber.HeaderContentSecurityPolicy, contentSecurityPolicy)
	c.Set(fiber.HeaderCacheControl, "no-store")
	c.Set(fiber.HeaderReferrerPolicy, "no-referrer")
	return c.Next()
}

// ============================================================================
// Request Logging
// ============================================================================

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}
	s.log.Debug("request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", status),
		zap.Duration("duration", time.Since(start)),
	)
	return err
}

// ============================================================================
// Sessions
// ============================================================================

// withSession attaches the caller's session, starting a new one when the
// cookie is missing, malformed or expired.
func (s *Server) withSession(c *fiber.Ctx) error {
	sess, ok := s.sessions.lookup(c.Cookies(sessionCookie))
	if !ok {
		sess = s.sessions.create()
		c.Cookie(&fiber.Cookie{
			Name:     sessionCookie,
			Value:    sess.id,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	c.Locals(sessionKey, sess)
	return c.Next()
}

func sessionFrom(c *fiber.Ctx) *session {
	return c.Locals(sessionKey).(*session)
}

// ============================================================================
// Rate Limiting
// ============================================================================

// rateLimit throttles actions per session. Reads are not limited.
func (s *Server) rateLimit(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return c.Next()
	}
	sess := sessionFrom(c)
	if !sess.limiter.Allow() {
		s.log.Info("rate limited", zap.String("session", sess.id), zap.String("path", c.Path()))
		return fiber.NewError(fiber.StatusTooManyRequests, "too many requests")
	}
	return c.Next()
}

// ============================================================================
// Errors
// ============================================================================

type errorResponse struct {
	Error string `json:"error"`
}

// handleError renders errors returned by handlers as JSON.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(errorResponse{Error: fe.Message})
	}
	s.log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "internal error"})
}
