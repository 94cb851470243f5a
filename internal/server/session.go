// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jeranaias/chatdock/internal/panel"
)

// ============================================================================
// Session
// ============================================================================

// session is one browser's chat panel.
type session struct {
	id      string
	panel   *panel.Panel
	limiter *rate.Limiter

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// ============================================================================
// Session Store
// ============================================================================

// sessionStore keeps the live sessions and closes idle ones. It holds at
// most max sessions.
type sessionStore struct {
	newPanel func() *panel.Panel
	ttl      time.Duration
	max      int
	limit    rate.Limit
	burst    int
	now      func() time.Time
	log      *zap.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

func newSessionStore(newPanel func() *panel.Panel, ttl time.Duration, max int, limit rate.Limit, burst int, log *zap.Logger) *sessionStore {
	return &sessionStore{
		newPanel: newPanel,
		ttl:      ttl,
		max:      max,
		limit:    limit,
		burst:    burst,
		now:      time.Now,
		log:      log,
		sessions: make(map[string]*session),
	}
}

// lookup returns the live session for id and marks it used. Malformed IDs
// never match.
func (st *sessionStore) lookup(id string) (*session, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}
	st.mu.Lock()
	sess, ok := st.sessions[id]
	st.mu.Unlock()
	if !ok {
		return nil, false
	}
	now := st.now()
	if st.ttl > 0 && sess.idleSince(now) > st.ttl {
		return nil, false
	}
	sess.touch(now)
	return sess, true
}

// create starts a new session with its own panel. When the store is full
// the session idle longest is closed to make room.
func (st *sessionStore) create() *session {
	now := st.now()
	sess := &session{
		id:       uuid.NewString(),
		panel:    st.newPanel(),
		limiter:  rate.NewLimiter(st.limit, st.burst),
		lastSeen: now,
	}

	st.mu.Lock()
	var evicted *session
	if st.max > 0 && len(st.sessions) >= st.max {
		evicted = st.idlestLocked(now)
		delete(st.sessions, evicted.id)
	}
	st.sessions[sess.id] = sess
	st.mu.Unlock()

	if evicted != nil {
		evicted.panel.Close()
		st.log.Info("session evicted", zap.String("session", evicted.id), zap.Int("max_sessions", st.max))
	}
	st.log.Debug("session created", zap.String("session", sess.id))
	return sess
}

// idlestLocked returns the session unused for longest. Caller holds st.mu
// and the store is not empty.
func (st *sessionStore) idlestLocked(now time.Time) *session {
	var (
		idlest  *session
		longest time.Duration
	)
	for _, sess := range st.sessions {
		if d := sess.idleSince(now); idlest == nil || d > longest {
			idlest, longest = sess, d
		}
	}
	return idlest
}

// sweep closes sessions idle for longer than the TTL and returns how many
// were removed.
func (st *sessionStore) sweep() int {
	if st.ttl <= 0 {
		return 0
	}
	now := st.now()

	st.mu.Lock()
	var expired []*session
	for id, sess := range st.sessions {
		if sess.idleSince(now) > st.ttl {
			expired = append(expired, sess)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()

	for _, sess := range expired {
		sess.panel.Close()
		st.log.Debug("session expired", zap.String("session", sess.id))
	}
	return len(expired)
}

// closeAll closes every session.
func (st *sessionStore) closeAll() {
	st.mu.Lock()
	all := st.sessions
	st.sessions = make(map[string]*session)
	st.mu.Unlock()

	for _, sess := range all {
		sess.panel.Close()
	}
}

func (st *sessionStore) len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
