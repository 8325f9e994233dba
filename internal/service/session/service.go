// Package session keeps per-visitor conversation state for the stub backend.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/canyon-webchat/internal/model/chat"
)

var ErrSessionNotFound = errors.New("session not found")

// Service is an in-memory session store keyed by cookie value.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]chat.Session
	now      func() time.Time
}

// NewService returns an empty store.
func NewService() *Service {
	return &Service{
		sessions: make(map[string]chat.Session),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Acquire returns the session for id, creating a new one when id is empty or
// unknown. created reports whether a new session was provisioned.
func (s *Service) Acquire(_ context.Context, id string) (sess chat.Session, created bool) {
	if id != "" {
		s.mu.RLock()
		existing, ok := s.sessions[id]
		s.mu.RUnlock()
		if ok {
			return existing, false
		}
	}

	sess = chat.Session{
		ID:        uuid.NewString(),
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return sess, true
}

// Get retrieves a session by identifier.
func (s *Service) Get(_ context.Context, id string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return sess, nil
}

// RememberName stores the visitor's name and clears the pending question.
func (s *Service) RememberName(_ context.Context, id, name string) error {
	return s.update(id, func(sess *chat.Session) {
		sess.UserName = name
		sess.AskedName = false
	})
}

// MarkAskedName records that the bot asked for the visitor's name.
func (s *Service) MarkAskedName(_ context.Context, id string) error {
	return s.update(id, func(sess *chat.Session) {
		sess.AskedName = true
	})
}

// Clear forgets everything about the session.
func (s *Service) Clear(_ context.Context, id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len reports the number of live sessions.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Service) update(id string, fn func(*chat.Session)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	fn(&sess)
	s.sessions[id] = sess
	return nil
}
