package dialog

import (
	"sync"

	"github.com/carewell-ai/care-assistant/internal/nlp"
)

// State is the conversation state of a session.
type State string

const (
	StateGreeting        State = "greeting"
	StateOnboardingName  State = "onboarding_name"
	StateOnboardingEmail State = "onboarding_email"
	StateOnboardingDOB   State = "onboarding_dob"
	StateNormal          State = "normal"
)

// Context is the accumulated conversational context of a session. Extracted
// entities overwrite same-named values from earlier turns; nothing is ever
// pruned.
type Context struct {
	Name     string
	Email    string
	DOB      string
	Date     string
	Time     string
	Doctor   string
	Symptoms []string
}

// merge folds freshly extracted entities into the context. Empty entity
// fields leave the existing values untouched.
func (c *Context) merge(entities nlp.Entities) {
	if entities.Date != "" {
		c.Date = entities.Date
	}
	if entities.Time != "" {
		c.Time = entities.Time
	}
	if entities.Doctor != "" {
		c.Doctor = entities.Doctor
	}
	if len(entities.Symptoms) > 0 {
		c.Symptoms = entities.Symptoms
	}
}

// Session is the per-user conversational state, held only for the lifetime of
// the process. The conversation state only advances forward through the
// onboarding sequence and reaches StateNormal once name, email and dob have
// all been collected.
type Session struct {
	mu         sync.Mutex
	State      State
	LastIntent nlp.Intent
	Context    Context
}

// sessionStore is a mutex-guarded map of user id to session. Turn processing
// holds the individual session's lock, so concurrent requests for different
// user ids never contend.
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*Session)}
}

// getOrCreate returns the session for the user id, creating it in the
// greeting state on first contact.
func (s *sessionStore) getOrCreate(userID string) *Session {
	s.mu.RLock()
	session, ok := s.sessions[userID]
	s.mu.RUnlock()
	if ok {
		return session
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok = s.sessions[userID]; ok {
		return session
	}
	session = &Session{State: StateGreeting}
	s.sessions[userID] = session
	return session
}

// get returns the session for the user id if one exists.
func (s *sessionStore) get(userID string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[userID]
	return session, ok
}
