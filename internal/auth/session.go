package auth

import "sync"

// Session is the process-local "authenticated" flag plus the one-shot hint
// flags shown once per session.
type Session struct {
	mu            sync.Mutex
	authenticated bool
	hints         map[string]bool
}

func NewSession() *Session {
	return &Session{hints: make(map[string]bool)}
}

// Login marks the session authenticated and resets hint flags.
func (s *Session) Login() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = true
	s.hints = make(map[string]bool)
}

func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = false
}

func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// ShowHintOnce reports true the first time it is called for name in the
// current session.
func (s *Session) ShowHintOnce(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hints[name] {
		return false
	}
	s.hints[name] = true
	return true
}
