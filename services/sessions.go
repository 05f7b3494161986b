package services

import (
	"fmt"
	"sync"
	"time"

	"civicreport/backend/models"
	"civicreport/backend/security"
)

// SessionRegistry tracks the admin session tokens issued by this process.
// Sessions live until logout or restart.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]models.AdminSession
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]models.AdminSession)}
}

// Create issues a fresh random token and records it.
func (r *SessionRegistry) Create() (string, error) {
	token, err := security.NewToken(security.SessionTokenBytes)
	if err != nil {
		return "", fmt.Errorf("failed to create session token: %w", err)
	}

	r.mu.Lock()
	r.sessions[token] = models.AdminSession{Token: token, CreatedAt: time.Now().UTC()}
	r.mu.Unlock()

	return token, nil
}

// Has reports whether token belongs to a live session. The empty token never does.
func (r *SessionRegistry) Has(token string) bool {
	if token == "" {
		return false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[token]
	return ok
}

// Destroy forgets token. Unknown tokens are ignored.
func (r *SessionRegistry) Destroy(token string) {
	r.mu.Lock()
	delete(r.sessions, token)
	r.mu.Unlock()
}
