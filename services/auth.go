package services

import (
	"civicreport/backend/models"
	"civicreport/backend/security"
)

// AdminAuth checks the single configured admin identity and hands out sessions.
type AdminAuth struct {
	username string
	password string
	sessions *SessionRegistry
}

func NewAdminAuth(username, password string, sessions *SessionRegistry) *AdminAuth {
	return &AdminAuth{username: username, password: password, sessions: sessions}
}

// Login returns a new session token when both credentials match exactly.
func (a *AdminAuth) Login(username, password string) (string, error) {
	// Evaluate both comparisons so a wrong username costs the same as a wrong password
	userOK := security.EqualStrings(username, a.username)
	passOK := security.EqualStrings(password, a.password)
	if !userOK || !passOK {
		return "", models.NewAuthError("Invalid credentials")
	}

	return a.sessions.Create()
}

// Logout ends the session for token, if there is one.
func (a *AdminAuth) Logout(token string) {
	if token != "" {
		a.sessions.Destroy(token)
	}
}

func (a *AdminAuth) IsAuthenticated(token string) bool {
	return a.sessions.Has(token)
}
