package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"civicreport/backend/middleware"
	"civicreport/backend/services"
)

// AdminHandler serves the admin session endpoints.
type AdminHandler struct {
	auth *services.AdminAuth
	gate *middleware.AdminGate
}

func NewAdminHandler(auth *services.AdminAuth, gate *middleware.AdminGate) *AdminHandler {
	return &AdminHandler{auth: auth, gate: gate}
}

// Me handles GET /api/admin/me
func (h *AdminHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"authenticated": h.gate.IsAdmin(r)})
}

// Login handles POST /api/admin/login with a JSON or urlencoded body
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	username, password, err := readCredentials(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, err := h.auth.Login(username, password)
	if err != nil {
		writeServiceError(w, err, "Failed to log in")
		return
	}

	h.gate.SetSessionCookie(w, token)
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// Logout handles POST /api/admin/logout. It always succeeds.
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.Logout(h.gate.SessionToken(r))
	h.gate.ClearSessionCookie(w)
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func readCredentials(r *http.Request) (string, string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "application/json" {
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			return "", "", err
		}
		return stringField(body["username"]), stringField(body["password"]), nil
	}

	if err := r.ParseForm(); err != nil {
		return "", "", err
	}
	return r.PostForm.Get("username"), r.PostForm.Get("password"), nil
}

// stringField renders a decoded JSON value the way a form field would arrive
func stringField(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64, bool:
		return fmt.Sprint(val)
	default:
		return ""
	}
}
