package mock

import (
	"net/http"
)

// defaultRevokeHandler handles /revoke requests
func (s *AuthorizationService) defaultRevokeHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.revokeCalls++
	s.mu.Unlock()

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	if r.FormValue("client_id") != s.ClientID || r.FormValue("client_secret") != s.ClientSecret {
		http.Error(w, "Invalid client credentials", http.StatusUnauthorized)
		return
	}
	token := r.FormValue("token")
	if token == "" {
		http.Error(w, "Missing token", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.revoked = append(s.revoked, token)
	s.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"revoked"}`))
}
