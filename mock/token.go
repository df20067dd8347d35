package mock

import (
	"encoding/json"
	"net/http"

	"github.com/viant/jwtbearer/exchange"
)

// defaultTokenHandler handles /token requests
func (s *AuthorizationService) defaultTokenHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.tokenCalls++
	s.mu.Unlock()

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	if grantType := r.FormValue("grant_type"); grantType != exchange.GrantType {
		http.Error(w, "Unsupported grant type", http.StatusBadRequest)
		return
	}
	if r.FormValue("client_id") != s.ClientID || r.FormValue("client_secret") != s.ClientSecret {
		http.Error(w, "Invalid client credentials", http.StatusUnauthorized)
		return
	}
	if r.FormValue("assertion") == "" {
		http.Error(w, "Missing assertion", http.StatusBadRequest)
		return
	}
	if scripted, ok := s.dequeue(); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(scripted.status)
		_, _ = w.Write([]byte(scripted.body))
		return
	}
	accessToken, err := s.createJWT(s.ClientID, "access_token")
	if err != nil {
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	response := map[string]interface{}{
		"access_token": accessToken,
		"token_type":   "Bearer",
		"expires_in":   s.ExpiresIn,
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}
