package mock

import (
	"net/http"
)

// Handler routes HTTP requests to the appropriate mock endpoint.
type Handler struct {
	// Service is the mock authorization service with endpoint handlers.
	Service *AuthorizationService
}

// ServeHTTP dispatches incoming HTTP requests based on URL path.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/token":
		if h.Service.TokenHandler != nil {
			h.Service.TokenHandler(w, r)
		} else {
			h.Service.defaultTokenHandler(w, r)
		}
	case "/revoke":
		if h.Service.RevokeHandler != nil {
			h.Service.RevokeHandler(w, r)
		} else {
			h.Service.defaultRevokeHandler(w, r)
		}
	default:
		http.NotFound(w, r)
	}
}
