package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/clipvault/backend/internal/auth"
)

var errNoSession = errors.New("no active session")

// identityFromRequest extracts the bearer access token and validates it with
// the session manager. Every write route goes through here; reads stay
// public.
func identityFromRequest(sessions SessionManager, r *http.Request) (auth.Identity, error) {
	if sessions == nil {
		return auth.Identity{}, errNoSession
	}

	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return auth.Identity{}, errNoSession
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if token == "" {
		return auth.Identity{}, errNoSession
	}

	return sessions.ParseAccess(token)
}
