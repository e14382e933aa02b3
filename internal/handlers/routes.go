package handlers

import (
	"net/http"

	"github.com/clipvault/backend/internal/models"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Accounts      AccountStore
	Sessions      SessionManager
	Passwords     LoginProvider
	Federated     LoginProvider
	Videos        VideoStore
	Uploads       UploadAuthorizer
	AuthLimiter   RateLimiter
	VideoDefaults models.Transformation
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	auth := AuthHandler{
		Accounts:  deps.Accounts,
		Sessions:  deps.Sessions,
		Passwords: deps.Passwords,
		Federated: deps.Federated,
		Limiter:   deps.AuthLimiter,
	}
	videos := VideoHandler{
		Videos:   deps.Videos,
		Sessions: deps.Sessions,
		Defaults: deps.VideoDefaults,
	}
	uploads := UploadHandler{Relay: deps.Uploads}

	mux.HandleFunc("/healthz", health.Handle)
	mux.HandleFunc("/auth/register", auth.Register)
	mux.HandleFunc("/auth/login", auth.Login)
	mux.HandleFunc("/auth/federated", auth.FederatedLogin)
	mux.HandleFunc("/auth/refresh", auth.Refresh)
	mux.HandleFunc("/video", videos.Handle)
	mux.HandleFunc("/upload-auth", uploads.Authorize)
}
