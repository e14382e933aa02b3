package handlers

import (
	"net/http"

	"github.com/clipvault/backend/internal/logging"
)

// UploadHandler hands out short-lived signed upload credentials so clients
// can push assets straight to the media host.
type UploadHandler struct {
	Relay UploadAuthorizer
}

// Authorize handles GET /upload-auth requests. Credentials are minted fresh
// on every call; nothing is cached across upload attempts.
func (h UploadHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Relay == nil {
		logger.Error("upload relay unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "Authentication for media host failed"})
		return
	}

	creds, err := h.Relay.Authorize(ctx)
	if err != nil {
		// Key or config failures stay generic; nothing internal leaks.
		logger.Error("upload authorization failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "Authentication for media host failed"})
		return
	}

	// Signature-based drivers return auth params; presigned-URL drivers
	// return the URL. Both carry the expiry.
	payload := map[string]any{}
	if creds.Token != "" {
		payload["authParams"] = map[string]any{
			"token":     creds.Token,
			"expire":    creds.Expire,
			"signature": creds.Signature,
		}
		payload["publicKey"] = creds.PublicKey
	}
	if creds.UploadURL != "" {
		payload["uploadUrl"] = creds.UploadURL
		payload["expire"] = creds.Expire
	}

	respondJSON(ctx, w, http.StatusOK, payload)
}
