package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clipvault/backend/internal/auth"
	"github.com/clipvault/backend/internal/logging"
	"github.com/clipvault/backend/internal/models"
	"github.com/clipvault/backend/internal/repositories"
)

// VideoHandler serves the /video endpoint: public listing plus
// session-guarded creation and owner-checked deletion.
type VideoHandler struct {
	Videos   VideoStore
	Sessions SessionManager
	Defaults models.Transformation
	NowFunc  func() time.Time
}

// Handle dispatches /video by method.
func (h VideoHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	case http.MethodDelete:
		h.delete(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h VideoHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Videos == nil {
		logger.Error("video store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "Failed to fetch videos"})
		return
	}

	ownerEmail := r.URL.Query().Get("email")

	videos, err := h.Videos.List(ctx, ownerEmail)
	if err != nil {
		logger.Error("list videos failed", "error", err, "ownerEmail", ownerEmail)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "Failed to fetch videos"})
		return
	}

	if videos == nil {
		videos = []models.Video{}
	}

	respondJSON(ctx, w, http.StatusOK, videos)
}

type createVideoRequest struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	VideoURL       string  `json:"videoUrl"`
	ThumbnailURL   string  `json:"thumbnailUrl"`
	Controls       *bool   `json:"controls"`
	Owner          *owner  `json:"owner"`
	Transformation *params `json:"transformation"`
}

type owner struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type params struct {
	Height  int `json:"height"`
	Width   int `json:"width"`
	Quality int `json:"quality"`
}

func (h VideoHandler) create(w http.ResponseWriter, r *http.Request) {
	ctx, span := logging.StartSpan(r.Context(), "video.create")
	defer span.End()

	logger := logging.FromContext(ctx)

	if h.Videos == nil || h.Sessions == nil {
		logger.Error("video dependencies unavailable", "hasVideos", h.Videos != nil, "hasSessions", h.Sessions != nil)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "Failed to create video"})
		return
	}

	identity, err := identityFromRequest(h.Sessions, r)
	if err != nil {
		logger.Warn("video create unauthorized", "error", err)
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	var req createVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid video payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if missing := missingFields(req); len(missing) > 0 {
		logger.Warn("video create missing fields", "fields", missing)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{
			"error": "Missing required fields: " + strings.Join(missing, ", "),
		})
		return
	}

	for _, loc := range []struct{ name, value string }{
		{"videoUrl", req.VideoURL},
		{"thumbnailUrl", req.ThumbnailURL},
	} {
		if !validResourceLocator(loc.value) {
			logger.Warn("video create invalid url", "field", loc.name)
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": loc.name + " must be a valid URL"})
			return
		}
	}

	transformation := h.defaults()
	if req.Transformation != nil {
		if req.Transformation.Height > 0 {
			transformation.Height = req.Transformation.Height
		}
		if req.Transformation.Width > 0 {
			transformation.Width = req.Transformation.Width
		}
		if req.Transformation.Quality != 0 {
			if req.Transformation.Quality < 1 || req.Transformation.Quality > 100 {
				logger.Warn("video create quality out of range", "quality", req.Transformation.Quality)
				respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "quality must be between 1 and 100"})
				return
			}
			transformation.Quality = req.Transformation.Quality
		}
	}

	controls := true
	if req.Controls != nil {
		controls = *req.Controls
	}

	now := h.now()
	video := models.Video{
		ID:             uuid.NewString(),
		Title:          strings.TrimSpace(req.Title),
		Description:    strings.TrimSpace(req.Description),
		VideoURL:       req.VideoURL,
		ThumbnailURL:   req.ThumbnailURL,
		Controls:       controls,
		Owner:          stampOwner(identity, req.Owner),
		Transformation: transformation,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		logger.Error("video create failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "Failed to create video"})
		return
	}

	logger.Info("video created", "videoId", video.ID, "ownerEmail", video.Owner.Email)
	respondJSON(ctx, w, http.StatusCreated, video)
}

func (h VideoHandler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, span := logging.StartSpan(r.Context(), "video.delete")
	defer span.End()

	logger := logging.FromContext(ctx)

	if h.Videos == nil || h.Sessions == nil {
		logger.Error("video dependencies unavailable", "hasVideos", h.Videos != nil, "hasSessions", h.Sessions != nil)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "Failed to delete video"})
		return
	}

	identity, err := identityFromRequest(h.Sessions, r)
	if err != nil {
		logger.Warn("video delete unauthorized", "error", err)
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "id is required"})
		return
	}

	video, err := h.Videos.Find(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "Video not found"})
			return
		}
		logger.Error("video lookup failed", "error", err, "videoId", id)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "Failed to delete video"})
		return
	}

	if video.Owner.Email != identity.Email {
		logger.Warn("video delete forbidden", "videoId", id, "requester", identity.Email)
		respondJSON(ctx, w, http.StatusForbidden, map[string]string{"error": "You do not own this video"})
		return
	}

	if err := h.Videos.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "Video not found"})
			return
		}
		logger.Error("video delete failed", "error", err, "videoId", id)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "Failed to delete video"})
		return
	}

	logger.Info("video deleted", "videoId", id, "ownerEmail", identity.Email)
	respondJSON(ctx, w, http.StatusOK, map[string]string{"message": "Video deleted successfully"})
}

// stampOwner builds the denormalized owner snapshot. The session always wins
// for id and email; a client-supplied owner can only contribute a display
// name.
func stampOwner(identity auth.Identity, requested *owner) models.Owner {
	name := ""
	if requested != nil {
		name = strings.TrimSpace(requested.Name)
	}
	if name == "" {
		name = identity.Name
	}
	if name == "" {
		name = "Anonymous"
	}

	return models.Owner{
		ID:    identity.UserID,
		Name:  name,
		Email: identity.Email,
	}
}

func missingFields(req createVideoRequest) []string {
	var missing []string
	if strings.TrimSpace(req.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(req.Description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(req.VideoURL) == "" {
		missing = append(missing, "videoUrl")
	}
	if strings.TrimSpace(req.ThumbnailURL) == "" {
		missing = append(missing, "thumbnailUrl")
	}
	return missing
}

func validResourceLocator(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (h VideoHandler) defaults() models.Transformation {
	if h.Defaults == (models.Transformation{}) {
		return models.DefaultTransformation
	}
	return h.Defaults
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
