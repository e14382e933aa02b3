package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/clipvault/backend/internal/auth"
	"github.com/clipvault/backend/internal/logging"
	"github.com/clipvault/backend/internal/models"
	"github.com/clipvault/backend/internal/repositories"
)

// AuthHandler implements account registration and the login endpoints.
type AuthHandler struct {
	Accounts  AccountStore
	Sessions  SessionManager
	Passwords LoginProvider
	Federated LoginProvider
	Limiter   RateLimiter
	NowFunc   func() time.Time
}

// Register handles POST /auth/register requests.
func (h AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Accounts == nil {
		logger.Error("account store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "Failed to register user"})
		return
	}

	if !allowRequest(h.Limiter, r, "register") {
		logger.Warn("register rate limited", "ip", clientIP(r))
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many registration attempts"})
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid register payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		logger.Warn("register missing credentials")
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "Email and password are required"})
		return
	}

	if err := auth.ValidateEmail(req.Email); err != nil {
		logger.Warn("register invalid email", "email", req.Email)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if err := auth.ValidatePassword(req.Password); err != nil {
		logger.Warn("register weak password", "email", req.Email, "reason", err.Error())
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if _, err := h.Accounts.FindByEmail(ctx, req.Email); err == nil {
		logger.Warn("register existing account", "email", req.Email)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "User already exists"})
		return
	} else if !errors.Is(err, repositories.ErrNotFound) {
		logger.Error("register account lookup failed", "error", err, "email", req.Email)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "Failed to register user"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("register failed to hash password", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "Failed to register user"})
		return
	}

	now := h.now()
	account := models.Account{
		ID:        uuid.NewString(),
		Email:     req.Email,
		Password:  string(hashed),
		CreatedAt: now,
		UpdatedAt: now,
	}

	// The unique index on email is the real uniqueness guarantee; the lookup
	// above only produces a friendlier error on the common path. Two
	// concurrent registrations race here and the loser gets ErrConflict.
	if err := h.Accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			logger.Warn("register conflict", "email", req.Email)
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "User already exists"})
			return
		}
		logger.Error("register failed to create account", "error", err, "email", req.Email)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "Failed to register user"})
		return
	}

	respondJSON(ctx, w, http.StatusCreated, map[string]string{"message": "User created successfully"})
}

// Login handles POST /auth/login requests.
func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Passwords == nil || h.Sessions == nil {
		logger.Error("authentication dependencies unavailable", "hasPasswords", h.Passwords != nil, "hasSessions", h.Sessions != nil)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "authentication services unavailable"})
		return
	}

	if !allowRequest(h.Limiter, r, "login") {
		logger.Warn("login rate limited", "ip", clientIP(r))
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many login attempts"})
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		logger.Warn("login missing credentials")
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "Email and password are required"})
		return
	}

	identity, err := h.Passwords.Authenticate(ctx, auth.Credential{Email: req.Email, Password: req.Password})
	if err != nil {
		// A single generic response for unknown email and wrong password.
		logger.Warn("login rejected", "email", req.Email)
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	h.issueSession(ctx, w, identity)
}

// FederatedLogin handles POST /auth/federated requests carrying an identity
// assertion from the OAuth gateway.
func (h AuthHandler) FederatedLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Federated == nil || h.Sessions == nil {
		logger.Error("federated login unavailable", "hasProvider", h.Federated != nil, "hasSessions", h.Sessions != nil)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "authentication services unavailable"})
		return
	}

	var req federatedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid federated payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Assertion = strings.TrimSpace(req.Assertion)
	if req.Assertion == "" {
		logger.Warn("federated login missing assertion")
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "identity assertion is required"})
		return
	}

	identity, err := h.Federated.Authenticate(ctx, auth.Credential{Assertion: req.Assertion})
	if err != nil {
		logger.Warn("federated login rejected")
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	h.issueSession(ctx, w, identity)
}

// Refresh exchanges a refresh token for a new session token pair.
func (h AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Sessions == nil {
		logger.Error("session manager unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "session service unavailable"})
		return
	}

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid refresh payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.RefreshToken = strings.TrimSpace(req.RefreshToken)
	if req.RefreshToken == "" {
		logger.Warn("missing refresh token")
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "refresh token is required"})
		return
	}

	tokens, err := h.Sessions.Refresh(req.RefreshToken)
	if err != nil {
		logger.Warn("refresh rejected", "error", err)
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "unable to refresh session"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, authResponse{Tokens: tokens})
}

func (h AuthHandler) issueSession(ctx context.Context, w http.ResponseWriter, identity auth.Identity) {
	logger := logging.FromContext(ctx)

	tokens, err := h.Sessions.Issue(identity)
	if err != nil {
		logger.Error("failed to issue session", "error", err, "userId", identity.UserID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to create session"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, authResponse{Tokens: tokens})
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type federatedRequest struct {
	Assertion string `json:"assertion"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type authResponse struct {
	Tokens models.SessionTokens `json:"tokens"`
}

func (h AuthHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}
