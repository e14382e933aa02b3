package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/clipvault/backend/internal/models"
)

var (
	// ErrInvalidToken indicates a token that is malformed, tampered with, or
	// of the wrong type.
	ErrInvalidToken = errors.New("invalid session token")
	// ErrTokenExpired indicates a token whose encoded expiry has passed.
	ErrTokenExpired = errors.New("session token expired")
)

// Identity is the normalized principal established by a login provider and
// carried inside session tokens.
type Identity struct {
	UserID string
	Email  string
	Name   string
}

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

type sessionClaims struct {
	jwt.RegisteredClaims
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	TokenType string `json:"typ"`
}

// Authority issues and validates stateless session tokens. Expiry lives in
// the token itself; nothing is persisted server-side, so a restart never
// invalidates outstanding sessions.
type Authority struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewAuthority constructs an Authority signing tokens with the provided
// secret and TTL pair.
func NewAuthority(secret string, accessTTL, refreshTTL time.Duration) *Authority {
	if strings.TrimSpace(secret) == "" {
		panic("auth: session secret must not be empty")
	}
	return &Authority{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Issue creates a new access and refresh token pair for the identity.
func (a *Authority) Issue(id Identity) (models.SessionTokens, error) {
	if id.UserID == "" || id.Email == "" {
		return models.SessionTokens{}, errors.New("identity must carry a user id and email")
	}

	now := a.now().UTC()

	access, accessExp, err := a.sign(id, tokenTypeAccess, now, a.accessTTL)
	if err != nil {
		return models.SessionTokens{}, err
	}

	refresh, refreshExp, err := a.sign(id, tokenTypeRefresh, now, a.refreshTTL)
	if err != nil {
		return models.SessionTokens{}, err
	}

	return models.SessionTokens{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Refresh exchanges a valid refresh token for a fresh token pair. The old
// token is not revoked server-side; it simply ages out at its encoded expiry.
func (a *Authority) Refresh(refreshToken string) (models.SessionTokens, error) {
	id, err := a.parse(refreshToken, tokenTypeRefresh)
	if err != nil {
		return models.SessionTokens{}, err
	}
	return a.Issue(id)
}

// ParseAccess validates an access token and returns the identity it carries.
func (a *Authority) ParseAccess(token string) (Identity, error) {
	return a.parse(token, tokenTypeAccess)
}

func (a *Authority) sign(id Identity, tokenType string, now time.Time, ttl time.Duration) (string, time.Time, error) {
	expiresAt := now.Add(ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email:     id.Email,
		Name:      id.Name,
		TokenType: tokenType,
	})

	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", tokenType, err)
	}

	return signed, expiresAt, nil
}

func (a *Authority) parse(tokenString, wantType string) (Identity, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrTokenExpired
		}
		return Identity{}, ErrInvalidToken
	}

	if !token.Valid || claims.TokenType != wantType {
		return Identity{}, ErrInvalidToken
	}

	return Identity{
		UserID: claims.Subject,
		Email:  claims.Email,
		Name:   claims.Name,
	}, nil
}
