package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/clipvault/backend/internal/models"
)

// ErrInvalidCredentials is the single failure signal for login attempts. It
// deliberately does not reveal whether the email exists.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Credential carries the proof material for either login variant: an email
// and password pair, or an identity assertion from the OAuth gateway.
type Credential struct {
	Email     string
	Password  string
	Assertion string
}

// Provider establishes a normalized identity from provider-specific
// credentials. Both login variants sit behind this interface.
type Provider interface {
	Authenticate(ctx context.Context, credential Credential) (Identity, error)
}

// AccountSource is the account lookup surface required by the password
// provider.
type AccountSource interface {
	FindByEmail(ctx context.Context, email string) (models.Account, error)
}

// PasswordProvider verifies email and password credentials against stored
// accounts.
type PasswordProvider struct {
	accounts AccountSource
}

// NewPasswordProvider constructs a password-based login provider.
func NewPasswordProvider(accounts AccountSource) *PasswordProvider {
	if accounts == nil {
		panic("auth: account source must not be nil")
	}
	return &PasswordProvider{accounts: accounts}
}

// Authenticate resolves the account by email and compares the bcrypt hash.
// Unknown email and wrong password both collapse to ErrInvalidCredentials.
func (p *PasswordProvider) Authenticate(ctx context.Context, credential Credential) (Identity, error) {
	if credential.Email == "" || credential.Password == "" {
		return Identity{}, ErrInvalidCredentials
	}

	account, err := p.accounts.FindByEmail(ctx, credential.Email)
	if err != nil {
		return Identity{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(credential.Password)); err != nil {
		return Identity{}, ErrInvalidCredentials
	}

	return Identity{UserID: account.ID, Email: account.Email}, nil
}

type assertionClaims struct {
	jwt.RegisteredClaims
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Provider string `json:"provider"`
}

// FederatedProvider accepts identity assertions minted by the OAuth gateway
// after it has completed the upstream provider flow. The assertion is an
// HS256 token signed with a secret shared between gateway and backend.
type FederatedProvider struct {
	gatewaySecret []byte
	now           func() time.Time
}

// NewFederatedProvider constructs a federated login provider. An empty
// secret disables the provider: every assertion is rejected.
func NewFederatedProvider(gatewaySecret string) *FederatedProvider {
	return &FederatedProvider{gatewaySecret: []byte(gatewaySecret), now: time.Now}
}

// Authenticate verifies the gateway assertion and normalizes it into an
// Identity. The subject claim becomes the user id so federated users keep a
// stable identifier across logins.
func (p *FederatedProvider) Authenticate(ctx context.Context, credential Credential) (Identity, error) {
	_ = ctx

	if len(p.gatewaySecret) == 0 || credential.Assertion == "" {
		return Identity{}, ErrInvalidCredentials
	}

	claims := &assertionClaims{}
	token, err := jwt.ParseWithClaims(credential.Assertion, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.gatewaySecret, nil
	}, jwt.WithTimeFunc(p.now))
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidCredentials
	}

	if claims.Subject == "" || claims.Email == "" {
		return Identity{}, ErrInvalidCredentials
	}

	return Identity{
		UserID: claims.Subject,
		Email:  claims.Email,
		Name:   claims.Name,
	}, nil
}
