package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/clipvault/backend/internal/models"
)

type accountSourceStub struct {
	accounts map[string]models.Account
}

func (s accountSourceStub) FindByEmail(_ context.Context, email string) (models.Account, error) {
	account, ok := s.accounts[email]
	if !ok {
		return models.Account{}, errors.New("not found")
	}
	return account, nil
}

func TestPasswordProviderAuthenticate(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("Passw0rd"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	provider := NewPasswordProvider(accountSourceStub{accounts: map[string]models.Account{
		"a@b.com": {ID: "user-1", Email: "a@b.com", Password: string(hashed)},
	}})

	identity, err := provider.Authenticate(context.Background(), Credential{Email: "a@b.com", Password: "Passw0rd"})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if identity.UserID != "user-1" || identity.Email != "a@b.com" {
		t.Fatalf("unexpected identity: %+v", identity)
	}

	// Unknown email and wrong password must be indistinguishable.
	if _, err := provider.Authenticate(context.Background(), Credential{Email: "missing@b.com", Password: "Passw0rd"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
	if _, err := provider.Authenticate(context.Background(), Credential{Email: "a@b.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, err := provider.Authenticate(context.Background(), Credential{Email: "a@b.com"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for empty password, got %v", err)
	}
}

func signAssertion(t *testing.T, secret string, claims assertionClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign assertion: %v", err)
	}
	return signed
}

func TestFederatedProviderAuthenticate(t *testing.T) {
	provider := NewFederatedProvider("gateway-secret")

	assertion := signAssertion(t, "gateway-secret", assertionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "github|12345",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
		Email:    "dev@example.com",
		Name:     "Dev",
		Provider: "github",
	})

	identity, err := provider.Authenticate(context.Background(), Credential{Assertion: assertion})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if identity.UserID != "github|12345" || identity.Email != "dev@example.com" || identity.Name != "Dev" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestFederatedProviderRejections(t *testing.T) {
	provider := NewFederatedProvider("gateway-secret")

	wrongSecret := signAssertion(t, "other-secret", assertionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "google|9",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
		Email: "dev@example.com",
	})
	if _, err := provider.Authenticate(context.Background(), Credential{Assertion: wrongSecret}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong secret, got %v", err)
	}

	noEmail := signAssertion(t, "gateway-secret", assertionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "google|9",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	if _, err := provider.Authenticate(context.Background(), Credential{Assertion: noEmail}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for missing email, got %v", err)
	}

	expired := signAssertion(t, "gateway-secret", assertionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "google|9",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
		Email: "dev@example.com",
	})
	if _, err := provider.Authenticate(context.Background(), Credential{Assertion: expired}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for expired assertion, got %v", err)
	}

	if _, err := provider.Authenticate(context.Background(), Credential{}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for empty assertion, got %v", err)
	}

	disabled := NewFederatedProvider("")
	valid := signAssertion(t, "gateway-secret", assertionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "google|9",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
		Email: "dev@example.com",
	})
	if _, err := disabled.Authenticate(context.Background(), Credential{Assertion: valid}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected disabled provider to reject all assertions, got %v", err)
	}
}
