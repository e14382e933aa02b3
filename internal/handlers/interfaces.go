package handlers

import (
	"context"

	"github.com/clipvault/backend/internal/auth"
	"github.com/clipvault/backend/internal/media"
	"github.com/clipvault/backend/internal/models"
)

// AccountStore captures the persistence operations required by the auth
// handlers.
type AccountStore interface {
	Create(ctx context.Context, account models.Account) error
	FindByEmail(ctx context.Context, email string) (models.Account, error)
}

// SessionManager issues, refreshes, and validates session tokens.
type SessionManager interface {
	Issue(id auth.Identity) (models.SessionTokens, error)
	Refresh(refreshToken string) (models.SessionTokens, error)
	ParseAccess(token string) (auth.Identity, error)
}

// LoginProvider establishes an identity from login credentials. The password
// and federated variants both satisfy it.
type LoginProvider interface {
	Authenticate(ctx context.Context, credential auth.Credential) (auth.Identity, error)
}

// VideoStore captures persistence for video records.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	List(ctx context.Context, ownerEmail string) ([]models.Video, error)
	Find(ctx context.Context, id string) (models.Video, error)
	Delete(ctx context.Context, id string) error
}

// UploadAuthorizer issues short-lived upload credentials for the media host.
type UploadAuthorizer interface {
	Authorize(ctx context.Context) (media.Credentials, error)
}
