package app

import (
	"context"
	"fmt"

	"github.com/clipvault/backend/internal/auth"
	"github.com/clipvault/backend/internal/config"
	"github.com/clipvault/backend/internal/db"
	"github.com/clipvault/backend/internal/handlers"
	"github.com/clipvault/backend/internal/media"
	"github.com/clipvault/backend/internal/middleware"
	"github.com/clipvault/backend/internal/models"
	"github.com/clipvault/backend/internal/repositories"
)

// buildDependencies wires together concrete implementations used by the HTTP
// handlers.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, error) {
	accounts := repositories.NewPostgresAccountRepository(pool)
	videos := repositories.NewPostgresVideoRepository(pool)

	authority := auth.NewAuthority(cfg.Session.Secret, cfg.Session.AccessTTL, cfg.Session.RefreshTTL)

	uploads, err := buildUploadAuthorizer(ctx, cfg)
	if err != nil {
		return handlers.Dependencies{}, err
	}

	limiter := middleware.NewIPRateLimiter(
		cfg.RateLimit.AuthRequests,
		cfg.RateLimit.AuthWindow,
		cfg.RateLimit.AuthBurst,
		cfg.RateLimit.VisitorTTL,
	)

	return handlers.Dependencies{
		Accounts:      accounts,
		Sessions:      authority,
		Passwords:     auth.NewPasswordProvider(accounts),
		Federated:     auth.NewFederatedProvider(cfg.Session.GatewaySecret),
		Videos:        videos,
		Uploads:       uploads,
		AuthLimiter:   limiter,
		VideoDefaults: models.DefaultTransformation,
	}, nil
}

func buildUploadAuthorizer(ctx context.Context, cfg config.Config) (media.Authorizer, error) {
	switch cfg.Uploads.Driver {
	case "imagekit", "":
		return media.NewImageKitAuthorizer(cfg.Uploads.PrivateKey, cfg.Uploads.PublicKey, cfg.Uploads.CredentialTTL), nil
	case "s3":
		return media.NewS3Authorizer(ctx, cfg.ObjectStore, cfg.Uploads.CredentialTTL)
	default:
		return nil, fmt.Errorf("unknown upload driver %q", cfg.Uploads.Driver)
	}
}
