package repositories

import (
	"context"

	"github.com/clipvault/backend/internal/models"
)

// AccountRepository defines the data access contract for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account models.Account) error
	FindByEmail(ctx context.Context, email string) (models.Account, error)
	Update(ctx context.Context, account models.Account) error
}
