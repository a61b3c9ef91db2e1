package auth

import (
	"context"

	"github.com/minhle/coursehub-auth/internal/model"
)

// AccountStore is the narrow view of the external account store this
// subsystem depends on. The MySQL repository satisfies it in production;
// tests use an in-memory fake. Lookups return
// repository.ErrAccountNotFound when no row matches; inserts surface
// unique-key collisions as the repository's duplicate sentinels. The store
// guarantees read-your-writes on a single key but no cross-row
// transactions.
type AccountStore interface {
	FindByLoginName(ctx context.Context, loginName string) (*model.Account, error)
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
	FindByID(ctx context.Context, id uint64) (*model.Account, error)
	Insert(ctx context.Context, a *model.Account) (uint64, error)
	UpdateFields(ctx context.Context, id uint64, p model.AccountPatch) error
}
