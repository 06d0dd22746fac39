package users

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/novelnest/internal/common"
	"github.com/dmitrijs2005/novelnest/internal/server/models"
)

var (
	ErrUsernameTaken = fmt.Errorf("%w: username taken", common.ErrConflict)
	ErrEmailTaken    = fmt.Errorf("%w: email taken", common.ErrConflict)
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, userName string) (*models.User, error)
	// FindByUsernameOrEmail returns a user holding either value, preferring
	// a username match.
	FindByUsernameOrEmail(ctx context.Context, userName, email string) (*models.User, error)
	UsernameTakenByOther(ctx context.Context, userName string, id int64) (bool, error)
	EmailTakenByOther(ctx context.Context, email string, id int64) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	// Update applies the non-nil fields of u. u.Password must already be a
	// digest.
	Update(ctx context.Context, id int64, u models.UserUpdate) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}
