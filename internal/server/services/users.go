package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/novelnest/internal/common"
	"github.com/dmitrijs2005/novelnest/internal/dbx"
	"github.com/dmitrijs2005/novelnest/internal/server/auth"
	"github.com/dmitrijs2005/novelnest/internal/server/models"
	"github.com/dmitrijs2005/novelnest/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/novelnest/internal/server/repositories/users"
)

// UserService manages accounts: registration, admin creation, profile
// updates and deletion.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *auth.PasswordHasher
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher *auth.PasswordHasher) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
	}
}

func usernameTaken(name string) error {
	return common.Detailed(common.ErrConflict, "Username '%s' is already taken.", name)
}

func emailTaken(email string) error {
	return common.Detailed(common.ErrConflict, "Email '%s' is already in use.", email)
}

func userNotFound(id int64) error {
	return common.Detailed(common.ErrorNotFound, "User with id %d was not found", id)
}

// translateUserWrite turns repository write errors into caller-facing ones.
func translateUserWrite(err error, name, email string) error {
	switch {
	case errors.Is(err, users.ErrUsernameTaken):
		return usernameTaken(name)
	case errors.Is(err, users.ErrEmailTaken):
		return emailTaken(email)
	}
	return asInternal(err)
}

func asInternal(err error) error {
	var de *common.DetailError
	if errors.As(err, &de) || errors.Is(err, common.ErrorInternal) {
		return err
	}
	return fmt.Errorf("%w: %v", common.ErrorInternal, err)
}

func validateNewUser(in models.NewUser) error {
	switch {
	case strings.TrimSpace(in.UserName) == "":
		return common.Detailed(common.ErrorValidation, "username is required")
	case strings.TrimSpace(in.Email) == "":
		return common.Detailed(common.ErrorValidation, "email is required")
	case in.Password == "":
		return common.Detailed(common.ErrorValidation, "password is required")
	}
	return nil
}

// Register creates an account with the user role.
func (s *UserService) Register(ctx context.Context, in models.NewUser) (*models.User, error) {
	return s.create(ctx, in, models.RoleUser)
}

// CreateAdmin lets an existing admin create another admin account.
func (s *UserService) CreateAdmin(ctx context.Context, caller auth.Identity, in models.NewUser) (*models.User, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	return s.create(ctx, in, models.RoleAdmin)
}

// BootstrapAdmin creates an admin without a calling identity. It backs the
// admin CLI, which is the only way to obtain the first admin.
func (s *UserService) BootstrapAdmin(ctx context.Context, in models.NewUser) (*models.User, error) {
	return s.create(ctx, in, models.RoleAdmin)
}

func (s *UserService) create(ctx context.Context, in models.NewUser, role models.Role) (*models.User, error) {
	if err := validateNewUser(in); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	var created *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		existing, err := repo.FindByUsernameOrEmail(ctx, in.UserName, in.Email)
		switch {
		case err == nil:
			if existing.UserName == in.UserName {
				return usernameTaken(in.UserName)
			}
			return emailTaken(in.Email)
		case !errors.Is(err, common.ErrorNotFound):
			return asInternal(err)
		}

		created, err = repo.Create(ctx, &models.User{
			UserName:     in.UserName,
			Email:        in.Email,
			PasswordHash: digest,
			Role:         role,
		})
		if err != nil {
			return translateUserWrite(err, in.UserName, in.Email)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, userNotFound(id)
		}
		return nil, asInternal(err)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	limit, offset = common.ClampPage(limit, offset)
	list, err := s.repomanager.Users(s.db).List(ctx, limit, offset)
	if err != nil {
		return nil, asInternal(err)
	}
	return list, nil
}

// Update applies u to account id on behalf of caller. The target must
// exist, the caller must pass auth.AuthorizeProfileUpdate, and a new
// username or email must not belong to another account. Nothing is written
// unless every check passes.
func (s *UserService) Update(ctx context.Context, caller auth.Identity, id int64, u models.UserUpdate) (*models.User, error) {
	if u.Role != nil && !u.Role.Valid() {
		return nil, common.Detailed(common.ErrorValidation, "unknown role %q", *u.Role)
	}

	var updated *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		current, err := repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return userNotFound(id)
			}
			return asInternal(err)
		}

		if err := auth.AuthorizeProfileUpdate(caller, id, u); err != nil {
			return err
		}

		if u.Empty() {
			updated = current
			return nil
		}

		if u.UserName != nil {
			taken, err := repo.UsernameTakenByOther(ctx, *u.UserName, id)
			if err != nil {
				return asInternal(err)
			}
			if taken {
				return usernameTaken(*u.UserName)
			}
		}
		if u.Email != nil {
			taken, err := repo.EmailTakenByOther(ctx, *u.Email, id)
			if err != nil {
				return asInternal(err)
			}
			if taken {
				return emailTaken(*u.Email)
			}
		}

		if u.Password != nil {
			digest, err := s.hasher.Hash(*u.Password)
			if err != nil {
				return err
			}
			u.Password = &digest
		}

		updated, err = repo.Update(ctx, id, u)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return userNotFound(id)
			}
			return translateUserWrite(err, deref(u.UserName), deref(u.Email))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes account id. Admins may delete anyone, users only
// themselves.
func (s *UserService) Delete(ctx context.Context, caller auth.Identity, id int64) error {
	if err := auth.RequireAdminOrSelf(caller, id); err != nil {
		return err
	}

	err := s.repomanager.Users(s.db).Delete(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return userNotFound(id)
		}
		return asInternal(err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
