package auth

import (
	"github.com/dmitrijs2005/novelnest/internal/common"
	"github.com/dmitrijs2005/novelnest/internal/server/models"
)

// Identity is the authenticated caller.
type Identity struct {
	ID   int64
	Role models.Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

func RequireAdmin(id Identity) error {
	if !id.IsAdmin() {
		return common.Detailed(common.ErrForbidden, "Admin access required")
	}
	return nil
}

func RequireAdminOrSelf(id Identity, target int64) error {
	if !id.IsAdmin() && id.ID != target {
		return common.Detailed(common.ErrForbidden, "Access denied: Admin access required or you can only access your own data")
	}
	return nil
}

func RequireSelf(id Identity, target int64) error {
	if id.ID != target {
		return common.Detailed(common.ErrForbidden, "Access denied: You can only access or change your own data")
	}
	return nil
}

// AuthorizeProfileUpdate decides whether id may apply u to the account
// target. Only admins set roles, and a non-admin asking for one is refused
// before anything else in u is looked at. Username, email and password can
// only be changed by the account owner, so an admin editing someone else
// may touch nothing but the role.
func AuthorizeProfileUpdate(id Identity, target int64, u models.UserUpdate) error {
	if err := RequireAdminOrSelf(id, target); err != nil {
		return err
	}
	if u.Role != nil && !id.IsAdmin() {
		return common.Detailed(common.ErrForbidden, "Only admins can change user roles")
	}
	if u.TouchesProfile() {
		return RequireSelf(id, target)
	}
	return nil
}
