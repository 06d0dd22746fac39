package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/novelnest/internal/common"
	"github.com/dmitrijs2005/novelnest/internal/server/config"
	"golang.org/x/crypto/bcrypt"
)

// ErrCorruptDigest means a stored digest could not be parsed. It is an
// internal error: the password table should only ever hold our own output.
var ErrCorruptDigest = fmt.Errorf("%w: corrupt password digest", common.ErrorInternal)

var ErrBadCost = errors.New("bcrypt cost out of range")

// PasswordHasher produces and checks bcrypt digests.
//
// bcrypt ignores input past 72 bytes, so the secret is first reduced to a
// base64 SHA-256 digest (44 bytes). Secrets of any length stay significant.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cfg *config.Config) (*PasswordHasher, error) {
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: %d", ErrBadCost, cfg.BcryptCost)
	}
	return &PasswordHasher{cost: cfg.BcryptCost}, nil
}

func prehash(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

// Hash returns a salted digest of secret. Two calls never return the same
// digest.
func (h *PasswordHasher) Hash(secret string) (string, error) {
	pre := prehash(secret)
	defer common.WipeByteArray(pre)

	digest, err := bcrypt.GenerateFromPassword(pre, h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: hash password: %v", common.ErrorInternal, err)
	}
	return string(digest), nil
}

// Verify reports whether secret produced digest. A wrong secret is
// (false, nil); an unreadable digest is ErrCorruptDigest.
func (h *PasswordHasher) Verify(secret, digest string) (bool, error) {
	pre := prehash(secret)
	defer common.WipeByteArray(pre)

	err := bcrypt.CompareHashAndPassword([]byte(digest), pre)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrCorruptDigest, err)
	}
}
