// Package services contains server-side business logic: authentication,
// user accounts, pieces and likes. Every service takes the database handle
// and a repository manager and runs multi-step operations in a transaction.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/novelnest/internal/common"
	"github.com/dmitrijs2005/novelnest/internal/server/auth"
	"github.com/dmitrijs2005/novelnest/internal/server/repositories/repomanager"
)

const TokenTypeBearer = "bearer"

// AccessToken is the login response.
type AccessToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// AuthService verifies credentials, issues access tokens and resolves
// bearer tokens back to identities.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codec       *auth.TokenCodec
	hasher      *auth.PasswordHasher
	clock       func() time.Time
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, codec *auth.TokenCodec, hasher *auth.PasswordHasher) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: m,
		codec:       codec,
		hasher:      hasher,
		clock:       time.Now,
	}
}

// Login checks the username and password and returns a fresh access token.
// An unknown user and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, userName, password string) (*AccessToken, error) {
	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.codec.Issue(user.ID, s.clock())
	if err != nil {
		return nil, err
	}
	return &AccessToken{AccessToken: token, TokenType: TokenTypeBearer}, nil
}

// Authenticate verifies token and loads its subject. A subject that no
// longer exists is an authentication failure, and the role is always the
// one currently stored.
func (s *AuthService) Authenticate(ctx context.Context, token string) (auth.Identity, error) {
	id, err := s.codec.Verify(token, s.clock())
	if err != nil {
		return auth.Identity{}, err
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return auth.Identity{}, common.ErrInvalidToken
		}
		return auth.Identity{}, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	return auth.Identity{ID: user.ID, Role: user.Role}, nil
}
