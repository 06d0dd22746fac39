// Package auth holds the authentication core: password digests, the bearer
// token codec and the role/ownership access checks.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/novelnest/internal/common"
	"github.com/dmitrijs2005/novelnest/internal/server/config"
	"github.com/golang-jwt/jwt/v5"
)

var ErrUnsupportedAlgorithm = errors.New("unsupported signing algorithm")

// Claims is the token payload: the standard registered claims (only exp is
// set) plus the subject's user id. ExpiresAtNano is the exact expiry; exp
// is that instant rounded up to the next whole second.
type Claims struct {
	jwt.RegisteredClaims
	UserID        *int64 `json:"user_id,omitempty"`
	ExpiresAtNano *int64 `json:"exp_ns,omitempty"`
}

// TokenCodec issues and verifies HMAC-signed access tokens.
type TokenCodec struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
}

// NewTokenCodec builds a codec from the secret, algorithm and lifetime in
// cfg. Only HS256, HS384 and HS512 are accepted.
func NewTokenCodec(cfg *config.Config) (*TokenCodec, error) {
	method := jwt.GetSigningMethod(cfg.SigningAlgorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, cfg.SigningAlgorithm)
	}
	if cfg.SecretKey == "" {
		return nil, config.ErrEmptySecret
	}
	if cfg.AccessTokenValidityDuration < config.MinTokenTTL {
		return nil, config.ErrBadTokenTTL
	}

	return &TokenCodec{
		secret: []byte(cfg.SecretKey),
		method: method,
		ttl:    cfg.AccessTokenValidityDuration,
	}, nil
}

// TTL is the lifetime of issued tokens.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// ceilSecond rounds t up to a whole second, the precision of exp.
func ceilSecond(t time.Time) time.Time {
	s := t.Truncate(time.Second)
	if s.Before(t) {
		s = s.Add(time.Second)
	}
	return s
}

// Issue signs a token for subjectID that expires at now+TTL.
func (c *TokenCodec) Issue(subjectID int64, now time.Time) (string, error) {
	expiry := now.Add(c.ttl)
	expiryNano := expiry.UnixNano()

	token := jwt.NewWithClaims(c.method, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(ceilSecond(expiry)),
		},
		UserID:        &subjectID,
		ExpiresAtNano: &expiryNano,
	})

	s, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("%w: sign token: %v", common.ErrorInternal, err)
	}
	return s, nil
}

// Verify checks the signature, algorithm, structure and expiry of token at
// instant now and returns the subject id. Every failure is reported as
// common.ErrInvalidToken.
func (c *TokenCodec) Verify(token string, now time.Time) (int64, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil || !parsed.Valid {
		return 0, common.ErrInvalidToken
	}

	if claims.UserID == nil || claims.ExpiresAtNano == nil {
		return 0, common.ErrInvalidToken
	}
	if !now.Before(time.Unix(0, *claims.ExpiresAtNano)) {
		return 0, common.ErrInvalidToken
	}

	return *claims.UserID, nil
}
