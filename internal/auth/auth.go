// Package auth issues and verifies the JWTs that guard both the REST API
// and the relay handshake.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/fr-yash/CoBuilderr/internal/models"
	"github.com/fr-yash/CoBuilderr/internal/store"
)

// ErrUnauthorized is returned for missing, malformed, expired or revoked
// tokens.
var ErrUnauthorized = errors.New("unauthorized")

// TokenTTL is the lifetime of issued tokens, and the blacklist window on
// logout.
const TokenTTL = 24 * time.Hour

// Claims is the verified identity carried by a token.
type Claims struct {
	UserID uuid.UUID
	Email  string
}

// Verifier issues and verifies HS256 tokens. A nil redis store disables
// revocation checks (development mode).
type Verifier struct {
	secret []byte
	redis  *store.RedisStore
}

// NewVerifier creates a Verifier with the given signing secret.
func NewVerifier(secret string, redis *store.RedisStore) *Verifier {
	return &Verifier{secret: []byte(secret), redis: redis}
}

// Issue mints a token for the user.
func (v *Verifier) Issue(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(TokenTTL).Unix(),
	})
	return token.SignedString(v.secret)
}

// Verify checks the token's signature, expiry and revocation status, and
// returns the identity it carries.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrUnauthorized
	}

	// Revoked tokens fail before signature verification, matching the
	// blacklist-first order of the login flow.
	if v.redis != nil && v.redis.IsTokenRevoked(ctx, tokenString) {
		return nil, fmt.Errorf("%w: token revoked", ErrUnauthorized)
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: malformed claims", ErrUnauthorized)
	}

	sub, _ := mapClaims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed subject", ErrUnauthorized)
	}
	email, _ := mapClaims["email"].(string)

	return &Claims{UserID: userID, Email: email}, nil
}

// Revoke blacklists a token for the remainder of its lifetime. No-op
// without Redis.
func (v *Verifier) Revoke(ctx context.Context, tokenString string) error {
	if v.redis == nil {
		return nil
	}
	return v.redis.RevokeToken(ctx, tokenString, TokenTTL)
}
