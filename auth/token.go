// Package auth implements the stateless token service and the ownership
// guard for content mutation.
package auth

import (
	"context"
	"time"

	"tifblog/models"
	"tifblog/repository"

	"github.com/golang-jwt/jwt/v5"
)

// tokenTTL is the fixed lifetime of an issued token.
const tokenTTL = time.Hour

// TokenService issues and verifies signed bearer tokens binding a user
// identity to an expiry instant. Tokens are never stored server-side;
// validity is purely signature plus expiry at verification time.
type TokenService struct {
	secret []byte
	users  repository.UserRepository
}

// NewTokenService creates a token service signing with the given secret and
// resolving identities through the given user repository.
func NewTokenService(secret string, users repository.UserRepository) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		users:  users,
	}
}

// Issue produces an HS256-signed token for the user, expiring one hour from
// now. Stateless: no side effects beyond the computation.
func (s *TokenService) Issue(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"exp":     time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify decodes a token and returns the user it references. It reports
// ok=false for a malformed token, a bad signature, a wrong signing method,
// an expired timestamp, or an unknown user id, without distinguishing
// which, so callers cannot probe why a token was rejected. A failed
// verification is always recoverable: the caller treats the request as
// unauthenticated.
func (s *TokenService) Verify(ctx context.Context, tokenString string) (*models.User, bool) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, false
	}

	// JSON numbers decode as float64
	rawID, ok := claims["user_id"].(float64)
	if !ok || rawID < 0 {
		return nil, false
	}

	user, err := s.users.GetByID(ctx, uint(rawID))
	if err != nil || user == nil {
		return nil, false
	}
	return user, true
}
