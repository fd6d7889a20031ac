// Package auth implements HMAC-signed access tokens with permission scopes.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Scopes known to the API.
const (
	ScopeUsersRead  = "users:read"
	ScopeUsersWrite = "users:write"
	ScopeAll        = "*"
)

var (
	// ErrInvalidToken is returned for malformed, tampered or expired tokens.
	ErrInvalidToken = errors.New("invalid access token")

	// ErrPermissionDenied is returned when a valid token lacks the
	// required scope.
	ErrPermissionDenied = errors.New("permission denied")
)

// Claims carries the verified contents of an access token.
type Claims struct {
	ID        string    `json:"id"`
	Scopes    []string  `json:"scopes"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Validator checks access tokens and permissions. The web layer depends on
// this interface only, so the token scheme stays swappable.
type Validator interface {
	ValidateAccessToken(token string) (*Claims, error)
	ValidatePermissions(claims *Claims, scope string) error
}

// TokenService issues and validates HMAC-SHA256 signed tokens.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a token service.
func NewTokenService(secret string) *TokenService {
	// Use a default secret if none provided (for development)
	if secret == "" {
		secret = "face-registry-dev-secret-change-in-production"
	}
	return &TokenService{secret: []byte(secret)}
}

// Issue creates a signed token carrying the given scopes.
func (s *TokenService) Issue(scopes []string, ttl time.Duration) (string, error) {
	claims := Claims{
		ID:        uuid.NewString(),
		Scopes:    scopes,
		ExpiresAt: time.Now().Add(ttl),
	}

	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("marshaling claims: %w", err)
	}

	encoded := base64.URLEncoding.EncodeToString(payload)
	return encoded + "." + s.sign(encoded), nil
}

// ValidateAccessToken verifies the token signature and expiry.
func (s *TokenService) ValidateAccessToken(token string) (*Claims, error) {
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 {
		return nil, ErrInvalidToken
	}

	encoded, signature := parts[0], parts[1]
	if !hmac.Equal([]byte(signature), []byte(s.sign(encoded))) {
		return nil, ErrInvalidToken
	}

	payload, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidToken
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, ErrInvalidToken
	}

	if time.Now().After(claims.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	return &claims, nil
}

// ValidatePermissions checks that the claims carry the required scope.
func (s *TokenService) ValidatePermissions(claims *Claims, scope string) error {
	for _, granted := range claims.Scopes {
		if granted == scope || granted == ScopeAll {
			return nil
		}
	}
	return ErrPermissionDenied
}

// sign creates an HMAC signature for data
func (s *TokenService) sign(data string) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(data))
	return base64.URLEncoding.EncodeToString(h.Sum(nil))
}

// Verify interface compliance.
var _ Validator = (*TokenService)(nil)
