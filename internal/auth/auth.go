package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
)

// Claims is the user profile carried by an upstream access token
type Claims struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CompanyID string    `json:"company_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the token expiry has passed. Tokens without an
// expiry never expire locally.
func (c *Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// ParseClaims decodes the claims of an upstream access token without checking
// its signature. The upstream API verifies tokens; the dashboard only needs
// the profile they describe.
func ParseClaims(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	mc := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(tokenString, mc); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims := &Claims{
		UserID:    firstString(mc, "sub", "id", "user_id", "userId"),
		Email:     firstString(mc, "email"),
		Role:      firstString(mc, "role", "roleName", "role_name"),
		CompanyID: firstString(mc, "companyId", "company_id"),
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// firstString returns the first of keys present in mc, formatting numbers
// without a fractional part
func firstString(mc jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		switch v := mc[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// GenerateRandomToken generates a random URL-safe token
func GenerateRandomToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}
