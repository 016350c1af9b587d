// Package auth validates the bearer tokens minted by the identity service and
// exposes the authenticated principal to handlers.
package auth

import (
	"context"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
)

const (
	RoleAdmin   = "ADMIN"
	RoleTeacher = "TEACHER"
)

type ctxKey int

// Key is the context key under which Claims are stored.
const Key ctxKey = 1

// Claims is the principal carried by an access token.
type Claims struct {
	jwt.StandardClaims
	UserId   int    `json:"user_id"`
	TenantId int    `json:"tenant_id"`
	BranchId *int   `json:"branch_id,omitempty"`
	Role     string `json:"role"`
}

// Authorized reports whether the claims hold one of roles.
func (c Claims) Authorized(roles ...string) bool {
	for _, role := range roles {
		if c.Role == role {
			return true
		}
	}
	return false
}

// Auth checks HMAC-signed tokens.
type Auth struct {
	key    []byte
	parser *jwt.Parser
}

func New(key string) (*Auth, error) {
	if key == "" {
		return nil, errors.New("jwt key is empty")
	}

	return &Auth{
		key:    []byte(key),
		parser: &jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Name}},
	}, nil
}

// GenerateToken signs claims. The engine itself never issues tokens; this is
// used by tooling and tests.
func (a *Auth) GenerateToken(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	str, err := token.SignedString(a.key)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return str, nil
}

// ValidateToken verifies the signature and expiry of tokenStr.
func (a *Auth) ValidateToken(tokenStr string) (Claims, error) {
	var claims Claims

	keyFunc := func(t *jwt.Token) (interface{}, error) {
		return a.key, nil
	}

	token, err := a.parser.ParseWithClaims(tokenStr, &claims, keyFunc)
	if err != nil {
		return Claims{}, errors.Wrap(err, "parsing token")
	}
	if !token.Valid {
		return Claims{}, errors.New("invalid token")
	}
	if claims.TenantId == 0 || claims.UserId == 0 {
		return Claims{}, errors.New("token has no tenant or user")
	}

	return claims, nil
}

// GetClaims returns the claims stored in ctx by the authentication middleware.
func GetClaims(ctx context.Context) (Claims, error) {
	claims, ok := ctx.Value(Key).(Claims)
	if !ok {
		return Claims{}, errors.New("claims missing from context")
	}
	return claims, nil
}
