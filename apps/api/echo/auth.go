package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/muchiri/karibu/core"
)

// Auth is a consumed collaborator: tokens are minted by the identity
// provider fronting the whole portal. This API only verifies them and
// reads the current user id + role out of the claims.

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	claimsContextKey = "userToken"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"` // "user" | "admin"
}

func (c Claims) IsAdmin() bool { return c.Role == RoleAdmin }

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    conf.SecretKey,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    claimsContextKey,
		Claims:        new(Claims),
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
// It exists for the admin tooling and the test suite; the production tokens
// come from the identity provider.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	if claims.ExpiresAt == 0 {
		claims.ExpiresAt = time.Now().Add(conf.Server.JWTExpirationDelta).Unix()
	}
	if claims.Issuer == "" {
		claims.Issuer = conf.AppName
	}
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)
	return token.SignedString(conf.SecretKey)
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(claimsContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}
