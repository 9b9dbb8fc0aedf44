package web

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// JwtAuthenticator guards the operations api. Tokens must be signed with the
// private half of the configured rsa key and carry an admin or viewer role.
type JwtAuthenticator struct {
	publicKey *rsa.PublicKey
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func NewJWTAuthenticator(publicKeyPEM []byte) (*JwtAuthenticator, error) {
	block, _ := pem.Decode(publicKeyPEM)
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}

	publicKey, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	rsaPublicKey, ok := publicKey.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("not an RSA public key")
	}

	return &JwtAuthenticator{
		publicKey: rsaPublicKey,
	}, nil
}

func (a *JwtAuthenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := a.authenticate(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		if err := a.authorize(claims); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}

		c.Next()
	}
}

func (a *JwtAuthenticator) authenticate(header string) (*Claims, error) {
	if header == "" {
		return nil, fmt.Errorf("missing authorization header")
	}

	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return nil, fmt.Errorf("authorization header must use the bearer scheme")
	}

	claims := &Claims{}

	// also checks registered claims like expiry time
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.publicKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

func (a *JwtAuthenticator) authorize(claims *Claims) error {
	switch strings.ToLower(claims.Role) {
	case "admin", "viewer":
		return nil
	default:
		return fmt.Errorf("role %q may not read operations", claims.Role)
	}
}
