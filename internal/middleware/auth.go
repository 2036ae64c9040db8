package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/verdantcart/verdantcart-checkout-service/internal/repository"
)

const (
	// ContextUserID is the gin context key carrying the caller's user id.
	ContextUserID = "user_id"
	// ContextUserEmail is the gin context key carrying the caller's email.
	ContextUserEmail = "user_email"

	revokedTokenPrefix = "revoked_jti:"
)

// Auth validates the bearer token and populates the caller's identity. Token
// issuance lives in the identity service; this side only verifies HS256
// signatures and checks the jti against the revocation list.
func Auth(secret string, revocations repository.EphemeralStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
			return
		}

		sub, _ := claims["sub"].(string)
		if sub == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token has no subject"})
			return
		}

		if jti, _ := claims["jti"].(string); jti != "" && revocations != nil {
			revoked, err := revocations.Exists(c.Request.Context(), revokedTokenPrefix+jti)
			if err == nil && revoked {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token revoked"})
				return
			}
		}

		c.Set(ContextUserID, sub)
		if email, _ := claims["email"].(string); email != "" {
			c.Set(ContextUserEmail, email)
		}
		c.Next()
	}
}

// UserID returns the authenticated caller's id from the gin context.
func UserID(c *gin.Context) (string, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// UserEmail returns the authenticated caller's email, if the token carried one.
func UserEmail(c *gin.Context) string {
	v, ok := c.Get(ContextUserEmail)
	if !ok {
		return ""
	}
	email, _ := v.(string)
	return email
}
