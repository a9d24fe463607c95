package middleware

import (
	"net/http"
	"strings"

	"approvalflow/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set by Authenticate.
const (
	ActorEmailKey = "actorEmail"
	ActorNameKey  = "actorName"
)

// Authenticate validates the JWT (cookie first, then Authorization header)
// and stores the caller's email in the gin context. Authorization decisions
// are made by the services, not here.
func Authenticate(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Try cookie first, fallback to Authorization header
		tokenString, cookieErr := c.Cookie("access_token")
		if cookieErr != nil || tokenString == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
				return
			}
			tokenString = parts[1]
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token claims"))
			return
		}

		email := claimEmail(claims)
		if email == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Email not found in token"))
			return
		}

		c.Set(ActorEmailKey, email)
		if name, ok := claims["name"].(string); ok {
			c.Set(ActorNameKey, strings.TrimSpace(name))
		}
		c.Next()
	}
}

// claimEmail reads the `email` claim, falling back to an email-shaped `sub`.
func claimEmail(claims jwt.MapClaims) string {
	for _, key := range []string{"email", "sub"} {
		if v, ok := claims[key].(string); ok && strings.Contains(v, "@") {
			return strings.ToLower(strings.TrimSpace(v))
		}
	}
	return ""
}

// ActorEmail returns the authenticated caller's email.
func ActorEmail(c *gin.Context) string {
	return c.GetString(ActorEmailKey)
}

// ActorName returns the caller's display name, if the token carries one.
func ActorName(c *gin.Context) string {
	return c.GetString(ActorNameKey)
}
