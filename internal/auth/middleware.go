package auth

import (
	"net/http"
	"strings"

	"microhub/internal/apperr"

	"github.com/gin-gonic/gin"
)

const authorizationHeader = "Authorization"
const bearerPrefix = "Bearer "

const ginIdentityKey = "identity"

// RequireBearer verifies the bearer token and injects the identity into the request
// context before any handler runs. Every rejection is a 401; the verifier's message
// is passed through when it has one.
func RequireBearer(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(authorizationHeader)
		if !strings.HasPrefix(raw, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tok := strings.TrimSpace(strings.TrimPrefix(raw, bearerPrefix))
		if tok == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}

		id, err := v.Verify(c.Request.Context(), tok)
		if err != nil {
			msg := msgAuthFailed
			if e, ok := apperr.As(err); ok && e.Message != "" {
				msg = e.Message
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), id, tok))
		c.Set(ginIdentityKey, id)

		c.Next()
	}
}

// MustIdentity returns the identity set by RequireBearer. Only use it on routes
// behind that middleware.
func MustIdentity(c *gin.Context) Identity {
	if v, ok := c.Get(ginIdentityKey); ok {
		if id, ok := v.(Identity); ok {
			return id
		}
	}
	id, _ := IdentityFrom(c.Request.Context())
	return id
}
