package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meetcrm/internal/model"
	"meetcrm/internal/util"
)

const claimsKey = "claims"

// AuthMiddleware validates the bearer token and stores its claims in
// the request context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := util.ExtractToken(c.Request)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		claims, err := util.ParseToken(token, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireRole rejects requests whose token role is not in the allowed set.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		for _, r := range roles {
			if claims.Role == string(r) {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	}
}

// CurrentClaims returns the token claims stored by AuthMiddleware.
func CurrentClaims(c *gin.Context) (util.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return util.Claims{}, false
	}
	claims, ok := v.(util.Claims)
	return claims, ok
}
