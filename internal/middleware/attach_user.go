package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"server-identity/internal/managers"
	"server-identity/internal/schemas"
	"server-identity/internal/utils"
)

// AttachUser runs behind the JWT middleware and resolves the access-token
// subject into a user id the handlers can pick up directly.
func AttachUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := c.Value(utils.ClaimsKey.String()).(*managers.AccessClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, &schemas.ErrorDTO{Error: *schemas.Unauthorized})
			return
		}

		userId, err := uuid.Parse(claims.Subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, &schemas.ErrorDTO{Error: *schemas.Unauthorized})
			return
		}

		c.Set(utils.UserIdKey.String(), userId)
		c.Next()
	}
}
