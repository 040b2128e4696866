package handlers

import (
	"net/http"
	"strings"

	"account-service/internal/models"
	"account-service/internal/services"
	"account-service/utils"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserIDKey = "user_id"
	ContextClaimsKey = "claims"
)

type Middleware struct {
	jwtService *services.JWTService
}

func NewMiddleware(jwtService *services.JWTService) *Middleware {
	return &Middleware{
		jwtService: jwtService,
	}
}

// RequireAuth validates the bearer access token and puts the caller's
// identity on the request context. The role snapshot in the claims is not
// trusted for authorization; handlers needing roles re-read the ledger.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				utils.CreateErrorResponse("MISSING_TOKEN", "authorization header required"))
			return
		}

		tokenString := authHeader
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = authHeader[7:]
		}

		claims, err := m.jwtService.VerifyToken(tokenString, models.TokenTypeAccess)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				utils.CreateErrorResponse("INVALID_TOKEN", "token validation failed"))
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextClaimsKey, claims)
		c.Next()
	}
}
