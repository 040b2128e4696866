package handlers

import (
	"errors"
	"log"
	"net/http"

	"account-service/internal/models"
	"account-service/internal/services"
	"account-service/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	userService    services.IUserService
	sessionService *services.SessionService
}

func NewAuthHandler(userService services.IUserService, sessionService *services.SessionService) *AuthHandler {
	return &AuthHandler{
		userService:    userService,
		sessionService: sessionService,
	}
}

func (a *AuthHandler) RegisterRoutes(router *gin.Engine, mw *Middleware) {
	authGr := router.Group("/auth")

	// Public routes
	authGr.POST("/register", a.Register)
	authGr.POST("/login", a.Login)
	authGr.POST("/token/refresh", a.Refresh)

	// Routes behind a valid access token
	authPro := authGr.Group("", mw.RequireAuth())
	authPro.GET("/me", a.Me)
	authPro.POST("/logout", a.Logout)
}

// Register handles user registration: it creates the user and profile,
// assigns the default role when present and returns the first token pair
// with a role snapshot.
func (a *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("Invalid register request format: %v", err)
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_REQUEST_FORMAT", "Invalid request format"))
		return
	}

	user, pair, err := a.userService.Register(req)
	if err != nil {
		log.Printf("Registration failed for %s/%s: %v", req.Username, req.Email, err)
		a.writeError(c, err)
		return
	}

	roles, rolesErr := a.activeRoleSlugs(user.ID)
	if rolesErr != nil {
		log.Printf("Failed to read roles after registration for %s: %v", user.ID, rolesErr)
		roles = []string{}
	}

	c.JSON(http.StatusCreated, gin.H{
		"refresh":  pair.Refresh,
		"access":   pair.Access,
		"username": user.Username,
		"email":    user.Email,
		"roles":    roles,
	})
}

// Login authenticates by username or email and returns a token pair. Bad
// credentials always come back as the same generic 401.
func (a *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("Invalid login request format: %v", err)
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_REQUEST_FORMAT", "Invalid request format"))
		return
	}

	_, pair, err := a.userService.Login(req.Username, req.Password)
	if err != nil {
		log.Printf("Login failed for %s: %v", req.Username, err)
		c.JSON(http.StatusUnauthorized, utils.CreateErrorResponse("INVALID_CREDENTIALS", "Login failed"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"refresh": pair.Refresh,
		"access":  pair.Access,
	})
}

// Refresh rotates a refresh token: the presented token is invalidated and
// a new pair is returned.
func (a *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Refresh == "" {
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_REQUEST_FORMAT", "Refresh token required"))
		return
	}

	pair, err := a.sessionService.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		log.Printf("Token refresh failed: %v", err)
		c.JSON(http.StatusUnauthorized, utils.CreateErrorResponse("INVALID_TOKEN", "Token is invalid or expired"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access":  pair.Access,
		"refresh": pair.Refresh,
	})
}

// Me returns the authenticated user with profile and live roles.
func (a *AuthHandler) Me(c *gin.Context) {
	userID := c.GetString(ContextUserIDKey)

	me, err := a.userService.Me(userID)
	if err != nil {
		log.Printf("Failed to load session user %s: %v", userID, err)
		a.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, me)
}

// Logout blacklists the supplied refresh token. All token problems report
// uniformly as one 400 failure.
func (a *AuthHandler) Logout(c *gin.Context) {
	var req models.LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Refresh == "" {
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("REFRESH_REQUIRED", "Refresh token required"))
		return
	}

	if err := a.sessionService.Logout(c.Request.Context(), req.Refresh); err != nil {
		log.Printf("Logout failed: %v", err)
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_TOKEN", "Invalid or expired token"))
		return
	}

	c.JSON(http.StatusResetContent, gin.H{"detail": "Successfully logged out."})
}

func (a *AuthHandler) activeRoleSlugs(userID string) ([]string, error) {
	me, err := a.userService.Me(userID)
	if err != nil {
		return nil, err
	}
	slugs := make([]string, 0, len(me.Roles))
	for _, role := range me.Roles {
		slugs = append(slugs, role.Slug)
	}
	return slugs, nil
}

// writeError maps service errors onto HTTP responses.
func (a *AuthHandler) writeError(c *gin.Context, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, utils.ErrorResponse{
			Success: false,
			Error: utils.APIError{
				Code:    "VALIDATION_ERROR",
				Message: "Validation failed",
				Fields:  verr.Fields,
			},
		})
	case errors.Is(err, models.ErrConflict):
		c.JSON(http.StatusConflict, utils.CreateErrorResponse("ALREADY_EXISTS", "Resource already exists"))
	case errors.Is(err, models.ErrRoleInactive):
		c.JSON(http.StatusUnprocessableEntity, utils.CreateErrorResponse("ROLE_INACTIVE", "Role is inactive"))
	case errors.Is(err, models.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, utils.CreateErrorResponse("INVALID_CREDENTIALS", "Authentication failed"))
	case errors.Is(err, models.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, utils.CreateErrorResponse("INVALID_TOKEN", "Token is invalid or expired"))
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, utils.CreateErrorResponse("NOT_FOUND", "Resource not found"))
	default:
		c.JSON(http.StatusInternalServerError, utils.CreateErrorResponse("INTERNAL_ERROR", "Internal error"))
	}
}
