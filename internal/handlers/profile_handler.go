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

type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

func (p *ProfileHandler) RegisterRoutes(router *gin.Engine, mw *Middleware) {
	profileGr := router.Group("/auth/me/profile", mw.RequireAuth())
	profileGr.PUT("", p.UpdateProfile)
	profileGr.POST("/picture", p.UploadPicture)
}

func (p *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID := c.GetString(ContextUserIDKey)

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_REQUEST_FORMAT", "Invalid request format"))
		return
	}

	profile, err := p.profileService.UpdateProfile(userID, req)
	if err != nil {
		log.Printf("Profile update failed for user %s: %v", userID, err)
		p.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(profile))
}

func (p *ProfileHandler) UploadPicture(c *gin.Context) {
	userID := c.GetString(ContextUserIDKey)

	fileHeader, err := c.FormFile("profile_pic")
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("FILE_REQUIRED", "profile_pic file is required"))
		return
	}

	url, err := p.profileService.UploadProfilePicture(c.Request.Context(), userID, fileHeader)
	if err != nil {
		log.Printf("Profile picture upload failed for user %s: %v", userID, err)
		p.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(gin.H{"profile_pic": url}))
}

func (p *ProfileHandler) writeError(c *gin.Context, err error) {
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
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, utils.CreateErrorResponse("NOT_FOUND", "Profile not found"))
	default:
		c.JSON(http.StatusInternalServerError, utils.CreateErrorResponse("INTERNAL_ERROR", "Internal error"))
	}
}
