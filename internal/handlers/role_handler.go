package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"account-service/internal/models"
	"account-service/internal/services"
	"account-service/utils"

	"github.com/gin-gonic/gin"
)

type RoleHandler struct {
	roleService *services.RoleService
}

func NewRoleHandler(roleService *services.RoleService) *RoleHandler {
	return &RoleHandler{
		roleService: roleService,
	}
}

func (r *RoleHandler) RegisterRoutes(router *gin.Engine, mw *Middleware) {
	roleGr := router.Group("/roles", mw.RequireAuth())
	roleGr.POST("", r.CreateRole)
	roleGr.GET("", r.ListRoles)
	roleGr.PATCH("/:id/active", r.SetRoleActive)
	roleGr.POST("/:id/assign", r.AssignRole)
	roleGr.POST("/:id/revoke", r.RevokeRole)
}

// InitDefaultRoles seeds the member and admin roles. A conflict means they
// already exist and is not an error.
func (r *RoleHandler) InitDefaultRoles() error {
	seeds := []struct {
		name        string
		description string
	}{
		{"Member", "Default role for new users"},
		{"Admin", "Administrative role"},
	}

	for _, seed := range seeds {
		desc := seed.description
		role, err := r.roleService.CreateRole(seed.name, "", &desc)
		if err != nil {
			if errors.Is(err, models.ErrConflict) {
				continue
			}
			return err
		}
		log.Printf("default role created: %s (%s)", role.Name, role.Slug)
	}
	return nil
}

func (r *RoleHandler) CreateRole(c *gin.Context) {
	var req models.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_REQUEST_FORMAT", "Invalid request format"))
		return
	}

	role, err := r.roleService.CreateRole(req.Name, req.Slug, req.Description)
	if err != nil {
		log.Printf("Role creation failed for %q: %v", req.Name, err)
		r.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, utils.CreateSuccessResponse(role))
}

func (r *RoleHandler) ListRoles(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	roles, err := r.roleService.ListRoles(activeOnly)
	if err != nil {
		log.Printf("Failed to list roles: %v", err)
		r.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(roles))
}

func (r *RoleHandler) SetRoleActive(c *gin.Context) {
	roleID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_ROLE_ID", "Role id must be an integer"))
		return
	}

	var req models.SetRoleActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_REQUEST_FORMAT", "Field 'active' is required"))
		return
	}

	if err := r.roleService.SetRoleActive(roleID, *req.Active); err != nil {
		log.Printf("Failed to set role %d active=%v: %v", roleID, *req.Active, err)
		r.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(nil))
}

// AssignRole records the assignment with the authenticated caller as
// assigner.
func (r *RoleHandler) AssignRole(c *gin.Context) {
	roleID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_ROLE_ID", "Role id must be an integer"))
		return
	}

	var req models.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_REQUEST_FORMAT", "Field 'user_id' is required"))
		return
	}

	var assignedBy *string
	if callerID := c.GetString(ContextUserIDKey); callerID != "" {
		assignedBy = &callerID
	}

	entry, err := r.roleService.AssignRole(req.UserID, roleID, assignedBy, req.Note)
	if err != nil {
		log.Printf("Failed to assign role %d to user %s: %v", roleID, req.UserID, err)
		r.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(entry))
}

func (r *RoleHandler) RevokeRole(c *gin.Context) {
	roleID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_ROLE_ID", "Role id must be an integer"))
		return
	}

	var req models.RevokeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_REQUEST_FORMAT", "Field 'user_id' is required"))
		return
	}

	if err := r.roleService.RevokeRole(req.UserID, roleID); err != nil {
		log.Printf("Failed to revoke role %d from user %s: %v", roleID, req.UserID, err)
		r.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(nil))
}

func (r *RoleHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrConflict):
		c.JSON(http.StatusConflict, utils.CreateErrorResponse("ROLE_EXISTS", "Role name or slug already exists"))
	case errors.Is(err, models.ErrRoleInactive):
		c.JSON(http.StatusUnprocessableEntity, utils.CreateErrorResponse("ROLE_INACTIVE", "Cannot assign an inactive role"))
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, utils.CreateErrorResponse("ROLE_NOT_FOUND", "Role not found"))
	default:
		c.JSON(http.StatusInternalServerError, utils.CreateErrorResponse("INTERNAL_ERROR", "Internal error"))
	}
}
