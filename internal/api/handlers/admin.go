package handlers

import (
	"net/http"

	"github.com/atriumcms/atrium/internal/api/middleware"
	"github.com/atriumcms/atrium/internal/audit"
	"github.com/atriumcms/atrium/internal/auth"
	"github.com/atriumcms/atrium/internal/models"
	"github.com/atriumcms/atrium/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminHandler serves user, role and permission management.
type AdminHandler struct {
	db  *gorm.DB
	svc *service.AuthService
}

// NewAdminHandler creates the admin handler.
func NewAdminHandler(db *gorm.DB, svc *service.AuthService) *AdminHandler {
	return &AdminHandler{db: db, svc: svc}
}

// ListUsers godoc
// @Summary List all users
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.User
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var users []models.User
	if err := h.db.Preload("Role").Order("created_at").Find(&users).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// CreateUserRequest carries admin user-creation input.
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name"`
	RoleID   *uint  `json:"role_id"`
}

// CreateUser godoc
// @Summary Create a user
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param user body CreateUserRequest true "User details"
// @Success 201 {object} models.User
// @Failure 409 {object} ErrorResponse
// @Router /admin/users [post]
func (h *AdminHandler) CreateUser(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	user := models.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: &hash,
		RoleID:       req.RoleID,
	}
	if err := h.db.Create(&user).Error; err != nil {
		if service.IsDuplicate(err) {
			respondError(c, &service.ConflictError{Message: "email already registered"})
			return
		}
		respondError(c, err)
		return
	}

	audit.LogAction(h.db, actor.ID, audit.ActionCreateUser, "user:"+user.ID.String(),
		map[string]interface{}{"email": user.Email})
	c.JSON(http.StatusCreated, user)
}

// AssignRoleRequest sets or clears a user's role.
type AssignRoleRequest struct {
	RoleID *uint `json:"role_id"`
}

// AssignRole godoc
// @Summary Assign a role to a user
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "User UUID"
// @Success 200 {object} models.User
// @Failure 404 {object} ErrorResponse
// @Router /admin/users/{id}/role [put]
func (h *AdminHandler) AssignRole(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid user id")
		return
	}

	var req AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		respondError(c, service.ErrNotFound)
		return
	}

	if req.RoleID != nil {
		var role models.Role
		if err := h.db.First(&role, *req.RoleID).Error; err != nil {
			badRequest(c, "unknown role")
			return
		}
	}

	if err := h.db.Model(&user).Update("role_id", req.RoleID).Error; err != nil {
		respondError(c, err)
		return
	}

	audit.LogAction(h.db, actor.ID, audit.ActionAssignRole, "user:"+user.ID.String(),
		map[string]interface{}{"role_id": req.RoleID})
	c.JSON(http.StatusOK, user)
}

// DeleteUser godoc
// @Summary Soft-delete a user and revoke their sessions
// @Tags admin
// @Security BearerAuth
// @Param id path string true "User UUID"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} ErrorResponse
// @Router /admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid user id")
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		respondError(c, service.ErrNotFound)
		return
	}

	if err := h.db.Delete(&user).Error; err != nil {
		respondError(c, err)
		return
	}
	// A deleted account must not keep a live login
	if err := h.svc.RevokeAllSessions(userID); err != nil {
		respondError(c, err)
		return
	}

	audit.LogAction(h.db, actor.ID, audit.ActionDeleteUser, "user:"+userID.String(), nil)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListRoles godoc
// @Summary List roles with their permissions
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.Role
// @Router /admin/roles [get]
func (h *AdminHandler) ListRoles(c *gin.Context) {
	var roles []models.Role
	if err := h.db.Preload("Permissions").Order("id").Find(&roles).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, roles)
}

// RoleRequest carries role create/update input.
type RoleRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

// CreateRole godoc
// @Summary Create a role
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param role body RoleRequest true "Role details"
// @Success 201 {object} models.Role
// @Failure 409 {object} ErrorResponse
// @Router /admin/roles [post]
func (h *AdminHandler) CreateRole(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	role := models.Role{Name: req.Name, Description: req.Description}
	if err := h.db.Create(&role).Error; err != nil {
		if service.IsDuplicate(err) {
			respondError(c, &service.ConflictError{Message: "role name already exists"})
			return
		}
		respondError(c, err)
		return
	}

	if err := h.setRolePermissions(&role, req.Permissions); err != nil {
		respondError(c, err)
		return
	}

	audit.LogAction(h.db, actor.ID, audit.ActionCreateRole, "role:"+role.Name, nil)
	c.JSON(http.StatusCreated, role)
}

// UpdateRole godoc
// @Summary Update a role and replace its permission set
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Role ID"
// @Success 200 {object} models.Role
// @Failure 404 {object} ErrorResponse
// @Router /admin/roles/{id} [put]
func (h *AdminHandler) UpdateRole(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	var role models.Role
	if err := h.db.First(&role, c.Param("id")).Error; err != nil {
		respondError(c, service.ErrNotFound)
		return
	}

	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	role.Name = req.Name
	role.Description = req.Description
	if err := h.db.Save(&role).Error; err != nil {
		if service.IsDuplicate(err) {
			respondError(c, &service.ConflictError{Message: "role name already exists"})
			return
		}
		respondError(c, err)
		return
	}

	if err := h.setRolePermissions(&role, req.Permissions); err != nil {
		respondError(c, err)
		return
	}

	audit.LogAction(h.db, actor.ID, audit.ActionUpdateRole, "role:"+role.Name, nil)
	c.JSON(http.StatusOK, role)
}

// DeleteRole godoc
// @Summary Delete a role
// @Tags admin
// @Security BearerAuth
// @Param id path int true "Role ID"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} ErrorResponse
// @Router /admin/roles/{id} [delete]
func (h *AdminHandler) DeleteRole(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	var role models.Role
	if err := h.db.First(&role, c.Param("id")).Error; err != nil {
		respondError(c, service.ErrNotFound)
		return
	}

	// Detach the role from its users; an account with no role has no permissions
	if err := h.db.Model(&models.User{}).Where("role_id = ?", role.ID).
		Update("role_id", nil).Error; err != nil {
		respondError(c, err)
		return
	}
	if err := h.db.Delete(&role).Error; err != nil {
		respondError(c, err)
		return
	}

	audit.LogAction(h.db, actor.ID, audit.ActionDeleteRole, "role:"+role.Name, nil)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListPermissions godoc
// @Summary List the permission catalogue
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.Permission
// @Router /admin/permissions [get]
func (h *AdminHandler) ListPermissions(c *gin.Context) {
	var perms []models.Permission
	if err := h.db.Order("name").Find(&perms).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, perms)
}

// setRolePermissions replaces the role's permission set with the named
// permissions. Unknown names are rejected.
func (h *AdminHandler) setRolePermissions(role *models.Role, names []string) error {
	if names == nil {
		return nil
	}
	names = uniqueStrings(names)

	var perms []models.Permission
	if len(names) > 0 {
		if err := h.db.Where("name IN ?", names).Find(&perms).Error; err != nil {
			return err
		}
		if len(perms) != len(names) {
			return &service.ValidationError{Message: "unknown permission name"}
		}
	}
	return h.db.Model(role).Association("Permissions").Replace(&perms)
}
