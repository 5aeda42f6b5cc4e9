package db

import (
	"log/slog"

	"github.com/atriumcms/atrium/internal/models"
	"github.com/atriumcms/atrium/internal/rbac"
	"gorm.io/gorm"
)

// defaultPermissions is the full capability catalogue. Names follow the
// "resource:action" convention.
var defaultPermissions = []models.Permission{
	{Name: rbac.FullAccess, Description: "Implicitly satisfies every permission requirement"},
	{Name: "post:create", Description: "Create draft posts"},
	{Name: "post:update", Description: "Edit existing posts"},
	{Name: "post:delete", Description: "Delete posts"},
	{Name: "post:publish", Description: "Publish and unpublish posts"},
	{Name: "category:manage", Description: "Create, edit and delete categories"},
	{Name: "tag:manage", Description: "Create, edit and delete tags"},
	{Name: "service:manage", Description: "Create, edit and delete service entries"},
	{Name: "recruitment:manage", Description: "Create, edit and delete job postings"},
	{Name: "media:upload", Description: "Upload media assets"},
	{Name: "media:delete", Description: "Delete media assets"},
	{Name: "user:manage", Description: "Manage user accounts"},
	{Name: "role:manage", Description: "Manage roles and their permissions"},
}

// defaultRolePermissions maps default role names to their granted permissions.
var defaultRolePermissions = map[string][]string{
	"admin": {rbac.FullAccess},
	"editor": {
		"post:create", "post:update", "post:delete", "post:publish",
		"category:manage", "tag:manage", "service:manage", "recruitment:manage",
		"media:upload", "media:delete",
	},
	"author": {"post:create", "post:update", "media:upload"},
	"viewer": {},
}

var roleDescriptions = map[string]string{
	"admin":  "Full system access including user and role management",
	"editor": "Full control over all content modules",
	"author": "Can write and edit posts but not publish them",
	"viewer": "Authenticated read-only access",
}

// seedPermissions creates any missing permission rows.
func seedPermissions(db *gorm.DB) error {
	for _, perm := range defaultPermissions {
		var existing models.Permission
		result := db.Where("name = ?", perm.Name).First(&existing)
		if result.Error == gorm.ErrRecordNotFound {
			if err := db.Create(&perm).Error; err != nil {
				return err
			}
			slog.Info("Created permission", "permission", perm.Name)
		}
	}
	return nil
}

// seedDefaultRoles creates the default roles and attaches their permission
// sets. Existing roles are left untouched so operator edits survive restarts.
func seedDefaultRoles(db *gorm.DB) error {
	for name, permNames := range defaultRolePermissions {
		var existing models.Role
		result := db.Where("name = ?", name).First(&existing)
		if result.Error == nil {
			continue
		}
		if result.Error != gorm.ErrRecordNotFound {
			return result.Error
		}

		role := models.Role{Name: name, Description: roleDescriptions[name]}
		if err := db.Create(&role).Error; err != nil {
			return err
		}

		if len(permNames) > 0 {
			var perms []models.Permission
			if err := db.Where("name IN ?", permNames).Find(&perms).Error; err != nil {
				return err
			}
			if err := db.Model(&role).Association("Permissions").Append(&perms); err != nil {
				return err
			}
		}
		slog.Info("Created default role", "role", name, "permissions", len(permNames))
	}
	return nil
}
