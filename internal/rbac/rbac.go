// Package rbac implements role-based authorization. A role grants a flat
// set of "resource:action" permission names; an endpoint declares the names
// it requires and access is granted when the caller's set covers them all.
package rbac

import (
	"fmt"
	"sort"

	"github.com/atriumcms/atrium/internal/models"
	"gorm.io/gorm"
)

// FullAccess implicitly satisfies any permission requirement.
const FullAccess = "admin:full"

// ResolvePermissions returns the flattened, sorted permission-name set
// granted by the given role. A nil role reference grants nothing.
func ResolvePermissions(db *gorm.DB, roleID *uint) ([]string, error) {
	if roleID == nil {
		return []string{}, nil
	}

	var role models.Role
	if err := db.Preload("Permissions").First(&role, *roleID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			// Dangling role reference grants nothing
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to resolve role %d: %w", *roleID, err)
	}

	names := make([]string, 0, len(role.Permissions))
	for _, p := range role.Permissions {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names, nil
}

// Authorize reports whether the granted set covers every required
// permission. Holding FullAccess satisfies any requirement. The decision is
// pure: no I/O, no side effects.
func Authorize(required, granted []string) bool {
	if len(required) == 0 {
		return true
	}

	set := make(map[string]bool, len(granted))
	for _, g := range granted {
		set[g] = true
	}
	if set[FullAccess] {
		return true
	}

	for _, r := range required {
		if !set[r] {
			return false
		}
	}
	return true
}

// HasPermission reports whether a single permission is granted.
func HasPermission(granted []string, name string) bool {
	return Authorize([]string{name}, granted)
}
