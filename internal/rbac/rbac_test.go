package rbac

import (
	"testing"

	"github.com/atriumcms/atrium/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.Role{}, &models.Permission{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestResolvePermissions(t *testing.T) {
	db := testDB(t)

	perms := []models.Permission{
		{Name: "post:create"},
		{Name: "post:publish"},
		{Name: "media:upload"},
	}
	for i := range perms {
		if err := db.Create(&perms[i]).Error; err != nil {
			t.Fatalf("create permission: %v", err)
		}
	}

	role := models.Role{Name: "editor", Permissions: perms[:2]}
	if err := db.Create(&role).Error; err != nil {
		t.Fatalf("create role: %v", err)
	}

	names, err := ResolvePermissions(db, &role.ID)
	if err != nil {
		t.Fatalf("ResolvePermissions: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 permissions, got %d: %v", len(names), names)
	}
	// Sorted output
	if names[0] != "post:create" || names[1] != "post:publish" {
		t.Fatalf("unexpected permission set: %v", names)
	}
}

func TestResolvePermissionsNoRole(t *testing.T) {
	db := testDB(t)

	names, err := ResolvePermissions(db, nil)
	if err != nil {
		t.Fatalf("ResolvePermissions(nil): %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("expected empty set for nil role, got %v", names)
	}

	// Dangling role reference also grants nothing
	missing := uint(999)
	names, err = ResolvePermissions(db, &missing)
	if err != nil {
		t.Fatalf("ResolvePermissions(missing): %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("expected empty set for missing role, got %v", names)
	}
}

func TestAuthorize(t *testing.T) {
	granted := []string{"post:create", "post:update"}

	if !Authorize(nil, nil) {
		t.Error("empty requirement should always pass")
	}
	if !Authorize([]string{"post:create"}, granted) {
		t.Error("expected post:create to be authorized")
	}
	if !Authorize([]string{"post:create", "post:update"}, granted) {
		t.Error("expected full subset to be authorized")
	}
	if Authorize([]string{"post:publish"}, granted) {
		t.Error("post:publish should not be authorized")
	}
	if Authorize([]string{"post:create", "post:publish"}, granted) {
		t.Error("partial coverage should not be authorized")
	}
	if Authorize([]string{"post:create"}, nil) {
		t.Error("empty grant should not be authorized")
	}
}

func TestAuthorizeFullAccess(t *testing.T) {
	granted := []string{FullAccess}

	if !Authorize([]string{"post:publish"}, granted) {
		t.Error("full access should satisfy any requirement")
	}
	if !Authorize([]string{"user:manage", "role:manage"}, granted) {
		t.Error("full access should satisfy multiple requirements")
	}
}
