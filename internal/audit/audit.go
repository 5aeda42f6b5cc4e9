package audit

import (
	"encoding/json"
	"time"

	"github.com/atriumcms/atrium/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LogAction records an audit log entry
func LogAction(db *gorm.DB, userID uuid.UUID, action, resource string, details interface{}) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		detailsJSON = []byte("{}")
	}

	entry := models.AuditLog{
		UserID:      userID,
		Action:      action,
		Resource:    resource,
		DetailsJSON: string(detailsJSON),
		Timestamp:   time.Now(),
	}

	return db.Create(&entry).Error
}

// Audit actions constants
const (
	ActionRegister         = "register"
	ActionLogin            = "login"
	ActionLoginFailed      = "login_failed"
	ActionLogout           = "logout"
	ActionRefresh          = "refresh"
	ActionCreateUser       = "create_user"
	ActionUpdateUser       = "update_user"
	ActionDeleteUser       = "delete_user"
	ActionAssignRole       = "assign_role"
	ActionCreateRole       = "create_role"
	ActionUpdateRole       = "update_role"
	ActionDeleteRole       = "delete_role"
	ActionPublishPost      = "publish_post"
	ActionUnpublishPost    = "unpublish_post"
	ActionUploadMedia      = "upload_media"
	ActionDeleteMedia      = "delete_media"
	ActionRevokeAllLogins  = "revoke_all_logins"
)
