// Package service contains the business logic behind the HTTP handlers.
package service

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/atriumcms/atrium/internal/audit"
	"github.com/atriumcms/atrium/internal/auth"
	"github.com/atriumcms/atrium/internal/config"
	"github.com/atriumcms/atrium/internal/models"
	"github.com/atriumcms/atrium/internal/rbac"
	"github.com/atriumcms/atrium/internal/session"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthService orchestrates the credential store, password hasher, token
// issuer and session store behind the auth endpoints.
type AuthService struct {
	db       *gorm.DB
	issuer   *auth.TokenIssuer
	sessions *session.Store
	cfg      config.AuthConfig
}

// NewAuthService creates the auth gateway service.
func NewAuthService(db *gorm.DB, issuer *auth.TokenIssuer, sessions *session.Store, cfg config.AuthConfig) *AuthService {
	return &AuthService{db: db, issuer: issuer, sessions: sessions, cfg: cfg}
}

// RegisterRequest carries registration input. Password is optional so the
// same path serves accounts later claimed by a federated provider.
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"omitempty,min=8"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// LoginResult is what a successful login or refresh produces.
type LoginResult struct {
	User        *models.User
	AccessToken string
	Session     *models.Session
}

// Register creates an account. The email uniqueness constraint in the
// store is authoritative: a concurrent duplicate registration surfaces as
// ConflictError no matter which writer ran first.
func (s *AuthService) Register(req RegisterRequest) (*models.User, error) {
	user := models.User{
		Email:     req.Email,
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
	}

	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = &hash
	}

	if err := s.db.Create(&user).Error; err != nil {
		if IsDuplicate(err) {
			return nil, &ConflictError{Message: "email already registered"}
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	audit.LogAction(s.db, user.ID, audit.ActionRegister, "user:"+user.ID.String(), nil)
	slog.Info("Account registered", "user_id", user.ID, "email", user.Email)
	return &user, nil
}

// Exists reports whether an account with the email exists. Advisory only;
// registration still relies on the unique constraint.
func (s *AuthService) Exists(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// authenticate resolves the account and checks the password. Unknown
// email, passwordless account and wrong password all yield the same
// ErrUnauthorized so the response leaks nothing.
func (s *AuthService) authenticate(email, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Warn("Login attempt for unknown email", "email", email)
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if user.PasswordHash == nil || !auth.VerifyPassword(*user.PasswordHash, password) {
		slog.Warn("Login attempt with incorrect password", "email", email)
		audit.LogAction(s.db, user.ID, audit.ActionLoginFailed, "user:"+user.ID.String(), nil)
		return nil, ErrUnauthorized
	}
	return &user, nil
}

// Login verifies the password, issues an access token and opens a session.
func (s *AuthService) Login(email, password string) (*LoginResult, error) {
	user, err := s.authenticate(email, password)
	if err != nil {
		return nil, err
	}

	result, err := s.openSession(user)
	if err != nil {
		return nil, err
	}

	audit.LogAction(s.db, user.ID, audit.ActionLogin, "user:"+user.ID.String(), nil)
	slog.Info("User logged in", "user_id", user.ID, "email", user.Email)
	return result, nil
}

// TokenLogin verifies the password and signs a token pair for clients that
// hold JWTs instead of cookies. No session is opened; the refresh token is
// the only refresh credential in this flow.
func (s *AuthService) TokenLogin(email, password string) (*auth.TokenPair, *models.User, error) {
	user, err := s.authenticate(email, password)
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.IssueTokenPair(user)
	if err != nil {
		return nil, nil, err
	}

	audit.LogAction(s.db, user.ID, audit.ActionLogin, "user:"+user.ID.String(),
		map[string]interface{}{"flow": "token"})
	slog.Info("User logged in", "user_id", user.ID, "email", user.Email, "flow", "token")
	return pair, user, nil
}

// FederatedLogin opens a session for an account produced by the OIDC
// callback.
func (s *AuthService) FederatedLogin(user *models.User) (*LoginResult, error) {
	result, err := s.openSession(user)
	if err != nil {
		return nil, err
	}
	audit.LogAction(s.db, user.ID, audit.ActionLogin, "user:"+user.ID.String(),
		map[string]interface{}{"provider": user.Provider})
	return result, nil
}

// Refresh rotates the session: the old id is deleted, a new one created,
// and a fresh access token issued with the account's current permissions.
// The old session id must not remain valid after rotation.
func (s *AuthService) Refresh(sessionID string) (*LoginResult, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrUnauthorized
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", sess.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Account gone; drop the orphaned session
			s.sessions.Delete(sessionID)
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	// Retire the old id before the replacement exists; a failure here
	// can force a re-login but never leaves an orphaned live session.
	if err := s.sessions.Delete(sessionID); err != nil {
		return nil, fmt.Errorf("failed to rotate session: %w", err)
	}
	result, err := s.openSession(&user)
	if err != nil {
		return nil, err
	}

	audit.LogAction(s.db, user.ID, audit.ActionRefresh, "user:"+user.ID.String(), nil)
	return result, nil
}

// RefreshWithToken is the stateless variant for non-cookie API clients: it
// verifies the refresh JWT and mints a new access token with the claims
// carried by the refresh token.
func (s *AuthService) RefreshWithToken(refreshToken string) (string, error) {
	access, err := s.issuer.ReissueAccessToken(refreshToken)
	if err != nil {
		return "", ErrUnauthorized
	}
	return access, nil
}

// IssueTokenPair resolves the account's permissions and signs a token pair.
func (s *AuthService) IssueTokenPair(user *models.User) (*auth.TokenPair, error) {
	perms, err := rbac.ResolvePermissions(s.db, user.RoleID)
	if err != nil {
		return nil, err
	}
	return s.issuer.IssueTokenPair(user, perms)
}

// Logout deletes the session. Idempotent: an already-deleted session id
// still succeeds.
func (s *AuthService) Logout(sessionID string) error {
	if sessionID == "" {
		return nil
	}
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return err
	}
	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	if sess != nil {
		audit.LogAction(s.db, sess.UserID, audit.ActionLogout, "user:"+sess.UserID.String(), nil)
	}
	return nil
}

// RevokeAllSessions deletes every session of the account.
func (s *AuthService) RevokeAllSessions(userID uuid.UUID) error {
	if err := s.sessions.DeleteAllForUser(userID); err != nil {
		return err
	}
	audit.LogAction(s.db, userID, audit.ActionRevokeAllLogins, "user:"+userID.String(), nil)
	return nil
}

// ValidateSession reports session liveness. It never errors toward the
// caller; any failure reads as invalid.
func (s *AuthService) ValidateSession(sessionID string) bool {
	if sessionID == "" {
		return false
	}
	sess, err := s.sessions.Get(sessionID)
	return err == nil && sess != nil
}

// GetProfile loads the account by id.
func (s *AuthService) GetProfile(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("Role.Permissions").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ProfileUpdate carries owner-editable profile fields. Nil fields are left
// unchanged.
type ProfileUpdate struct {
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url"`
	Password  *string `json:"password" binding:"omitempty,min=8"`
}

// UpdateProfile mutates the caller's own account. Only the owner reaches
// this path; cross-account edits go through the admin module.
func (s *AuthService) UpdateProfile(userID uuid.UUID, req ProfileUpdate) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = *req.AvatarURL
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = hash
	}

	if len(updates) > 0 {
		if err := s.db.Model(&user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}

	audit.LogAction(s.db, userID, audit.ActionUpdateUser, "user:"+userID.String(), nil)
	return &user, nil
}

// openSession resolves current permissions, signs an access token and
// creates a session record.
func (s *AuthService) openSession(user *models.User) (*LoginResult, error) {
	perms, err := rbac.ResolvePermissions(s.db, user.RoleID)
	if err != nil {
		return nil, err
	}

	access, err := s.issuer.IssueAccessToken(user, perms)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	sess, err := s.sessions.Create(user.ID, s.cfg.SessionTTL())
	if err != nil {
		return nil, err
	}

	return &LoginResult{User: user, AccessToken: access, Session: sess}, nil
}
