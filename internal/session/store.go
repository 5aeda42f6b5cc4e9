// Package session persists opaque server-side login sessions. A session is
// the revocable counterpart of a stateless token: deleting the row ends the
// login.
package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/atriumcms/atrium/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultTTL is the default session lifetime (168 hours).
const DefaultTTL = 168 * time.Hour

// idBytes gives 256 bits of entropy per session identifier.
const idBytes = 32

// Store persists sessions in the relational database.
type Store struct {
	db *gorm.DB
}

// New creates a session store.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Create generates a session with a fresh random identifier expiring after
// ttl (DefaultTTL when ttl <= 0).
func (s *Store) Create(userID uuid.UUID, ttl time.Duration) (*models.Session, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	id, err := newSessionID()
	if err != nil {
		return nil, err
	}

	sess := models.Session{
		ID:        id,
		UserID:    userID,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := s.db.Create(&sess).Error; err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &sess, nil
}

// Get returns the session with the given id, or nil if it does not exist.
// An expired session is treated as nonexistent and its row is deleted on
// this read. The check-then-delete is not atomic with later use; a session
// expiring in that window is an accepted race.
func (s *Store) Get(id string) (*models.Session, error) {
	var sess models.Session
	if err := s.db.First(&sess, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if time.Now().After(sess.ExpiresAt) {
		if err := s.db.Delete(&models.Session{}, "id = ?", id).Error; err != nil {
			slog.Warn("Failed to delete expired session", "error", err)
		}
		return nil, nil
	}
	return &sess, nil
}

// Renew extends the session's expiry to now + ttl (DefaultTTL when
// ttl <= 0). Returns nil if the session does not exist or has expired; it
// never creates one.
func (s *Store) Renew(id string, ttl time.Duration) (*models.Session, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	sess, err := s.Get(id)
	if err != nil || sess == nil {
		return nil, err
	}

	sess.ExpiresAt = time.Now().Add(ttl)
	if err := s.db.Save(sess).Error; err != nil {
		return nil, fmt.Errorf("failed to renew session: %w", err)
	}
	return sess, nil
}

// Delete removes the session. Deleting an absent session is not an error.
func (s *Store) Delete(id string) error {
	return s.db.Delete(&models.Session{}, "id = ?", id).Error
}

// DeleteAllForUser revokes every session belonging to the user.
func (s *Store) DeleteAllForUser(userID uuid.UUID) error {
	return s.db.Delete(&models.Session{}, "user_id = ?", userID).Error
}

// PurgeExpired bulk-deletes all sessions whose expiry has passed and
// returns the number removed. Intended for periodic maintenance.
func (s *Store) PurgeExpired() (int64, error) {
	result := s.db.Delete(&models.Session{}, "expires_at < ?", time.Now())
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// newSessionID returns a cryptographically random opaque identifier.
func newSessionID() (string, error) {
	buf := make([]byte, idBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
