package session

import (
	"testing"
	"time"

	"github.com/atriumcms/atrium/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.Session{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(db)
}

func TestCreateAndGet(t *testing.T) {
	s := testStore(t)
	userID := uuid.New()

	sess, err := s.Create(userID, 0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("expected non-empty session id")
	}
	// 32 random bytes base64url-encoded without padding
	if len(sess.ID) != 43 {
		t.Errorf("expected 43-char id, got %d chars", len(sess.ID))
	}
	if !sess.ExpiresAt.After(time.Now()) {
		t.Error("expiry must be in the future at creation")
	}

	got, err := s.Get(sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.UserID != userID {
		t.Fatal("expected to get back the created session")
	}
}

func TestGetUnknownSession(t *testing.T) {
	s := testStore(t)

	got, err := s.Get("no-such-session")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil for unknown session")
	}
}

func TestExpiredSessionLazilyDeleted(t *testing.T) {
	s := testStore(t)

	sess, err := s.Create(uuid.New(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	// Force the expiry into the past
	if err := s.db.Model(&models.Session{}).Where("id = ?", sess.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error; err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Fatal("expired session must read as nonexistent")
	}

	// The read must also have removed the row
	var count int64
	s.db.Model(&models.Session{}).Where("id = ?", sess.ID).Count(&count)
	if count != 0 {
		t.Error("expired session row should be deleted on read")
	}
}

func TestRenew(t *testing.T) {
	s := testStore(t)

	sess, err := s.Create(uuid.New(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	before := sess.ExpiresAt

	renewed, err := s.Renew(sess.ID, 48*time.Hour)
	if err != nil {
		t.Fatalf("Renew: %v", err)
	}
	if renewed == nil {
		t.Fatal("expected renewed session")
	}
	if !renewed.ExpiresAt.After(before) {
		t.Error("renewal should extend expiry")
	}

	// Renew never creates a session
	missing, err := s.Renew("no-such-session", time.Hour)
	if err != nil {
		t.Fatalf("Renew missing: %v", err)
	}
	if missing != nil {
		t.Error("renewing an absent session must return nil")
	}
}

func TestDeleteIdempotent(t *testing.T) {
	s := testStore(t)

	sess, err := s.Create(uuid.New(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Delete(sess.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	// Deleting again succeeds
	if err := s.Delete(sess.ID); err != nil {
		t.Fatalf("second Delete: %v", err)
	}

	got, _ := s.Get(sess.ID)
	if got != nil {
		t.Fatal("deleted session must not resolve")
	}
}

func TestDeleteAllForUser(t *testing.T) {
	s := testStore(t)
	userID := uuid.New()
	other := uuid.New()

	for i := 0; i < 3; i++ {
		if _, err := s.Create(userID, time.Hour); err != nil {
			t.Fatal(err)
		}
	}
	kept, err := s.Create(other, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteAllForUser(userID); err != nil {
		t.Fatalf("DeleteAllForUser: %v", err)
	}

	var count int64
	s.db.Model(&models.Session{}).Where("user_id = ?", userID).Count(&count)
	if count != 0 {
		t.Errorf("expected 0 sessions for revoked user, got %d", count)
	}

	got, _ := s.Get(kept.ID)
	if got == nil {
		t.Error("other user's session must survive")
	}
}

func TestPurgeExpired(t *testing.T) {
	s := testStore(t)

	live, err := s.Create(uuid.New(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		sess, err := s.Create(uuid.New(), time.Hour)
		if err != nil {
			t.Fatal(err)
		}
		s.db.Model(&models.Session{}).Where("id = ?", sess.ID).
			Update("expires_at", time.Now().Add(-time.Minute))
	}

	n, err := s.PurgeExpired()
	if err != nil {
		t.Fatalf("PurgeExpired: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 purged, got %d", n)
	}

	got, _ := s.Get(live.ID)
	if got == nil {
		t.Error("live session must survive purge")
	}
}

func TestSessionIDsUnique(t *testing.T) {
	s := testStore(t)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		sess, err := s.Create(uuid.New(), time.Hour)
		if err != nil {
			t.Fatal(err)
		}
		if seen[sess.ID] {
			t.Fatalf("duplicate session id generated: %s", sess.ID)
		}
		seen[sess.ID] = true
	}
}
