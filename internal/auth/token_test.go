package auth

import (
	"testing"

	"github.com/atriumcms/atrium/internal/config"
	"github.com/atriumcms/atrium/internal/models"
	"github.com/google/uuid"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		AccessSecret:     "test-access-secret",
		RefreshSecret:    "test-refresh-secret",
		AccessTTLMinutes: 15,
		RefreshTTLDays:   7,
		SessionTTLHours:  168,
	}
}

func testUser() *models.User {
	roleID := uint(2)
	return &models.User{
		ID:     uuid.New(),
		Email:  "alice@x.com",
		RoleID: &roleID,
	}
}

func TestIssueAndVerifyTokenPair(t *testing.T) {
	issuer := NewTokenIssuer(testAuthConfig())
	user := testUser()
	perms := []string{"post:create", "post:publish"}

	pair, err := issuer.IssueTokenPair(user, perms)
	if err != nil {
		t.Fatalf("IssueTokenPair: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens to be set")
	}
	if pair.AccessToken == pair.RefreshToken {
		t.Fatal("access and refresh tokens must differ")
	}

	claims, err := issuer.Verify(pair.AccessToken, AccessToken)
	if err != nil {
		t.Fatalf("Verify access: %v", err)
	}
	if claims.UserID != user.ID.String() {
		t.Errorf("expected user id %s, got %s", user.ID, claims.UserID)
	}
	if claims.Email != "alice@x.com" {
		t.Errorf("unexpected email: %s", claims.Email)
	}
	if claims.RoleID == nil || *claims.RoleID != 2 {
		t.Errorf("unexpected role id: %v", claims.RoleID)
	}
	if len(claims.Permissions) != 2 {
		t.Errorf("unexpected permissions: %v", claims.Permissions)
	}

	if _, err := issuer.Verify(pair.RefreshToken, RefreshToken); err != nil {
		t.Fatalf("Verify refresh: %v", err)
	}
}

func TestTokenKindsNotInterchangeable(t *testing.T) {
	issuer := NewTokenIssuer(testAuthConfig())
	pair, err := issuer.IssueTokenPair(testUser(), nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := issuer.Verify(pair.RefreshToken, AccessToken); err == nil {
		t.Error("refresh token must not verify as access token")
	}
	if _, err := issuer.Verify(pair.AccessToken, RefreshToken); err == nil {
		t.Error("access token must not verify as refresh token")
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	issuer := NewTokenIssuer(testAuthConfig())
	token, err := issuer.IssueAccessToken(testUser(), nil)
	if err != nil {
		t.Fatal(err)
	}

	other := NewTokenIssuer(config.AuthConfig{
		AccessSecret:     "different-secret",
		RefreshSecret:    "different-refresh",
		AccessTTLMinutes: 15,
		RefreshTTLDays:   7,
	})
	if _, err := other.Verify(token, AccessToken); err == nil {
		t.Error("token signed with another secret must not verify")
	}

	if _, err := issuer.Verify(token+"x", AccessToken); err == nil {
		t.Error("tampered token must not verify")
	}
	if _, err := issuer.Verify("garbage", AccessToken); err == nil {
		t.Error("garbage must not verify")
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	cfg := testAuthConfig()
	cfg.AccessTTLMinutes = -1 // already expired at issue time
	issuer := NewTokenIssuer(cfg)

	token, err := issuer.IssueAccessToken(testUser(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := issuer.Verify(token, AccessToken); err == nil {
		t.Error("expired token must not verify")
	}
}

func TestReissueAccessToken(t *testing.T) {
	issuer := NewTokenIssuer(testAuthConfig())
	user := testUser()
	perms := []string{"post:create"}

	pair, err := issuer.IssueTokenPair(user, perms)
	if err != nil {
		t.Fatal(err)
	}

	access, err := issuer.ReissueAccessToken(pair.RefreshToken)
	if err != nil {
		t.Fatalf("ReissueAccessToken: %v", err)
	}

	claims, err := issuer.Verify(access, AccessToken)
	if err != nil {
		t.Fatalf("Verify reissued: %v", err)
	}
	if claims.UserID != user.ID.String() {
		t.Errorf("reissued token lost identity: %s", claims.UserID)
	}
	if len(claims.Permissions) != 1 || claims.Permissions[0] != "post:create" {
		t.Errorf("reissued token lost permissions: %v", claims.Permissions)
	}

	// An access token is not a refresh credential
	if _, err := issuer.ReissueAccessToken(pair.AccessToken); err == nil {
		t.Error("reissue from an access token must fail")
	}
}

func TestEmptyPermissionsSerializeAsEmptyList(t *testing.T) {
	issuer := NewTokenIssuer(testAuthConfig())
	user := testUser()
	user.RoleID = nil

	token, err := issuer.IssueAccessToken(user, nil)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := issuer.Verify(token, AccessToken)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Permissions == nil {
		t.Error("permissions should be an empty list, not nil")
	}
	if claims.RoleID != nil {
		t.Errorf("expected nil role id, got %v", *claims.RoleID)
	}
}
