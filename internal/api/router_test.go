package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/atriumcms/atrium/internal/auth"
	"github.com/atriumcms/atrium/internal/config"
	"github.com/atriumcms/atrium/internal/db"
	"github.com/atriumcms/atrium/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{Port: 0, Mode: "development"},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			DSN:    filepath.Join(t.TempDir(), "test.db"),
		},
		Auth: config.AuthConfig{
			AccessSecret:     "test-access-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTTLMinutes: 15,
			RefreshTTLDays:   7,
			SessionTTLHours:  1,
		},
		Storage: config.StorageConfig{MediaDir: t.TempDir()},
	}
}

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig(t)
	database, err := db.New(cfg.Database)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	router, err := NewRouter(cfg, database)
	if err != nil {
		t.Fatalf("failed to build router: %v", err)
	}
	return router, database
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}, cookies []*http.Cookie, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func register(t *testing.T, router *gin.Engine, email, password string) {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register",
		map[string]string{"email": email, "password": password}, nil, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", w.Code, w.Body.String())
	}
}

func login(t *testing.T, router *gin.Engine, email, password string) (string, []*http.Cookie) {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": email, "password": password}, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login returned %d: %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("login response has no token")
	}
	return token, w.Result().Cookies()
}

func sessionCookie(t *testing.T, cookies []*http.Cookie) *http.Cookie {
	t.Helper()
	for _, c := range cookies {
		if c.Name == auth.CookieSession && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestRegisterDuplicateEmail(t *testing.T) {
	router, _ := newTestRouter(t)

	register(t, router, "first@example.com", "password123")

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register",
		map[string]string{"email": "first@example.com", "password": "different456"}, nil, "")
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate register returned %d, want 409", w.Code)
	}
	body := decode(t, w)
	if body["success"] != false {
		t.Errorf("expected success=false, got %v", body["success"])
	}
}

func TestRegisterResponseOmitsCredentials(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register",
		map[string]string{"email": "clean@example.com", "password": "password123"}, nil, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", w.Code, w.Body.String())
	}

	if bytes.Contains(w.Body.Bytes(), []byte("password")) {
		t.Errorf("register response leaks password material: %s", w.Body.String())
	}

	token, _ := login(t, router, "clean@example.com", "password123")
	me := doJSON(t, router, http.MethodGet, "/api/v1/auth/me", nil, nil, token)
	if me.Code != http.StatusOK {
		t.Fatalf("me returned %d: %s", me.Code, me.Body.String())
	}
	if bytes.Contains(me.Body.Bytes(), []byte("password")) {
		t.Errorf("profile response leaks password material: %s", me.Body.String())
	}
}

func TestLoginFailuresAreUniform(t *testing.T) {
	router, _ := newTestRouter(t)
	register(t, router, "known@example.com", "password123")

	wrongPassword := doJSON(t, router, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": "known@example.com", "password": "wrong-password"}, nil, "")
	unknownEmail := doJSON(t, router, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": "nobody@example.com", "password": "wrong-password"}, nil, "")

	if wrongPassword.Code != http.StatusUnauthorized {
		t.Errorf("wrong password returned %d, want 401", wrongPassword.Code)
	}
	if unknownEmail.Code != http.StatusUnauthorized {
		t.Errorf("unknown email returned %d, want 401", unknownEmail.Code)
	}
	if wrongPassword.Body.String() != unknownEmail.Body.String() {
		t.Errorf("failure responses differ: %q vs %q",
			wrongPassword.Body.String(), unknownEmail.Body.String())
	}
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/auth/me", nil, nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated me returned %d, want 401", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/auth/me", nil, nil, "not-a-token")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token returned %d, want 401", w.Code)
	}
}

func TestLoginAndProfile(t *testing.T) {
	router, _ := newTestRouter(t)
	register(t, router, "alice@example.com", "password123")

	token, cookies := login(t, router, "alice@example.com", "password123")
	sessionCookie(t, cookies)

	w := doJSON(t, router, http.MethodGet, "/api/v1/auth/me", nil, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("me returned %d: %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["email"] != "alice@example.com" {
		t.Errorf("profile email = %v, want alice@example.com", body["email"])
	}
}

func TestSessionRotationInvalidatesOldID(t *testing.T) {
	router, database := newTestRouter(t)
	register(t, router, "bob@example.com", "password123")
	_, cookies := login(t, router, "bob@example.com", "password123")
	oldSession := sessionCookie(t, cookies)

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/refresh", nil, []*http.Cookie{oldSession}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("refresh returned %d: %s", w.Code, w.Body.String())
	}
	newSession := sessionCookie(t, w.Result().Cookies())
	if newSession.Value == oldSession.Value {
		t.Fatal("refresh did not rotate the session id")
	}

	// Rotation swaps the row, it never accumulates sessions
	var count int64
	if err := database.Model(&models.Session{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count sessions: %v", err)
	}
	if count != 1 {
		t.Errorf("session rows after rotation = %d, want 1", count)
	}

	// The rotated-out id must be dead
	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/refresh", nil, []*http.Cookie{oldSession}, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("refresh with rotated-out session returned %d, want 401", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/auth/validate", nil, []*http.Cookie{newSession}, "")
	if valid := decode(t, w)["valid"]; valid != true {
		t.Errorf("new session validates as %v, want true", valid)
	}
}

func TestTokenPairFlow(t *testing.T) {
	router, _ := newTestRouter(t)
	register(t, router, "client@example.com", "password123")

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/token",
		map[string]string{"email": "client@example.com", "password": "password123"}, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("token login returned %d: %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	access, _ := body["access_token"].(string)
	refresh, _ := body["refresh_token"].(string)
	if access == "" || refresh == "" {
		t.Fatalf("token login missing tokens: %s", w.Body.String())
	}
	if len(w.Result().Cookies()) != 0 {
		t.Errorf("token login set %d cookies, want none", len(w.Result().Cookies()))
	}

	// The pair's access token authenticates directly
	me := doJSON(t, router, http.MethodGet, "/api/v1/auth/me", nil, nil, access)
	if me.Code != http.StatusOK {
		t.Fatalf("me with pair access token returned %d: %s", me.Code, me.Body.String())
	}

	// The refresh token mints a fresh, working access token
	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/refresh-token",
		map[string]string{"refresh_token": refresh}, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("refresh-token returned %d: %s", w.Code, w.Body.String())
	}
	reissued, _ := decode(t, w)["token"].(string)
	if reissued == "" {
		t.Fatal("refresh-token response has no token")
	}
	me = doJSON(t, router, http.MethodGet, "/api/v1/auth/me", nil, nil, reissued)
	if me.Code != http.StatusOK {
		t.Fatalf("me with reissued token returned %d: %s", me.Code, me.Body.String())
	}
	if decode(t, me)["email"] != "client@example.com" {
		t.Errorf("reissued token resolves to wrong account: %s", me.Body.String())
	}

	// An access token must not be accepted as a refresh credential
	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/refresh-token",
		map[string]string{"refresh_token": access}, nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("access token accepted as refresh token, got %d", w.Code)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	router, _ := newTestRouter(t)
	register(t, router, "carol@example.com", "password123")
	_, cookies := login(t, router, "carol@example.com", "password123")
	sess := sessionCookie(t, cookies)

	for i := 0; i < 2; i++ {
		w := doJSON(t, router, http.MethodPost, "/api/v1/auth/logout", nil, []*http.Cookie{sess}, "")
		if w.Code != http.StatusOK {
			t.Fatalf("logout attempt %d returned %d: %s", i+1, w.Code, w.Body.String())
		}
	}

	w := doJSON(t, router, http.MethodGet, "/api/v1/auth/validate", nil, []*http.Cookie{sess}, "")
	if valid := decode(t, w)["valid"]; valid != false {
		t.Errorf("session validates as %v after logout, want false", valid)
	}
}

func TestPermissionEnforcement(t *testing.T) {
	router, database := newTestRouter(t)

	// Self-registered accounts have no role and no permissions
	register(t, router, "nobody@example.com", "password123")
	plainToken, _ := login(t, router, "nobody@example.com", "password123")

	w := doJSON(t, router, http.MethodPost, "/api/v1/posts",
		map[string]interface{}{"title": "Denied"}, nil, plainToken)
	if w.Code != http.StatusForbidden {
		t.Fatalf("post create without permission returned %d, want 403", w.Code)
	}

	if err := db.CreateAdmin(database, "admin@example.com", "password123"); err != nil {
		t.Fatalf("failed to create admin: %v", err)
	}
	adminToken, _ := login(t, router, "admin@example.com", "password123")

	w = doJSON(t, router, http.MethodPost, "/api/v1/posts",
		map[string]interface{}{"title": "Allowed", "body": "text"}, nil, adminToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("admin post create returned %d: %s", w.Code, w.Body.String())
	}
}

func TestPublishedVisibility(t *testing.T) {
	router, database := newTestRouter(t)
	if err := db.CreateAdmin(database, "admin@example.com", "password123"); err != nil {
		t.Fatalf("failed to create admin: %v", err)
	}
	adminToken, _ := login(t, router, "admin@example.com", "password123")

	w := doJSON(t, router, http.MethodPost, "/api/v1/posts",
		map[string]interface{}{"title": "Launch Notes", "body": "soon"}, nil, adminToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("post create returned %d: %s", w.Code, w.Body.String())
	}
	created := decode(t, w)
	slug, _ := created["slug"].(string)
	if slug != "launch-notes" {
		t.Errorf("generated slug = %q, want launch-notes", slug)
	}
	id := created["id"]

	// Drafts are invisible on the public surface
	w = doJSON(t, router, http.MethodGet, "/api/v1/posts/"+slug, nil, nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("draft visible publicly, got %d", w.Code)
	}

	w = doJSON(t, router, http.MethodPut, "/api/v1/posts/"+jsonID(t, id)+"/publish",
		map[string]bool{"published": true}, nil, adminToken)
	if w.Code != http.StatusOK {
		t.Fatalf("publish returned %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/posts/"+slug, nil, nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("published post not visible, got %d: %s", w.Code, w.Body.String())
	}
}

func TestConcurrentRegistrationSingleWinner(t *testing.T) {
	router, _ := newTestRouter(t)

	payload, err := json.Marshal(map[string]string{
		"email":    "raced@example.com",
		"password": "password123",
	})
	if err != nil {
		t.Fatalf("failed to encode body: %v", err)
	}

	const attempts = 8
	codes := make(chan int, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			codes <- w.Code
		}()
	}
	wg.Wait()
	close(codes)

	var created, conflicts int
	for code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicts++
		default:
			t.Errorf("unexpected status %d from concurrent register", code)
		}
	}
	if created != 1 {
		t.Errorf("created = %d, want exactly 1", created)
	}
	if conflicts != attempts-1 {
		t.Errorf("conflicts = %d, want %d", conflicts, attempts-1)
	}
}

func TestRepeatedNamesInRequestLists(t *testing.T) {
	router, database := newTestRouter(t)
	if err := db.CreateAdmin(database, "admin@example.com", "password123"); err != nil {
		t.Fatalf("failed to create admin: %v", err)
	}
	adminToken, _ := login(t, router, "admin@example.com", "password123")

	w := doJSON(t, router, http.MethodPost, "/api/v1/tags",
		map[string]string{"name": "Go"}, nil, adminToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("tag create returned %d: %s", w.Code, w.Body.String())
	}

	// A repeated known slug is not an unknown slug
	w = doJSON(t, router, http.MethodPost, "/api/v1/posts",
		map[string]interface{}{"title": "Tagged Twice", "tags": []string{"go", "go"}}, nil, adminToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("post create with repeated tag returned %d: %s", w.Code, w.Body.String())
	}
	if tags, ok := decode(t, w)["tags"].([]interface{}); ok && len(tags) != 1 {
		t.Errorf("post has %d tags, want 1", len(tags))
	}

	w = doJSON(t, router, http.MethodPost, "/api/v1/admin/roles",
		map[string]interface{}{
			"name":        "publisher",
			"permissions": []string{"post:publish", "post:publish"},
		}, nil, adminToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("role create with repeated permission returned %d: %s", w.Code, w.Body.String())
	}
}

// jsonID renders a numeric JSON id back into a path segment.
func jsonID(t *testing.T, v interface{}) string {
	t.Helper()
	f, ok := v.(float64)
	if !ok {
		t.Fatalf("id is %T, want number", v)
	}
	return strconv.Itoa(int(f))
}
