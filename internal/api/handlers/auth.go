package handlers

import (
	"net/http"

	"github.com/atriumcms/atrium/internal/auth"
	"github.com/atriumcms/atrium/internal/config"
	"github.com/atriumcms/atrium/internal/models"
	"github.com/atriumcms/atrium/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuthHandler serves the register/login/refresh/logout endpoints.
type AuthHandler struct {
	svc  *service.AuthService
	oidc *auth.OIDCAuthenticator // nil when federated login is not configured
	cfg  *config.Config
}

// NewAuthHandler creates the auth endpoint handler.
func NewAuthHandler(svc *service.AuthService, oidc *auth.OIDCAuthenticator, cfg *config.Config) *AuthHandler {
	return &AuthHandler{svc: svc, oidc: oidc, cfg: cfg}
}

func (h *AuthHandler) secureCookies() bool {
	return h.cfg.Server.Mode == "production"
}

func (h *AuthHandler) setAuthCookies(c *gin.Context, result *service.LoginResult) {
	auth.SetAuthCookies(c, result.Session.ID, result.AccessToken,
		h.cfg.Auth.SessionTTL(), h.cfg.Auth.AccessTTL(), h.secureCookies())
}

// LoginResponse is the body of a successful login or refresh.
type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register godoc
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param account body service.RegisterRequest true "Account details"
// @Success 201 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	user, err := h.svc.Register(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Exists godoc
// @Summary Check whether an email is registered
// @Tags auth
// @Produce json
// @Param email query string true "Email address"
// @Success 200 {object} map[string]bool
// @Router /auth/exists [get]
func (h *AuthHandler) Exists(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		badRequest(c, "email query parameter is required")
		return
	}

	exists, err := h.svc.Exists(email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

// LoginRequest carries password-login credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary Password login
// @Description Verifies credentials, opens a session and sets auth cookies
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	result, err := h.svc.Login(req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setAuthCookies(c, result)
	c.JSON(http.StatusOK, LoginResponse{Token: result.AccessToken, User: result.User})
}

// Refresh godoc
// @Summary Rotate the session and mint a new access token
// @Description Reads the session cookie, rotates the session id and resets cookies.
// @Tags auth
// @Produce json
// @Success 200 {object} LoginResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	sessionID, err := c.Cookie(auth.CookieSession)
	if err != nil || sessionID == "" {
		auth.ClearAuthCookies(c, h.secureCookies())
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "missing session"})
		return
	}

	result, err := h.svc.Refresh(sessionID)
	if err != nil {
		auth.ClearAuthCookies(c, h.secureCookies())
		respondError(c, err)
		return
	}

	h.setAuthCookies(c, result)
	c.JSON(http.StatusOK, LoginResponse{Token: result.AccessToken, User: result.User})
}

// TokenResponse is the body of a successful token-pair login.
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user"`
}

// Token godoc
// @Summary Password login returning a token pair
// @Description Stateless flow for API clients: returns access and refresh JWTs and opens no cookie session.
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login credentials"
// @Success 200 {object} TokenResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/token [post]
func (h *AuthHandler) Token(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	pair, user, err := h.svc.TokenLogin(req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user,
	})
}

// RefreshTokenRequest carries the stateless refresh credential.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshToken godoc
// @Summary Mint a new access token from a refresh token
// @Description Stateless variant for API clients that hold a JWT refresh token instead of a session cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 401 {object} ErrorResponse
// @Router /auth/refresh-token [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	access, err := h.svc.RefreshWithToken(req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": access})
}

// Logout godoc
// @Summary End the session
// @Description Deletes the server-side session (idempotent) and clears auth cookies unconditionally.
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]bool
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID, _ := c.Cookie(auth.CookieSession)
	if err := h.svc.Logout(sessionID); err != nil {
		auth.ClearAuthCookies(c, h.secureCookies())
		respondError(c, err)
		return
	}

	auth.ClearAuthCookies(c, h.secureCookies())
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Validate godoc
// @Summary Session liveness check
// @Description Never errors; replies 200 with a validity flag.
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]bool
// @Router /auth/validate [get]
func (h *AuthHandler) Validate(c *gin.Context) {
	sessionID, _ := c.Cookie(auth.CookieSession)
	c.JSON(http.StatusOK, gin.H{"valid": h.svc.ValidateSession(sessionID)})
}

// OIDCLogin godoc
// @Summary Begin federated login
// @Tags auth
// @Success 302
// @Router /auth/oidc/login [get]
func (h *AuthHandler) OIDCLogin(c *gin.Context) {
	if h.oidc == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "federated login is not configured"})
		return
	}

	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode) // the provider redirect is cross-site
	c.SetCookie(auth.CookieState, state, 600, "/", "", h.secureCookies(), true)
	c.Redirect(http.StatusFound, h.oidc.AuthURL(state))
}

// OIDCCallback godoc
// @Summary Federated login callback
// @Description Exchanges the authorization code, finds or creates the account and opens a session.
// @Tags auth
// @Produce json
// @Success 200 {object} LoginResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/oidc/callback [get]
func (h *AuthHandler) OIDCCallback(c *gin.Context) {
	if h.oidc == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "federated login is not configured"})
		return
	}

	expected, err := c.Cookie(auth.CookieState)
	if err != nil || expected == "" || c.Query("state") != expected {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "state mismatch"})
		return
	}
	c.SetCookie(auth.CookieState, "", -1, "/", "", h.secureCookies(), true)

	user, err := h.oidc.HandleCallback(c.Request.Context(), c.Query("code"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "federated login failed"})
		return
	}

	result, err := h.svc.FederatedLogin(user)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setAuthCookies(c, result)
	c.JSON(http.StatusOK, LoginResponse{Token: result.AccessToken, User: result.User})
}
