package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Cookie names shared between the auth handlers and the middleware.
const (
	CookieSession = "session_id"
	CookieAccess  = "access_token"
	CookieState   = "oauth_state"
)

// SetAuthCookies stores the session id and access token as HTTP-only,
// strict-same-site cookies scoped to the whole path.
func SetAuthCookies(c *gin.Context, sessionID, accessToken string, sessionTTL, accessTTL time.Duration, secure bool) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookieSession, sessionID, int(sessionTTL.Seconds()), "/", "", secure, true)
	c.SetCookie(CookieAccess, accessToken, int(accessTTL.Seconds()), "/", "", secure, true)
}

// ClearAuthCookies removes both auth cookies. Called on logout and before
// any 401 on a protected route so a broken credential cannot wedge the
// client into a permanent bad state.
func ClearAuthCookies(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookieSession, "", -1, "/", "", secure, true)
	c.SetCookie(CookieAccess, "", -1, "/", "", secure, true)
}
