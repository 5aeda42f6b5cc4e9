package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/atriumcms/atrium/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atriumcms/atrium/internal/models"
)

// RequireAuth verifies the access token and loads the account into the
// context. The token is read from the Authorization header (Bearer) with
// the access-token cookie as fallback. Any failure clears stale auth
// cookies before returning 401.
func RequireAuth(issuer *auth.TokenIssuer, db *gorm.DB, secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				reject(c, secureCookies, "invalid authorization header format")
				return
			}
			tokenString = parts[1]
		} else {
			tokenString, _ = c.Cookie(auth.CookieAccess)
		}

		if tokenString == "" {
			reject(c, secureCookies, "missing authorization")
			return
		}

		claims, err := issuer.Verify(tokenString, auth.AccessToken)
		if err != nil {
			slog.Warn("Invalid access token", "error", err)
			reject(c, secureCookies, "invalid or expired token")
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			reject(c, secureCookies, "invalid or expired token")
			return
		}

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			reject(c, secureCookies, "invalid or expired token")
			return
		}

		c.Set(auth.UserContextKey, &user)
		c.Set(auth.ClaimsContextKey, claims)
		c.Next()
	}
}

// CurrentUser extracts the authenticated account placed by RequireAuth.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(auth.UserContextKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

// CurrentClaims extracts the verified token claims placed by RequireAuth.
func CurrentClaims(c *gin.Context) (*auth.Claims, bool) {
	value, exists := c.Get(auth.ClaimsContextKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*auth.Claims)
	return claims, ok
}

func reject(c *gin.Context, secureCookies bool, message string) {
	auth.ClearAuthCookies(c, secureCookies)
	c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": message})
	c.Abort()
}
