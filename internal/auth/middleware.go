// SPDX-License-Identifier: MIT
package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thatcatcamp/menukitty/internal/config"
	"github.com/thatcatcamp/menukitty/internal/models"
)

// SessionCookie holds the admin JWT.
const SessionCookie = "menukitty_session"

// MsgLoginAgain is the body of every 401 response.
const MsgLoginAgain = "please log in again"

// SetSession writes the session cookie.
func SetSession(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		SessionCookie,
		token,
		int(SessionTTL().Seconds()),
		"/",
		"",
		config.GetBool("server.tls_enabled"),
		true, // httpOnly
	)
}

// ClearSession expires the session cookie.
func ClearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", config.GetBool("server.tls_enabled"), true)
}

// sessionFor returns the claims of the request when they belong to the
// restaurant resolved for this route.
func sessionFor(c *gin.Context) (*Claims, bool) {
	cookie, err := c.Cookie(SessionCookie)
	if err != nil || cookie == "" {
		return nil, false
	}

	claims, err := ValidateToken(cookie)
	if err != nil {
		return nil, false
	}

	val, exists := c.Get("restaurant")
	if !exists {
		return nil, false
	}
	r, ok := val.(*models.Restaurant)
	if !ok || r.ID != claims.RestaurantID {
		return nil, false
	}
	return claims, true
}

// RequireAdmin rejects API requests without a valid session for the current
// restaurant with 401 and a JSON error.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := sessionFor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": MsgLoginAgain})
			return
		}
		c.Set("admin", claims)
		c.Next()
	}
}

// RequireAdminPage is RequireAdmin for HTML pages: it redirects to the
// restaurant's login page instead of answering 401.
func RequireAdminPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := sessionFor(c)
		if !ok {
			c.Redirect(http.StatusFound, "/r/"+c.Param("slug")+"/admin/login")
			c.Abort()
			return
		}
		c.Set("admin", claims)
		c.Next()
	}
}

// IsAdmin reports whether the request carries a session for the current
// restaurant. It does not abort.
func IsAdmin(c *gin.Context) bool {
	_, ok := sessionFor(c)
	return ok
}
