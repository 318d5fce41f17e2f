// SPDX-License-Identifier: MIT
package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thatcatcamp/menukitty/internal/config"
)

const (
	CSRFCookieName = "menukitty_csrf"
	CSRFHeaderName = "X-CSRF-Token"
	csrfFormField  = "csrf_token"
	csrfContextKey = "csrf_token"
	csrfTokenBytes = 32
)

// MsgBadCSRF is the error body for a rejected write.
const MsgBadCSRF = "invalid CSRF token"

func safeMethod(m string) bool {
	return m == http.MethodGet || m == http.MethodHead || m == http.MethodOptions
}

// CSRFMiddleware guards admin writes with a double-submit token. The admin
// script echoes the cookie in X-CSRF-Token and HTML forms post it as
// csrf_token. A browser that marks a write as cross-site is refused even
// with a matching token.
func CSRFMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := EnsureCSRFToken(c)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		if safeMethod(c.Request.Method) {
			c.Next()
			return
		}

		if c.GetHeader("Sec-Fetch-Site") == "cross-site" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": MsgBadCSRF})
			return
		}

		sent := c.GetHeader(CSRFHeaderName)
		if sent == "" {
			sent = c.PostForm(csrfFormField)
		}
		if sent == "" || subtle.ConstantTimeCompare([]byte(sent), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": MsgBadCSRF})
			return
		}
		c.Next()
	}
}

// csrfTTL follows the admin session lifetime.
func csrfTTL() time.Duration {
	if h := config.GetInt("auth.jwt_expiry_hours"); h > 0 {
		return time.Duration(h) * time.Hour
	}
	return 8 * time.Hour
}

// EnsureCSRFToken returns the request's CSRF token, issuing a new cookie
// when there is none. Login calls it so a fresh session can write at once.
func EnsureCSRFToken(c *gin.Context) (string, error) {
	token, err := c.Cookie(CSRFCookieName)
	if err != nil || len(token) < csrfTokenBytes {
		raw := make([]byte, csrfTokenBytes)
		if _, err := rand.Read(raw); err != nil {
			return "", err
		}
		token = base64.RawURLEncoding.EncodeToString(raw)

		// Not HttpOnly: admin.js reads it
		c.SetSameSite(http.SameSiteStrictMode)
		c.SetCookie(CSRFCookieName, token, int(csrfTTL().Seconds()), "/", "",
			config.GetBool("server.tls_enabled"), false)
	}

	c.Set(csrfContextKey, token)
	return token, nil
}

// GetCSRFToken returns the token set by EnsureCSRFToken, or "".
func GetCSRFToken(c *gin.Context) string {
	return c.GetString(csrfContextKey)
}
