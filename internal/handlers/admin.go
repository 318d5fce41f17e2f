// SPDX-License-Identifier: MIT
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/thatcatcamp/menukitty/internal/auth"
	"github.com/thatcatcamp/menukitty/internal/middleware"
	"github.com/thatcatcamp/menukitty/internal/restaurants"
)

const msgInvalidPIN = "Invalid PIN"

// loginPage renders the PIN form, or goes straight to the dashboard when
// the session is still valid.
func (s *Server) loginPage(c *gin.Context) {
	if auth.IsAdmin(c) {
		c.Redirect(http.StatusFound, "/r/"+restaurantOf(c).Slug+"/admin")
		return
	}
	p, err := s.newPage(c, "Admin login", "login")
	if err != nil {
		s.pageError(c, err)
		return
	}
	s.renderPage(c, http.StatusOK, "login", p)
}

// login exchanges the restaurant PIN for a session cookie. JSON clients get
// JSON back; the HTML form is redirected to the dashboard.
func (s *Server) login(c *gin.Context) {
	r := restaurantOf(c)

	var pin string
	if strings.HasPrefix(c.ContentType(), "application/json") {
		var body struct {
			PIN string `json:"pin"`
		}
		if !bindJSON(c, &body) {
			return
		}
		pin = body.PIN
	} else {
		pin = c.PostForm("pin")
	}

	if !auth.CheckPIN(pin, r.PINHash) {
		s.log.Warn().Str("restaurant", r.Slug).Str("ip", middleware.ClientIP(c)).Msg("Failed admin login")
		if wantsJSON(c) {
			jsonError(c, http.StatusUnauthorized, msgInvalidPIN)
			return
		}
		p, err := s.newPage(c, "Admin login", "login")
		if err != nil {
			s.pageError(c, err)
			return
		}
		p.Error = msgInvalidPIN
		s.renderPage(c, http.StatusUnauthorized, "login", p)
		return
	}

	token, err := auth.GenerateToken(r)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to generate session token")
		jsonError(c, http.StatusInternalServerError, "failed to start session")
		return
	}
	auth.SetSession(c, token)
	if _, err := middleware.EnsureCSRFToken(c); err != nil {
		jsonError(c, http.StatusInternalServerError, "failed to start session")
		return
	}

	s.log.Info().Str("restaurant", r.Slug).Msg("Admin logged in")

	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "restaurant": r.Slug})
		return
	}
	c.Redirect(http.StatusFound, "/r/"+r.Slug+"/admin")
}

// logout clears the session cookie.
func (s *Server) logout(c *gin.Context) {
	auth.ClearSession(c)
	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}
	c.Redirect(http.StatusFound, "/r/"+restaurantOf(c).Slug+"/admin/login")
}

func (s *Server) getSettings(c *gin.Context) {
	r, err := restaurants.GetByID(s.db, restaurantOf(c).ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"restaurant": r})
}

// putSettings updates the restaurant's display fields. Tagline entries are
// merged per language; an empty text removes that language.
func (s *Server) putSettings(c *gin.Context) {
	current, err := restaurants.GetByID(s.db, restaurantOf(c).ID)
	if err != nil {
		s.fail(c, err)
		return
	}

	var in restaurants.Update
	if !bindJSON(c, &in) {
		return
	}

	if in.LogoMediaID != nil && *in.LogoMediaID != "" {
		if _, err := s.media.Get(c.Request.Context(), current.ID, *in.LogoMediaID); err != nil {
			validationFailed(c, map[string]string{"logoMediaId": "unknown media"})
			return
		}
	}
	if in.Tagline != nil {
		merged := make(map[string]string, len(current.Tagline)+len(in.Tagline))
		for k, v := range current.Tagline {
			merged[k] = v
		}
		for k, v := range in.Tagline {
			if strings.TrimSpace(v) == "" {
				delete(merged, k)
			} else {
				merged[k] = strings.TrimSpace(v)
			}
		}
		in.Tagline = merged
	}

	r, err := restaurants.Apply(s.db, current.ID, in)
	if err != nil {
		s.fail(c, err)
		return
	}
	middleware.InvalidateRestaurant(r.Slug)
	c.JSON(http.StatusOK, gin.H{"restaurant": r})
}

// putPIN replaces the admin PIN. Open sessions stay valid until they
// expire.
func (s *Server) putPIN(c *gin.Context) {
	var body struct {
		PIN string `json:"pin"`
	}
	if !bindJSON(c, &body) {
		return
	}
	r := restaurantOf(c)
	if err := auth.ValidatePIN(body.PIN); err != nil {
		validationFailed(c, map[string]string{"pin": err.Error()})
		return
	}
	if err := restaurants.SetPIN(s.db, r.ID, body.PIN); err != nil {
		s.fail(c, err)
		return
	}
	middleware.InvalidateRestaurant(r.Slug)
	s.log.Info().Str("restaurant", r.Slug).Msg("Admin PIN changed")
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
