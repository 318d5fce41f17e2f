// SPDX-License-Identifier: MIT
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/thatcatcamp/menukitty/internal/feedback"
	"github.com/thatcatcamp/menukitty/internal/media"
	"github.com/thatcatcamp/menukitty/internal/menu"
	"github.com/thatcatcamp/menukitty/internal/middleware"
	"github.com/thatcatcamp/menukitty/internal/models"
	"github.com/thatcatcamp/menukitty/internal/restaurants"
	"github.com/thatcatcamp/menukitty/internal/themes"
	"gorm.io/gorm"
)

// restaurantOf returns the restaurant resolved for the route. The
// resolution middleware guarantees it on every /r/:slug route.
func restaurantOf(c *gin.Context) *models.Restaurant {
	return middleware.CurrentRestaurant(c)
}

func jsonError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func validationFailed(c *gin.Context, fields map[string]string) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
		"error":  "validation failed",
		"fields": fields,
	})
}

// fail maps service errors to status codes. Unknown errors are logged and
// answered with 500.
func (s *Server) fail(c *gin.Context, err error) {
	var ve *themes.ValidationError
	var fieldErrs validator.ValidationErrors
	var inUse *media.InUseError

	switch {
	case errors.As(err, &ve):
		validationFailed(c, ve.Fields)
	case errors.As(err, &fieldErrs):
		fields := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields[lowerFirst(fe.Field())] = "failed " + fe.Tag() + " check"
		}
		validationFailed(c, fields)
	case errors.As(err, &inUse):
		usages := make([]string, 0, len(inUse.Usages))
		for _, u := range inUse.Usages {
			usages = append(usages, u.String())
		}
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error(), "usages": usages})
	case errors.Is(err, menu.ErrNotFound),
		errors.Is(err, media.ErrNotFound),
		errors.Is(err, restaurants.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		jsonError(c, http.StatusNotFound, "not found")
	case errors.Is(err, media.ErrInvalidType):
		jsonError(c, http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, media.ErrTooLarge):
		jsonError(c, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, themes.ErrInvalidColor),
		errors.Is(err, menu.ErrInvalidName),
		errors.Is(err, menu.ErrUnknownKind),
		errors.Is(err, menu.ErrOrderMismatch),
		errors.Is(err, media.ErrEmpty),
		errors.Is(err, feedback.ErrInvalidRating),
		errors.Is(err, feedback.ErrEmptyMessage):
		jsonError(c, http.StatusBadRequest, err.Error())
	default:
		s.log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		jsonError(c, http.StatusInternalServerError, "internal error")
	}
}

// paramID parses a numeric path parameter, answering 400 when it is not
// one.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		jsonError(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// bindJSON decodes the body into dst, answering 400 on malformed input.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// wantsJSON reports whether the client asked for a JSON answer rather than
// an HTML page.
func wantsJSON(c *gin.Context) bool {
	if strings.HasPrefix(c.ContentType(), "application/json") {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
