// SPDX-License-Identifier: MIT

// Package handlers serves the storefront, theme API and admin portal of
// every restaurant under /r/:slug.
package handlers

import (
	"fmt"
	"html/template"
	"time"

	"github.com/rs/zerolog"
	"github.com/thatcatcamp/menukitty/internal/broadcast"
	"github.com/thatcatcamp/menukitty/internal/feedback"
	"github.com/thatcatcamp/menukitty/internal/logging"
	"github.com/thatcatcamp/menukitty/internal/media"
	"github.com/thatcatcamp/menukitty/internal/menu"
	"github.com/thatcatcamp/menukitty/internal/middleware"
	"github.com/thatcatcamp/menukitty/internal/themes"
	"gorm.io/gorm"
)

// Deps are the collaborators of a Server. Themes, Hub and DB are required;
// the services are created from DB when nil.
type Deps struct {
	DB       *gorm.DB
	Themes   *themes.Service
	Hub      *broadcast.Hub
	Menu     *menu.Service
	Media    *media.Store
	Feedback *feedback.Service

	// LoginLimiter and FeedbackLimiter guard the two anonymous POSTs.
	LoginLimiter    *middleware.RateLimiter
	FeedbackLimiter *middleware.RateLimiter

	BlockedIPs     []string
	MetricsEnabled bool

	// PollInterval is handed to the browser sync script. Zero disables
	// polling.
	PollInterval time.Duration
	// RetryDelay is the pause before the script retries a failed fetch.
	RetryDelay time.Duration
}

// Server holds the handlers' dependencies.
type Server struct {
	db       *gorm.DB
	themes   *themes.Service
	hub      *broadcast.Hub
	menu     *menu.Service
	media    *media.Store
	feedback *feedback.Service

	loginLimiter    *middleware.RateLimiter
	feedbackLimiter *middleware.RateLimiter
	blockedIPs      []string
	metricsEnabled  bool
	pollInterval    time.Duration
	retryDelay      time.Duration

	pages map[string]*template.Template
	log   zerolog.Logger
}

// NewServer checks d and parses the page templates.
func NewServer(d Deps) (*Server, error) {
	if d.DB == nil || d.Themes == nil || d.Hub == nil {
		return nil, fmt.Errorf("handlers: DB, Themes and Hub are required")
	}
	if d.Menu == nil {
		d.Menu = menu.NewService(d.DB)
	}
	if d.Media == nil {
		d.Media = media.NewStore(d.DB, 0, 0)
	}
	if d.Feedback == nil {
		d.Feedback = feedback.NewService(d.DB, nil)
	}
	if d.LoginLimiter == nil {
		d.LoginLimiter = middleware.NewRateLimiter(5, time.Minute)
	}
	if d.FeedbackLimiter == nil {
		d.FeedbackLimiter = middleware.NewRateLimiter(10, time.Minute)
	}
	if d.RetryDelay <= 0 {
		d.RetryDelay = time.Second
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	return &Server{
		db:              d.DB,
		themes:          d.Themes,
		hub:             d.Hub,
		menu:            d.Menu,
		media:           d.Media,
		feedback:        d.Feedback,
		loginLimiter:    d.LoginLimiter,
		feedbackLimiter: d.FeedbackLimiter,
		blockedIPs:      d.BlockedIPs,
		metricsEnabled:  d.MetricsEnabled,
		pollInterval:    d.PollInterval,
		retryDelay:      d.RetryDelay,
		pages:           pages,
		log:             logging.For("handlers"),
	}, nil
}
