// SPDX-License-Identifier: MIT
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "menukitty_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "menukitty_http_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method", "route"},
	)

	ThemeSaves = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "menukitty_theme_saves_total",
			Help: "Total number of persisted theme changes",
		},
	)

	ThemeBroadcasts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "menukitty_theme_broadcasts_total",
			Help: "Theme change notifications sent, by transport",
		},
		[]string{"transport"},
	)

	CertificateEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "menukitty_certificate_events_total",
			Help: "ACME certificate lifecycle events",
		},
		[]string{"event"},
	)

	ThemeSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "menukitty_theme_subscribers",
			Help: "Number of open theme change subscriptions",
		},
	)

	PaletteCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "menukitty_palette_cache_hits_total",
			Help: "Derived palettes served from the memo",
		},
	)

	PaletteCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "menukitty_palette_cache_misses_total",
			Help: "Derived palettes computed on demand",
		},
	)
)

// Middleware records request counts and durations by matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		RequestCount.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		RequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
