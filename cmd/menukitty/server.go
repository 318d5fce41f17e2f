// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/thatcatcamp/menukitty/internal/backup"
	"github.com/thatcatcamp/menukitty/internal/broadcast"
	"github.com/thatcatcamp/menukitty/internal/config"
	"github.com/thatcatcamp/menukitty/internal/db"
	"github.com/thatcatcamp/menukitty/internal/email"
	"github.com/thatcatcamp/menukitty/internal/feedback"
	"github.com/thatcatcamp/menukitty/internal/handlers"
	"github.com/thatcatcamp/menukitty/internal/logging"
	"github.com/thatcatcamp/menukitty/internal/media"
	"github.com/thatcatcamp/menukitty/internal/middleware"
	"github.com/thatcatcamp/menukitty/internal/themes"
	"github.com/thatcatcamp/menukitty/internal/tls"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Server operations",
	Long:  "Start and manage the MenuKitty HTTP server",
}

var serverStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the HTTP server",
	Run: func(cmd *cobra.Command, args []string) {
		mustInitDB()
		if err := runServer(); err != nil {
			fatal("%v", err)
		}
	},
}

func runServer() error {
	log := logging.For("server")
	conn := db.GetDB()
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	// Theme changes fan out in-process, or through Redis across instances
	hub := broadcast.NewHub()
	var pub broadcast.Publisher = hub
	if addr := config.GetString("broadcast.redis_addr"); addr != "" {
		relay, err := broadcast.NewRedisRelay(broadcast.RedisConfig{
			Addr:     addr,
			Password: config.GetString("broadcast.redis_password"),
			DB:       config.GetInt("broadcast.redis_db"),
			Prefix:   config.GetString("broadcast.channel_prefix"),
		}, hub)
		if err != nil {
			return fmt.Errorf("failed to connect theme relay: %w", err)
		}
		defer relay.Close()
		pub = relay
		g.Go(func() error { return relay.Run(ctx) })
		log.Info().Str("addr", addr).Msg("Theme relay connected")
	}

	var mailer email.Sender
	if svc, err := email.NewEmailService(); err == nil {
		mailer = svc
	} else {
		log.Warn().Err(err).Msg("Feedback email notifications disabled")
	}
	fb := feedback.NewService(conn, mailer)
	defer fb.Wait()

	loginLimiter := middleware.NewRateLimiter(config.GetInt("auth.login_rate_limit"), time.Minute)
	defer loginLimiter.Stop()
	feedbackLimiter := middleware.NewRateLimiter(10, time.Minute)
	defer feedbackLimiter.Stop()

	srv, err := handlers.NewServer(handlers.Deps{
		DB:              conn,
		Themes:          themes.NewService(themes.NewStore(conn), pub),
		Hub:             hub,
		Media:           media.NewStore(conn, int64(config.GetInt("media.max_upload_mb"))<<20, config.GetInt("media.thumbnail_size")),
		Feedback:        fb,
		LoginLimiter:    loginLimiter,
		FeedbackLimiter: feedbackLimiter,
		BlockedIPs:      config.GetStringSlice("server.blocked_ips"),
		MetricsEnabled:  config.GetBool("metrics.enabled"),
		PollInterval:    config.GetDuration("theme.poll_interval"),
		RetryDelay:      config.GetDuration("theme.retry_delay"),
	})
	if err != nil {
		return err
	}
	router := srv.Router()

	// Log level and format follow edits to the config file
	config.Watch(func() {
		logging.Setup(config.GetString("log.level"), config.GetString("log.format"), os.Stderr)
		log.Info().Msg("Configuration reloaded")
	})

	if config.GetBool("backups.enable_auto_backup") {
		if conn.Dialector.Name() != "sqlite" {
			log.Warn().Str("database", conn.Dialector.Name()).Msg("Automatic backups only support sqlite, skipping")
		} else {
			manager := backup.NewBackupManager(config.GetString("backups.path"), config.GetInt("backups.retention"))
			scheduler := backup.NewScheduler(manager, conn, config.GetString("backups.schedule"))
			if err := scheduler.Start(); err != nil {
				return err
			}
			defer scheduler.Stop()
		}
	}

	httpAddr := ":" + config.GetString("server.http_port")
	baseDomain := config.GetString("server.base_domain")

	if !config.GetBool("server.tls_enabled") {
		log.Info().Str("addr", httpAddr).Str("base_domain", baseDomain).Msg("Starting HTTP server (TLS disabled)")
		serve(ctx, g, newHTTPServer(ctx, httpAddr, router), false)
		return wait(g)
	}

	tlsCfg, err := tls.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load TLS config: %w", err)
	}
	tlsManager, err := tls.NewManager(tlsCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize TLS manager: %w", err)
	}
	if err := tlsManager.Manage(ctx); err != nil {
		return err
	}

	httpsPort := config.GetString("server.https_port")
	redirect := gin.New()
	redirect.Use(middleware.HTTPSRedirectMiddleware(httpsPort))
	redirect.NoRoute(gin.WrapH(router))

	// Bind port 80 first so a privilege error shows up before any traffic
	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		return fmt.Errorf("failed to bind HTTP server to %s (port 80 usually needs root): %w", httpAddr, err)
	}
	plain := newHTTPServer(ctx, "", tlsManager.HTTPChallengeHandler(redirect))
	g.Go(func() error {
		if err := plain.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return shutdown(plain)
	})

	httpsAddr := ":" + httpsPort
	log.Info().Str("addr", httpsAddr).Strs("domains", tlsManager.Domains()).Msg("Starting HTTPS server")
	secure := newHTTPServer(ctx, httpsAddr, router)
	secure.TLSConfig = tlsManager.TLSConfig()
	serve(ctx, g, secure, true)
	return wait(g)
}

// newHTTPServer derives request contexts from ctx, so long-lived theme
// streams end when shutdown starts instead of holding Shutdown open.
func newHTTPServer(ctx context.Context, addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

// serve runs s in g and shuts it down when ctx ends.
func serve(ctx context.Context, g *errgroup.Group, s *http.Server, useTLS bool) {
	g.Go(func() error {
		var err error
		if useTLS {
			err = s.ListenAndServeTLS("", "")
		} else {
			err = s.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return shutdown(s)
	})
}

func shutdown(s *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Shutdown(ctx)
}

func wait(g *errgroup.Group) error {
	err := g.Wait()
	log := logging.For("server")
	if cerr := db.Close(); cerr != nil {
		log.Warn().Err(cerr).Msg("Closing database failed")
	}
	log.Info().Msg("Server stopped")
	return err
}

func init() {
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)
}
