// SPDX-License-Identifier: MIT
package tls

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"

	"github.com/caddyserver/certmagic"
	"github.com/rs/zerolog"
	"github.com/thatcatcamp/menukitty/internal/logging"
	"github.com/thatcatcamp/menukitty/internal/metrics"
)

// Manager handles certificate provisioning and management
type Manager struct {
	cfg   *Config
	magic *certmagic.Config
	acme  *certmagic.ACMEIssuer
	log   zerolog.Logger
}

// NewManager creates a manager. Certificates are not requested until
// Manage is called.
func NewManager(cfg *Config) (*Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logging.For("tls")

	var magicCfg *certmagic.Config
	cache := certmagic.NewCache(certmagic.CacheOptions{
		GetConfigForCert: func(certmagic.Certificate) (*certmagic.Config, error) {
			return magicCfg, nil
		},
	})
	magicCfg = certmagic.New(cache, certmagic.Config{
		Storage: &certmagic.FileStorage{Path: cfg.CertDir},
		OnEvent: func(_ context.Context, event string, data map[string]any) error {
			return onCertEvent(log, event, data)
		},
	})

	ca := certmagic.LetsEncryptProductionCA
	if cfg.Staging {
		ca = certmagic.LetsEncryptStagingCA
	}
	issuer := certmagic.NewACMEIssuer(magicCfg, certmagic.ACMEIssuer{
		CA:     ca,
		Email:  cfg.Email,
		Agreed: true,
	})
	magicCfg.Issuers = []certmagic.Issuer{issuer}

	return &Manager{
		cfg:   cfg,
		magic: magicCfg,
		acme:  issuer,
		log:   log,
	}, nil
}

// onCertEvent counts certmagic lifecycle events and logs the ones that
// change what is served.
func onCertEvent(log zerolog.Logger, event string, data map[string]any) error {
	metrics.CertificateEvents.WithLabelValues(event).Inc()

	switch event {
	case "cert_obtained":
		log.Info().Interface("identifier", data["identifier"]).Bool("renewal", data["renewal"] == true).Msg("Certificate obtained")
	case "cert_failed":
		log.Error().Interface("identifier", data["identifier"]).Interface("error", data["error"]).Msg("Certificate request failed")
	case "cert_ocsp_revoked":
		log.Warn().Interface("identifier", data["identifier"]).Msg("Certificate revoked")
	}
	return nil
}

// Domains returns the host names certificates are managed for.
func (m *Manager) Domains() []string {
	return m.cfg.Domains()
}

// Manage starts obtaining and renewing certificates in the background.
func (m *Manager) Manage(ctx context.Context) error {
	domains := m.Domains()
	m.log.Info().Strs("domains", domains).Bool("staging", m.cfg.Staging).Msg("Managing certificates")
	if err := m.magic.ManageAsync(ctx, domains); err != nil {
		return fmt.Errorf("failed to manage domains: %w", err)
	}
	return nil
}

// TLSConfig returns the config for the HTTPS listener.
func (m *Manager) TLSConfig() *tls.Config {
	return m.magic.TLSConfig()
}

// HTTPChallengeHandler wraps next so the plain HTTP listener can answer
// ACME HTTP-01 challenges.
func (m *Manager) HTTPChallengeHandler(next http.Handler) http.Handler {
	return m.acme.HTTPChallengeHandler(next)
}
