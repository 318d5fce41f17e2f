// SPDX-License-Identifier: MIT

// Package tls provisions ACME certificates for the storefront host names.
package tls

import (
	"fmt"
	"os"
	"strings"

	"github.com/thatcatcamp/menukitty/internal/config"
)

// Config holds TLS configuration
type Config struct {
	Email        string
	CertDir      string
	Staging      bool
	BaseDomain   string
	ExtraDomains []string
	Enabled      bool
}

// LoadConfig loads TLS configuration from config system
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Email:        config.GetString("tls.email"),
		CertDir:      config.GetString("tls.cert_dir"),
		Staging:      config.GetBool("tls.staging"),
		BaseDomain:   config.GetString("server.base_domain"),
		ExtraDomains: config.GetStringSlice("tls.extra_domains"),
		Enabled:      config.GetBool("server.tls_enabled"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Enabled && cfg.CertDir != "" {
		if err := os.MkdirAll(cfg.CertDir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create cert directory: %w", err)
		}
	}

	return cfg, nil
}

// Validate checks the fields needed to request certificates.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Email == "" {
		return fmt.Errorf("tls.email is required when TLS is enabled")
	}
	if c.BaseDomain == "" || c.BaseDomain == "localhost" {
		return fmt.Errorf("server.base_domain must be a public host name when TLS is enabled")
	}
	return nil
}

// Domains lists every host name to manage: the base domain first, then the
// extra names, lowercased and without duplicates.
func (c *Config) Domains() []string {
	seen := map[string]bool{}
	var out []string
	for _, d := range append([]string{c.BaseDomain}, c.ExtraDomains...) {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}
