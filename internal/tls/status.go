// SPDX-License-Identifier: MIT
package tls

import (
	"context"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caddyserver/certmagic"
)

// renewWindow matches the point where certmagic starts renewing a 90-day
// certificate.
const renewWindow = 30 * 24 * time.Hour

// CertificateStatus describes the stored certificate of one managed domain.
// Pending is set when none has been issued yet.
type CertificateStatus struct {
	Domain          string
	Pending         bool
	Issuer          string
	NotBefore       time.Time
	NotAfter        time.Time
	DaysUntilExpiry int
}

// NeedsRenewal reports whether the certificate is missing or inside the
// renewal window at now.
func (s CertificateStatus) NeedsRenewal(now time.Time) bool {
	return s.Pending || s.NotAfter.Sub(now) <= renewWindow
}

// CertificateStatus returns one entry per managed domain, in Domains order.
func (m *Manager) CertificateStatus(ctx context.Context) ([]CertificateStatus, error) {
	now := time.Now()
	domains := m.Domains()
	out := make([]CertificateStatus, 0, len(domains))

	for _, domain := range domains {
		bundle, err := m.magic.Storage.Load(ctx, certmagic.StorageKeys.SiteCert(m.acme.IssuerKey(), domain))
		switch {
		case errors.Is(err, fs.ErrNotExist):
			out = append(out, CertificateStatus{Domain: domain, Pending: true})
			continue
		case err != nil:
			return nil, fmt.Errorf("failed to read certificate for %s: %w", domain, err)
		}

		st, err := parseStatus(domain, bundle, now)
		if err != nil {
			m.log.Warn().Err(err).Str("domain", domain).Msg("Unreadable certificate")
			st = CertificateStatus{Domain: domain, Pending: true}
		}
		out = append(out, st)
	}
	return out, nil
}

// parseStatus reads the leaf, the first certificate of a PEM bundle.
func parseStatus(domain string, bundle []byte, now time.Time) (CertificateStatus, error) {
	for rest := bundle; len(rest) > 0; {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		leaf, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return CertificateStatus{}, err
		}
		return CertificateStatus{
			Domain:          domain,
			Issuer:          leaf.Issuer.CommonName,
			NotBefore:       leaf.NotBefore,
			NotAfter:        leaf.NotAfter,
			DaysUntilExpiry: int(leaf.NotAfter.Sub(now) / (24 * time.Hour)),
		}, nil
	}
	return CertificateStatus{}, errors.New("no certificate in PEM data")
}
