// SPDX-License-Identifier: MIT
package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// IPFilterMiddleware blocks requests whose client address falls in one of
// the CIDR ranges or equals one of the bare addresses in blocklist.
func IPFilterMiddleware(blocklist []string) gin.HandlerFunc {
	blocked := make([]*net.IPNet, 0, len(blocklist))
	for _, entry := range blocklist {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if !strings.Contains(entry, "/") {
			if ip := net.ParseIP(entry); ip != nil {
				bits := 32
				if ip.To4() == nil {
					bits = 128
				}
				blocked = append(blocked, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
				continue
			}
		}
		_, ipNet, err := net.ParseCIDR(entry)
		if err != nil {
			log.Warn().Str("entry", entry).Msg("ignoring invalid blocked_ips entry")
			continue
		}
		blocked = append(blocked, ipNet)
	}

	return func(c *gin.Context) {
		clientIP := net.ParseIP(ClientIP(c))
		if clientIP == nil {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		for _, ipNet := range blocked {
			if ipNet.Contains(clientIP) {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
		}

		c.Next()
	}
}
