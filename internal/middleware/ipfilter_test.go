// SPDX-License-Identifier: MIT
package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func filterRequest(blocklist []string, remoteAddr string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/r/pasta/menu", nil)
	c.Request.RemoteAddr = remoteAddr

	IPFilterMiddleware(blocklist)(c)
	return w
}

func TestIPFilterBlocksCIDR(t *testing.T) {
	w := filterRequest([]string{"192.168.1.0/24"}, "192.168.1.100:1234")
	if w.Code != 403 {
		t.Errorf("Expected 403 for blocked IP, got %d", w.Code)
	}
}

func TestIPFilterAllowsOthers(t *testing.T) {
	w := filterRequest([]string{"192.168.1.0/24"}, "10.0.0.1:1234")
	if w.Code == 403 {
		t.Error("Expected allowed for non-blocked IP")
	}
}

func TestIPFilterBareAddress(t *testing.T) {
	blocklist := []string{"10.0.0.7", "2001:db8::1"}

	if w := filterRequest(blocklist, "10.0.0.7:1234"); w.Code != 403 {
		t.Errorf("Expected 403 for blocked address, got %d", w.Code)
	}
	if w := filterRequest(blocklist, "10.0.0.8:1234"); w.Code == 403 {
		t.Error("Neighbouring address should be allowed")
	}
	if w := filterRequest(blocklist, "[2001:db8::1]:443"); w.Code != 403 {
		t.Errorf("Expected 403 for blocked IPv6 address, got %d", w.Code)
	}
}

func TestIPFilterIgnoresInvalidEntries(t *testing.T) {
	w := filterRequest([]string{"not-an-ip", ""}, "10.0.0.1:1234")
	if w.Code == 403 {
		t.Error("Invalid entries should not block anything")
	}
}

func TestIPFilterRejectsUnparseableClient(t *testing.T) {
	w := filterRequest(nil, "garbage")
	if w.Code != 403 {
		t.Errorf("Expected 403 for unparseable client address, got %d", w.Code)
	}
}
