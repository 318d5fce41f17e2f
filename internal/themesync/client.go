// SPDX-License-Identifier: MIT
package themesync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/thatcatcamp/menukitty/internal/middleware"
	"github.com/thatcatcamp/menukitty/internal/themes"
)

var (
	// ErrFetch wraps a theme fetch that failed after its retry.
	ErrFetch = errors.New("theme fetch failed")
	// ErrUnauthorized means the admin session is missing or expired.
	ErrUnauthorized = errors.New("please log in again")
)

// Fetcher loads the authoritative theme.
type Fetcher interface {
	FetchTheme(ctx context.Context) (themes.ThemeView, error)
}

// Saver persists a theme.
type Saver interface {
	SaveTheme(ctx context.Context, in themes.ThemeInput) (themes.ThemeView, error)
}

// Client talks to one restaurant's theme API. BaseURL is the restaurant
// root, e.g. https://menu.example.com/r/pasta.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient creates a client with a cookie jar for the admin session.
func NewClient(baseURL string) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Jar: jar, Timeout: 15 * time.Second},
	}
}

// FetchTheme performs GET {base}/api/theme.
func (c *Client) FetchTheme(ctx context.Context) (themes.ThemeView, error) {
	var env themes.Envelope
	if err := c.do(ctx, http.MethodGet, "/api/theme", nil, &env); err != nil {
		return themes.ThemeView{}, err
	}
	return env.Theme, nil
}

// SaveTheme performs PUT {base}/api/admin/theme.
func (c *Client) SaveTheme(ctx context.Context, in themes.ThemeInput) (themes.ThemeView, error) {
	var env themes.Envelope
	if err := c.do(ctx, http.MethodPut, "/api/admin/theme", in, &env); err != nil {
		return themes.ThemeView{}, err
	}
	return env.Theme, nil
}

// Login exchanges the admin PIN for a session cookie.
func (c *Client) Login(ctx context.Context, pin string) error {
	return c.do(ctx, http.MethodPost, "/admin/login", map[string]string{"pin": pin}, nil)
}

// WebSocketURL returns the push endpoint for this restaurant.
func (c *Client) WebSocketURL() (string, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/api/theme/ws"
	return u.String(), nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		if token := c.csrfToken(); token != "" {
			req.Header.Set(middleware.CSRFHeaderName, token)
		}
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&apiErr)
		if apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s (%d)", method, path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// csrfToken echoes the cookie the server issued at login.
func (c *Client) csrfToken() string {
	if c.HTTP == nil || c.HTTP.Jar == nil {
		return ""
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return ""
	}
	for _, ck := range c.HTTP.Jar.Cookies(u) {
		if ck.Name == middleware.CSRFCookieName {
			return ck.Value
		}
	}
	return ""
}
