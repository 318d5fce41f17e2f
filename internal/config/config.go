// SPDX-License-Identifier: MIT

// Package config holds the process configuration in a YAML file managed by
// viper. Accessors return zero values until InitConfig has run.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EnvConfigPath overrides the default config file location.
const EnvConfigPath = "MENUKITTY_CONFIG"

var v *viper.Viper

// DefaultPath returns the config file path from MENUKITTY_CONFIG, or
// ~/.menukitty/config.yaml.
func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".menukitty", "config.yaml")
}

// InitConfig loads path, writing it with every default on first run.
func InitConfig(path string) error {
	nv := viper.New()
	for key, value := range defaults {
		nv.SetDefault(key, value)
	}
	nv.SetConfigFile(path)
	nv.SetConfigType("yaml")

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	err := nv.ReadInConfig()
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist):
		if err := nv.WriteConfigAs(path); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	default:
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}

	v = nv
	return nil
}

// defaults is written to a new config file and backs every missing key.
var defaults = map[string]interface{}{
	"server.http_port":    "8080",
	"server.https_port":   "443",
	"server.behind_proxy": false,
	"server.base_domain":  "localhost",
	"server.tls_enabled":  false,
	"server.blocked_ips":  []string{},

	"database.type": "sqlite",
	"database.path": "/var/lib/menukitty/menukitty.db",

	"auth.jwt_secret":       "CHANGE_ME_IN_PRODUCTION_USE_ENV_VAR",
	"auth.jwt_expiry_hours": 8,
	"auth.bcrypt_cost":      12,
	"auth.login_rate_limit": 5, // per minute per IP

	"theme.poll_interval": "5s",
	"theme.retry_delay":   "1s",
	"theme.ws_path":       "/api/theme/ws",

	// An empty redis_addr keeps broadcasts in-process
	"broadcast.redis_addr":     "",
	"broadcast.redis_password": "",
	"broadcast.redis_db":       0,
	"broadcast.channel_prefix": "menukitty:theme:",

	"media.max_upload_mb":  8,
	"media.thumbnail_size": 200,

	"backups.path":               "/var/lib/menukitty/backups",
	"backups.retention":          10,
	"backups.enable_auto_backup": true,
	"backups.schedule":           "0 3 * * *",

	"tls.email":         "",
	"tls.cert_dir":      "/var/lib/menukitty/certs",
	"tls.staging":       false,
	"tls.extra_domains": []string{},

	"email.smtp_host": "",
	"email.smtp_port": "587",
	"email.from":      "",
	"email.password":  "",

	"log.level":  "info",
	"log.format": "console",

	"metrics.enabled": true,
}

func lookup[T any](key string, get func(*viper.Viper, string) T) T {
	if v == nil {
		var zero T
		return zero
	}
	return get(v, key)
}

func GetString(key string) string {
	return lookup(key, (*viper.Viper).GetString)
}

func GetInt(key string) int {
	return lookup(key, (*viper.Viper).GetInt)
}

func GetBool(key string) bool {
	return lookup(key, (*viper.Viper).GetBool)
}

// GetDuration parses values such as "5s" or "250ms".
func GetDuration(key string) time.Duration {
	return lookup(key, (*viper.Viper).GetDuration)
}

func GetStringSlice(key string) []string {
	return lookup(key, (*viper.Viper).GetStringSlice)
}

// IsSet reports whether key has a value in the file or the defaults.
func IsSet(key string) bool {
	return lookup(key, (*viper.Viper).IsSet)
}

// GetAll returns the merged settings as nested maps.
func GetAll() map[string]interface{} {
	if v == nil {
		return nil
	}
	return v.AllSettings()
}

// Set stores value under key and rewrites the config file.
func Set(key string, value interface{}) error {
	if v == nil {
		return fmt.Errorf("config not initialized")
	}
	v.Set(key, value)
	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Watch calls fn after the config file is changed on disk and reloaded.
func Watch(fn func()) {
	if v == nil {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if e.Has(fsnotify.Write) || e.Has(fsnotify.Create) {
			fn()
		}
	})
	v.WatchConfig()
}
