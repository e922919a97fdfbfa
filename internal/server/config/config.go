// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"time"

	"github.com/dmitrijs2005/securevault/internal/common"
)

// Config holds runtime settings for the SecureVault server.
//
// Fields:
//   - EndpointAddr: bind address for the HTTP API.
//   - VaultPath: location of the encrypted vault file.
//   - SecretKey: HMAC secret for signing session JWTs (HS256). Do not use
//     the development default in production.
//   - SessionTokenValidity: lifetime of issued bearer tokens.
//   - IdleTimeout: vault session idle timeout.
//   - MaxAttempts / LockoutCooldown: authentication lockout policy.
//   - S3RootUser / S3RootPassword / S3Bucket / S3Region / S3BaseEndpoint:
//     optional S3-compatible target for export backups; backups are
//     disabled while the endpoint or bucket is empty.
//   - HSMKeyDir: optional key directory for the software key-wrapping
//     provider; wrapping is disabled while empty.
type Config struct {
	EndpointAddr         string
	VaultPath            string
	SecretKey            string
	SessionTokenValidity time.Duration
	IdleTimeout          time.Duration
	MaxAttempts          int
	LockoutCooldown      time.Duration
	S3RootUser           string
	S3RootPassword       string
	S3Bucket             string
	S3Region             string
	S3BaseEndpoint       string
	HSMKeyDir            string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: SecretKey is insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8080"
	c.VaultPath = common.DefaultVaultFileName
	c.SecretKey = "secretKey"
	c.SessionTokenValidity = 15 * time.Minute
	c.IdleTimeout = 5 * time.Minute
	c.MaxAttempts = 5
	c.LockoutCooldown = 5 * time.Minute
	c.S3Region = "us-east-1"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
