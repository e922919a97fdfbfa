// Package config loads runtime configuration for the SecureVault CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via flags: -c or -config.
//  3. Command-line flags, which override earlier values.
package config

import (
	"github.com/dmitrijs2005/securevault/internal/common"
)

// Config holds runtime settings for the SecureVault CLI.
//
// Fields:
//   - VaultPath: location of the encrypted vault file.
//   - HSMKeyDir: optional key directory for the software key-wrapping
//     provider; wrapping is disabled while empty.
type Config struct {
	VaultPath string
	HSMKeyDir string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.VaultPath = common.DefaultVaultFileName
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
