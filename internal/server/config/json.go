package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/securevault/internal/flagx"
	"github.com/dmitrijs2005/securevault/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON
// configuration files. It uses timex.Duration for interval fields, which
// accepts both string values such as "5m" and integer nanoseconds. After
// unmarshalling, its fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddr         string         `json:"endpoint_addr"`
	VaultPath            string         `json:"vault_path"`
	SecretKey            string         `json:"secret_key"`
	SessionTokenValidity timex.Duration `json:"session_token_validity"`
	IdleTimeout          timex.Duration `json:"idle_timeout"`
	MaxAttempts          int            `json:"max_attempts"`
	LockoutCooldown      timex.Duration `json:"lockout_cooldown"`
	S3RootUser           string         `json:"s3_root_user"`
	S3RootPassword       string         `json:"s3_root_password"`
	S3Bucket             string         `json:"s3_bucket"`
	S3Region             string         `json:"s3_region"`
	S3BaseEndpoint       string         `json:"s3_base_endpoint"`
	HSMKeyDir            string         `json:"hsm_key_dir"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config flags; when
// neither is set, no JSON file is loaded. An unreadable or invalid file
// panics: a half-applied configuration is worse than no server.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	applyJson(config, c)
}

func applyJson(config *Config, c *JsonConfig) {
	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.VaultPath != "" {
		config.VaultPath = c.VaultPath
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.SessionTokenValidity.Duration != 0 {
		config.SessionTokenValidity = c.SessionTokenValidity.Duration
	}
	if c.IdleTimeout.Duration != 0 {
		config.IdleTimeout = c.IdleTimeout.Duration
	}
	if c.MaxAttempts != 0 {
		config.MaxAttempts = c.MaxAttempts
	}
	if c.LockoutCooldown.Duration != 0 {
		config.LockoutCooldown = c.LockoutCooldown.Duration
	}
	if c.S3RootUser != "" {
		config.S3RootUser = c.S3RootUser
	}
	if c.S3RootPassword != "" {
		config.S3RootPassword = c.S3RootPassword
	}
	if c.S3Bucket != "" {
		config.S3Bucket = c.S3Bucket
	}
	if c.S3Region != "" {
		config.S3Region = c.S3Region
	}
	if c.S3BaseEndpoint != "" {
		config.S3BaseEndpoint = c.S3BaseEndpoint
	}
	if c.HSMKeyDir != "" {
		config.HSMKeyDir = c.HSMKeyDir
	}
}
