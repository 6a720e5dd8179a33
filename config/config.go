package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

type ServerConfig struct {
	Port int `toml:"port"`
}

type AuthConfig struct {
	// Secret signs and verifies the short-lived bearer tokens issued by
	// the identity provider. Token issuance itself is out of scope here.
	Secret       string `toml:"secret"`
	TokenMinutes int    `toml:"token_minutes"`
}

type StorageConfig struct {
	DataDir string `toml:"data_dir"` // metadata database location
	BlobDir string `toml:"blob_dir"` // full body/attachment blobs
}

type SMTPConfig struct {
	Server      string `toml:"server"`
	Port        int    `toml:"port"`
	Username    string `toml:"username"`
	Password    string `toml:"password"`
	From        string `toml:"from"` // relay address messages are dispatched from
	UseSTARTTLS bool   `toml:"use_starttls"` // true for port 587, false for port 465
}

type Config struct {
	Server  ServerConfig  `toml:"server"`
	Auth    AuthConfig    `toml:"auth"`
	Storage StorageConfig `toml:"storage"`
	SMTP    SMTPConfig    `toml:"smtp"`
}

func LoadConfig(filepath string) (*Config, error) {
	var config Config

	// Set default values
	config.Server.Port = 3000
	config.Auth.TokenMinutes = 60
	config.Storage.DataDir = "./data"
	config.Storage.BlobDir = "./data/blobs"
	config.SMTP.Port = 587 // Default to STARTTLS port
	config.SMTP.UseSTARTTLS = true

	_, err := toml.DecodeFile(filepath, &config)
	if err != nil {
		return nil, err
	}

	if config.Auth.Secret == "" {
		return nil, fmt.Errorf("auth secret is required")
	}
	if config.SMTP.Server == "" {
		return nil, fmt.Errorf("smtp server is required")
	}
	if config.SMTP.From == "" {
		config.SMTP.From = config.SMTP.Username
	}

	return &config, nil
}

// GetPort returns the configured SMTP port or the conventional default
// for the selected encryption mode.
func (c *SMTPConfig) GetPort() int {
	if c.Port != 0 {
		return c.Port
	}
	if c.UseSTARTTLS {
		return 587 // STARTTLS port
	}
	return 465 // SSL/TLS port
}
