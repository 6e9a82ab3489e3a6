package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Access  AccessConfig  `yaml:"access"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port      int    `yaml:"port"`
	Host      string `yaml:"host"`
	StaticDir string `yaml:"static_dir"` // directory served for non-API paths
}

// StorageConfig holds object storage (S3/R2) configuration
type StorageConfig struct {
	Region     string `yaml:"region"`
	Bucket     string `yaml:"bucket"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Endpoint   string `yaml:"endpoint"` // custom endpoint for R2 / S3-compatible stores
	PublicURL  string `yaml:"public_url"`
	CatalogKey string `yaml:"catalog_key"`
}

// AccessConfig holds the trusted identity issuer configuration. If either
// field is empty, all mutating requests are denied.
type AccessConfig struct {
	TeamDomain string `yaml:"team_domain"`
	PolicyAUD  string `yaml:"policy_aud"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Storage.CatalogKey == "" {
		cfg.Storage.CatalogKey = "metadata.json"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	return &cfg, nil
}

// CertsURL returns the issuer's public key set endpoint
func (c *AccessConfig) CertsURL() string {
	return fmt.Sprintf("https://%s/cdn-cgi/access/certs", c.TeamDomain)
}
