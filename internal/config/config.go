// Package config loads pipetriage configuration from YAML and
// environment variables via koanf.
package config

import (
	"errors"
	"fmt"
)

// Config is the full application configuration.
type Config struct {
	App         AppConfig         `koanf:"app"`
	Azure       AzureConfig       `koanf:"azure"`
	AI          AIConfig          `koanf:"ai"`
	Embeddings  EmbeddingsConfig  `koanf:"embeddings"`
	VectorStore VectorStoreConfig `koanf:"vectorstore"`
	SMTP        SMTPConfig        `koanf:"smtp"`
	Server      ServerConfig      `koanf:"server"`
	Scan        ScanConfig        `koanf:"scan"`
}

// AppConfig holds process-wide settings.
type AppConfig struct {
	LogLevel  string `koanf:"log_level"`  // debug|info|warn|error
	LogFormat string `koanf:"log_format"` // json|console
}

// AzureConfig identifies the data factory and its service principal.
type AzureConfig struct {
	TenantID       string `koanf:"tenant_id"`
	ClientID       string `koanf:"client_id"`
	ClientSecret   string `koanf:"client_secret"`
	SubscriptionID string `koanf:"subscription_id"`
	ResourceGroup  string `koanf:"resource_group"`
	FactoryName    string `koanf:"factory_name"`
}

// Configured reports whether the ADF client can be built.
func (c AzureConfig) Configured() bool {
	return c.TenantID != "" && c.ClientID != "" && c.ClientSecret != "" &&
		c.SubscriptionID != "" && c.ResourceGroup != "" && c.FactoryName != ""
}

// AIConfig holds the generative-AI collaborator settings.
type AIConfig struct {
	APIKey      string  `koanf:"api_key"`
	Model       string  `koanf:"model"`
	Temperature float64 `koanf:"temperature"`
}

// EmbeddingsConfig holds embedding-API settings.
type EmbeddingsConfig struct {
	BaseURL string `koanf:"base_url"`
	Model   string `koanf:"model"`
	APIKey  string `koanf:"api_key"`
}

// VectorStoreConfig holds the embedded vector store settings.
type VectorStoreConfig struct {
	Path       string `koanf:"path"`
	Compress   bool   `koanf:"compress"`
	Collection string `koanf:"collection"`
}

// SMTPConfig holds email delivery settings.
type SMTPConfig struct {
	Host     string   `koanf:"host"`
	Port     int      `koanf:"port"`
	Username string   `koanf:"username"`
	Password string   `koanf:"password"`
	From     string   `koanf:"from"`
	To       []string `koanf:"to"`
	StartTLS bool     `koanf:"starttls"`
}

// ServerConfig holds the dashboard/API server settings.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// Address returns host:port for the listener.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ScanConfig controls failure scanning.
type ScanConfig struct {
	// LookbackHours is the default window when querying failed runs.
	LookbackHours int `koanf:"lookback_hours"`
}

// Validate checks cross-field consistency. Collaborator sections may
// be absent (the app degrades), but present values must be sane.
func (c *Config) Validate() error {
	switch c.App.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.App.LogLevel)
	}
	switch c.App.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format %q", c.App.LogFormat)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Scan.LookbackHours <= 0 {
		return errors.New("scan lookback must be positive")
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		return fmt.Errorf("invalid AI temperature %v", c.AI.Temperature)
	}
	return nil
}
