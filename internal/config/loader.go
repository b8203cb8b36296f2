package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces pipetriage environment variables.
// PIPETRIAGE_AZURE_TENANT_ID overrides azure.tenant_id.
const envPrefix = "PIPETRIAGE_"

// defaultsYAML seeds every key so the merged config is always complete.
const defaultsYAML = `
app:
  log_level: info
  log_format: json
azure:
  tenant_id: ""
  client_id: ""
  client_secret: ""
  subscription_id: ""
  resource_group: ""
  factory_name: ""
ai:
  api_key: ""
  model: gemini-2.0-flash
  temperature: 0.3
embeddings:
  base_url: http://localhost:8080/v1
  model: BAAI/bge-small-en-v1.5
  api_key: ""
vectorstore:
  path: ~/.config/pipetriage/vectorstore
  compress: false
  collection: adf_errors
smtp:
  host: ""
  port: 587
  username: ""
  password: ""
  from: ""
  to: []
  starttls: true
server:
  host: 127.0.0.1
  port: 8085
scan:
  lookback_hours: 24
`

// DefaultPath returns the default config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".config", "pipetriage", "config.yaml")
}

// Load merges defaults, an optional YAML file and environment
// overrides, in that order of precedence (env wins). A missing file is
// not an error; a malformed one is.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider([]byte(defaultsYAML)), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Defaults plus env is a valid configuration.
		case err != nil:
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		}
	}

	// PIPETRIAGE_SMTP_HOST -> smtp.host. Section names contain no
	// underscores, so only the first underscore is a separator.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.Replace(s, "_", ".", 1)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
