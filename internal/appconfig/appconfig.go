package appconfig

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"gopkg.in/yaml.v2"
)

// Config holds all configuration details
type Config struct {
	Host          string              `yaml:"host"`
	BasePath      string              `yaml:"basePath"`
	DocsPath      string              `yaml:"docsPath"`
	Database      DatabaseConfig      `yaml:"database"`
	Mailman       MailmanConfig       `yaml:"mailman"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Tokens        TokensConfig        `yaml:"tokens"`
	Pulsar        PulsarConfig        `yaml:"pulsar"`
	AWS           AWSConfig           `yaml:"aws"`
	Metrics       MetricsConfig       `yaml:"metrics"`
}

// DatabaseConfig defines the database connection details
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	Source string `yaml:"source"`
}

// MailmanConfig defines the mailing-list server connection. When
// ModifyLists is false no list is ever created or changed.
type MailmanConfig struct {
	URL         string `yaml:"url"`
	Token       string `yaml:"token"`
	Timeout     string `yaml:"timeout"`
	ModifyLists bool   `yaml:"modifyLists"`
}

// NotificationsConfig defines how welcome and claim emails are sent
type NotificationsConfig struct {
	Enabled bool   `yaml:"enabled"`
	From    string `yaml:"from"`
	BaseURL string `yaml:"baseUrl"`
}

// TokensConfig defines the claim token key. Secret takes precedence over
// SecretID, which names an AWS Secrets Manager secret.
type TokensConfig struct {
	Secret   string `yaml:"secret"`
	SecretID string `yaml:"secretId"`
	TTL      string `yaml:"ttl"`
}

// PulsarConfig defines the messaging system connection details
type PulsarConfig struct {
	URL           string `yaml:"url"`
	TopicProducer string `yaml:"topicProducer"`
	TopicConsumer string `yaml:"topicConsumer"`
	Subscription  string `yaml:"subscription"`
}

type AWSConfig struct {
	Region string `yaml:"region"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// MailmanTimeout parses the mailing-list request timeout, defaulting to
// ten seconds.
func (c *Config) MailmanTimeout() (time.Duration, error) {
	return parseDuration("mailman.timeout", c.Mailman.Timeout, 10*time.Second)
}

// TokenTTL parses the claim token lifetime, defaulting to three days.
func (c *Config) TokenTTL() (time.Duration, error) {
	return parseDuration("tokens.ttl", c.Tokens.TTL, 72*time.Hour)
}

func parseDuration(name, value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return d, nil
}

// LoadConfig loads and parses the configuration from a given file path.
// The file is a template executed against the environment.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config file path is required")
	}

	// Parse the template file
	tmpl, err := template.ParseFiles(path)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file template: %w", err)
	}

	// Execute the template with environment variables
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, loadEnvVars()); err != nil {
		return nil, fmt.Errorf("error executing config file template: %w", err)
	}

	// Load and unmarshal the YAML
	var config Config
	if err := yaml.Unmarshal(buf.Bytes(), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	if config.Database.Driver == "" {
		config.Database.Driver = "postgres"
	}
	if config.Metrics.Path == "" {
		config.Metrics.Path = "/metrics"
	}

	if _, err := config.MailmanTimeout(); err != nil {
		return nil, err
	}
	if _, err := config.TokenTTL(); err != nil {
		return nil, err
	}

	return &config, nil
}

// loadEnvVars loads environment variables into a map
func loadEnvVars() map[string]string {
	envVars := make(map[string]string)
	for _, env := range os.Environ() {
		kv := strings.SplitN(env, "=", 2)
		if len(kv) == 2 {
			envVars[kv[0]] = kv[1]
		}
	}
	return envVars
}
