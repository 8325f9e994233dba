package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/canyon-webchat/internal/panel"
)

// EnvPrefix prefixes every chat panel variable, e.g. CHAT_SERVER_URL.
const EnvPrefix = "CHAT"

// Config aggregates every configuration section.
type Config struct {
	Server ServerConfig
	Client ClientConfig
	Log    LogConfig
}

// ClientConfig describes how the panel reaches the chat service.
type ClientConfig struct {
	ServerURL         string        `envconfig:"SERVER_URL" default:"http://localhost:5050"`
	GuestName         string        `envconfig:"GUEST_NAME" default:"Web Guest"`
	RequestTimeout    time.Duration `envconfig:"REQUEST_TIMEOUT" default:"0s"`
	PendingPolicy     string        `envconfig:"PENDING_POLICY" default:"block"`
	ResetAlertOnNonOK bool          `envconfig:"RESET_ALERT_ON_NON_OK" default:"false"`
}

// Pending parses PendingPolicy.
func (c ClientConfig) Pending() (panel.PendingPolicy, error) {
	return panel.ParsePendingPolicy(c.PendingPolicy)
}

// ResetPolicy maps ResetAlertOnNonOK onto a panel.ResetPolicy.
func (c ClientConfig) ResetPolicy() panel.ResetPolicy {
	if c.ResetAlertOnNonOK {
		return panel.ResetAlertOnNonOK
	}
	return panel.ResetAlertOnError
}

// LogConfig controls zerolog output.
type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
	File  string `envconfig:"LOG_FILE"`
}

// ServerConfig describes the stub backend listener.
type ServerConfig struct {
	Addr string
}

// LoadDotEnv loads .env files into the process environment. A missing file
// is reported but never fatal; callers usually just log it.
func LoadDotEnv(paths ...string) error {
	return godotenv.Load(paths...)
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg, err := Read()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read decodes the environment without validating values, so callers can
// apply overrides (command-line flags) before calling Validate.
func Read() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	var client ClientConfig
	if err := envconfig.Process(EnvPrefix, &client); err != nil {
		return nil, fmt.Errorf("invalid client configuration: %w", err)
	}

	var logCfg LogConfig
	if err := envconfig.Process(EnvPrefix, &logCfg); err != nil {
		return nil, fmt.Errorf("invalid log configuration: %w", err)
	}

	return &Config{Server: server, Client: client, Log: logCfg}, nil
}

// Validate checks every value that Read accepts syntactically but the panel
// cannot use.
func (c *Config) Validate() error {
	if err := c.Client.validate(); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
		return fmt.Errorf("invalid %s_LOG_LEVEL value %q: %w", EnvPrefix, c.Log.Level, err)
	}
	return nil
}

func (c ClientConfig) validate() error {
	u, err := url.Parse(strings.TrimSpace(c.ServerURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid %s_SERVER_URL value %q", EnvPrefix, c.ServerURL)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("invalid %s_REQUEST_TIMEOUT value %s: must not be negative", EnvPrefix, c.RequestTimeout)
	}
	if _, err := c.Pending(); err != nil {
		return fmt.Errorf("invalid %s_PENDING_POLICY: %w", EnvPrefix, err)
	}
	return nil
}

// loadServerConfig parses the stub backend listen address.
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "5050"
	}

	if strings.Contains(port, ":") {
		// Accept ":5050" or "127.0.0.1:5050" verbatim.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}
