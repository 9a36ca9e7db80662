package config

import (
	"os"
	"time"
)

const EnvProduction = "production"

// Config holds runtime settings for the agent CLI. It is built once in main
// and passed explicitly to the components that need it.
type Config struct {
	APIBaseURL        string
	Environment       string
	DatabasePath      string
	RequestTimeout    time.Duration
	OTPResendCooldown time.Duration
	LogLevel          string
	LogBackend        string
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8000"
	c.Environment = "development"
	c.DatabasePath = "agent.db"
	c.RequestTimeout = 15 * time.Second
	c.OTPResendCooldown = 60 * time.Second
	c.LogLevel = "info"
	c.LogBackend = "slog"
}

// IsProduction reports whether the client runs in a production deployment.
// Cookies are only marked secure in production.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// LoadConfig builds a Config from defaults, the process environment, an
// optional config file and the process command line, in that order.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:], os.Getenv)
}

func load(args []string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg, getenv)
	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseEnv(cfg *Config, getenv func(string) string) {
	if v := getenv("AGENT_API_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := getenv("APP_ENV"); v != "" {
		cfg.Environment = v
	}
	if v := getenv("AGENT_DB_PATH"); v != "" {
		cfg.DatabasePath = v
	}
}
