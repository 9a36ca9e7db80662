package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/agentportal/internal/flagx"
	"github.com/dmitrijs2005/agentportal/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the config file. Zero fields leave the
// corresponding Config value untouched.
type FileConfig struct {
	APIBaseURL        string         `json:"api_base_url" yaml:"api_base_url"`
	Environment       string         `json:"environment" yaml:"environment"`
	DatabasePath      string         `json:"database_path" yaml:"database_path"`
	RequestTimeout    timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	OTPResendCooldown timex.Duration `json:"otp_resend_cooldown" yaml:"otp_resend_cooldown"`
	LogLevel          string         `json:"log_level" yaml:"log_level"`
	LogBackend        string         `json:"log_backend" yaml:"log_backend"`
}

func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *FileConfig) apply(cfg *Config) {
	if fc.APIBaseURL != "" {
		cfg.APIBaseURL = fc.APIBaseURL
	}
	if fc.Environment != "" {
		cfg.Environment = fc.Environment
	}
	if fc.DatabasePath != "" {
		cfg.DatabasePath = fc.DatabasePath
	}
	if fc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.OTPResendCooldown.Duration > 0 {
		cfg.OTPResendCooldown = fc.OTPResendCooldown.Duration
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.LogBackend != "" {
		cfg.LogBackend = fc.LogBackend
	}
}
