// Package config loads runtime configuration for the agent portal CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment: AGENT_API_URL, APP_ENV, AGENT_DB_PATH.
//  3. Optional config file selected with -c or -config. Files ending in
//     .yaml or .yml are decoded as YAML, anything else as JSON.
//  4. Command-line flags, which override everything above.
//
// Supported flags
//
//	-a string   base URL of the backend API
//	-e string   deployment environment ("development", "production")
//	-d string   path of the local session database
//	-t int      API request timeout (seconds)
//
// # File schema
//
// Durations accept strings like "15s" or integer nanoseconds:
//
//	{
//	  "api_base_url": "https://support.example.com",
//	  "environment": "production",
//	  "database_path": "agent.db",
//	  "request_timeout": "15s",
//	  "otp_resend_cooldown": "60s",
//	  "log_level": "info",
//	  "log_backend": "zap"
//	}
package config
