// Package config handles configuration loading for ecb-dashboard.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults, plus the built-in
// catalog of ECB series the dashboard tracks.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from ECB_DASHBOARD_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/ecb-dashboard/config.yaml
//  3. ~/.config/ecb-dashboard/config.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	security:
//	  pin_hash: "${ECB_DASHBOARD_PIN_HASH}"
//
// Syntax: ${VAR_NAME}
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	security:
//	  session_timeout: "30m"
//	  lockout_duration: "15m"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "0.0.0.0:5000"
//
// Database:
//
//	database:
//	  path: "data/database.db"
//
// Security (PIN gate):
//
//	security:
//	  pin_hash: "$2b$12$..."      # bcrypt hash, generate via: ecb-dashboard pin
//	  session_timeout: "30m"
//	  max_attempts: 5
//	  lockout_duration: "15m"
//
// ECB API client:
//
//	ecb:
//	  base_url: "https://data-api.ecb.europa.eu/service"
//	  timeout: "30s"
//	  max_retries: 3
//	  retry_delay: "1s"
//	  rate_limit_per_minute: 10
//	  use_local_data: false
//	  local_data_dir: "data/raw-data"
//
// Tailscale:
//
//	tailscale:
//	  enabled: false
//	  hostname: "ecb-dashboard"
//	  auth_key: "${TS_AUTHKEY}"
//	  funnel: false
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Validation
//
// Load() validates:
//
//   - Server address presence (unless Tailscale is enabled)
//   - Database path presence
//   - Duration format validity
//   - Lockout attempt threshold
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load("/etc/ecb-dashboard/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
