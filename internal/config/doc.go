// Package config loads wreath's TOML configuration.
//
// # Overview
//
// The file lives at ~/.config/wreath/config.toml by default. Every field is
// optional and a missing file is not an error, so wreath runs out of the box
// against a dev server on localhost.
//
// # TOML Format
//
//	api_base = "http://localhost:8081/api/v1"
//	poll_seconds = 30
//	request_timeout_seconds = 10
//	log_file = "~/.local/state/wreath/wreath.log"
//	log_level = "info"   # debug, info, warn, error
//
// Empty strings and non-positive numbers fall back to the defaults above.
// Tilde paths are expanded to the home directory and made absolute.
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - TOML parsing errors and unknown log levels
//
// Command-line flags in cmd/wreath override the loaded values.
package config
