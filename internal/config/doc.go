// Package config handles configuration loading for synadminctl.
//
// # Overview
//
// Configuration is optional. When no file exists every setting has a
// usable default and the CLI works with discovery alone.
//
// # Configuration File
//
// Location (first match wins):
//
//  1. Path from SYNADMINCTL_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/synadminctl/config.yaml
//  3. ~/.config/synadminctl/config.yaml
//
// Example:
//
//	homeserver: "https://matrix.example.org"
//	device_name: "synadminctl on admin-box"
//	well_known_scheme: "https"
//	timeout: "30s"
//	session:
//	  path: "/home/op/.config/synadminctl/session.toml"
//	journal:
//	  enabled: true
//	  path: "/var/lib/synadminctl/journal.db"
//	logging:
//	  level: "warn"
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	homeserver: "${MATRIX_HOMESERVER}"
//
// Unset variables expand to the empty string.
//
// # Environment Overrides
//
// After the file is read these variables take precedence:
//
//	SYNADMINCTL_HOMESERVER  homeserver
//	SYNADMINCTL_LOG_LEVEL   logging.level
//	SYNADMINCTL_TIMEOUT     timeout
//	SYNADMINCTL_SESSION     session.path
//	SYNADMINCTL_JOURNAL     "false" disables the journal, a path relocates it
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	timeout: "1m30s"
package config
