// Package config loads, normalizes, and validates the TOML configuration
// shared by the scenecast daemon and CLI.
package config
