// Package config loads, normalizes, and validates the vidsift TOML
// configuration. Invalid configuration fails fast before any scanning begins.
package config
