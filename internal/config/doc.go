// Package config resolves the PalletLoad server and CLI settings from CLI
// flags, an optional YAML file, environment variables and defaults.
package config
