// Package config loads and validates application settings from environment
// variables and an optional config file, giving every component type-safe
// access to server, database, auth, and notification pipeline tuning.
package config
