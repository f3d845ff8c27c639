// Package config loads application configuration from environment variables
// with fail-fast validation at startup.
package config
