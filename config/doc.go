// Package config handles loading and parsing of configuration from YAML files
// and environment variables. It defines the application configuration structure
// including listen address, backend addresses, strategy selection, forwarding
// timeouts, and health check intervals.
package config
