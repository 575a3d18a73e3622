// Package config loads service configuration from the process
// environment.
package config
