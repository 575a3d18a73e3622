// Package cmd contains the CLI commands for the googlelink service.
package cmd
