// Package config defines the application configuration: defaults, the
// optional ftmpl.yaml file, and validation. Command-line flags are applied
// on top of the loaded file by the CLI.
package config
