// Package config resolves the tool's own settings: where extensions live,
// which host directory receives plugin links, and which git and compose
// commands to run. Values come from built-in defaults, an optional YAML
// settings file, EXTENSIONS_* environment variables and command-line flags,
// in increasing order of precedence.
package config
