// Package cli defines the Cobra command tree for the extensions CLI. Each file
// registers one or two commands with the root command. Commands delegate to
// the lifecycle engine and only handle arguments and output formatting.
package cli
