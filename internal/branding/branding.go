// Package branding provides compile-time identity values for the CLI.
//
// Device images that ship the tool under another name or with a different
// filesystem layout edit branding.yaml in this package before building.
// Go's //go:embed bakes it into the binary.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName        string `yaml:"cli_name"`
	DisplayName    string `yaml:"display_name"`
	Description    string `yaml:"description"`
	EnvPrefix      string `yaml:"env_prefix"`
	GoModule       string `yaml:"go_module"`
	SettingsFile   string `yaml:"settings_file"`
	ConfigFile     string `yaml:"config_file"`
	ExtensionsRoot string `yaml:"extensions_root"`
	HostDir        string `yaml:"host_dir"`
}

func load() {
	once.Do(func() {
		// Set hard defaults in case the embedded file is missing/empty.
		defaults = brand{
			CLIName:        "extensions",
			DisplayName:    "Extensions",
			Description:    "Install, update, start and stop device extensions",
			EnvPrefix:      "EXTENSIONS",
			GoModule:       "github.com/hifiberry/extensions",
			SettingsFile:   "/etc/extensions.yaml",
			ConfigFile:     "/etc/extensions.conf",
			ExtensionsRoot: "/data/extensions",
			HostDir:        "/opt/beocreate/beo-extensions",
		}
		// Overlay with embedded YAML values.
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "extensions").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// EnvPrefix returns the environment variable prefix (e.g., "EXTENSIONS").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GoModule returns the Go module path, reported by version --json.
func GoModule() string { load(); return defaults.GoModule }

// SettingsFile returns the default path of the optional YAML settings file.
func SettingsFile() string { load(); return defaults.SettingsFile }

// ConfigFile returns the default path of the extension list.
func ConfigFile() string { load(); return defaults.ConfigFile }

// ExtensionsRoot returns the default directory holding one directory per
// installed extension.
func ExtensionsRoot() string { load(); return defaults.ExtensionsRoot }

// HostDir returns the default extension-loading directory of the host
// application.
func HostDir() string { load(); return defaults.HostDir }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("root") → "EXTENSIONS_ROOT".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
