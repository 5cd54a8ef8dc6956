package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hifiberry/extensions/internal/branding"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const fileType = "yaml"

// Setting keys. Each key doubles as the suffix of its environment override,
// e.g. "host_dir" is read from EXTENSIONS_HOST_DIR.
const (
	KeyConfigFile     = "config_file"
	KeyRoot           = "root"
	KeyHostDir        = "host_dir"
	KeyMarkerFile     = "marker_file"
	KeyDescriptorFile = "descriptor_file"
	KeyExportDir      = "export_dir"
	KeyGitCommand     = "git_command"
	KeyComposeCommand = "compose_command"
	KeyGitRetries     = "git_retries"
	KeyLogLevel       = "log_level"
)

var validate = validator.New()

// Settings is the resolved tool configuration.
type Settings struct {
	ConfigFile     string `mapstructure:"config_file" validate:"required"`
	Root           string `mapstructure:"root" validate:"required"`
	HostDir        string `mapstructure:"host_dir" validate:"required"`
	MarkerFile     string `mapstructure:"marker_file" validate:"required"`
	DescriptorFile string `mapstructure:"descriptor_file" validate:"required"`
	ExportDir      string `mapstructure:"export_dir" validate:"required"`
	GitCommand     string `mapstructure:"git_command" validate:"required"`
	ComposeCommand string `mapstructure:"compose_command" validate:"required"`
	GitRetries     int    `mapstructure:"git_retries" validate:"min=0,max=10"`
	LogLevel       string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
}

// ComposeArgv splits the compose command into its argv prefix, so that
// "docker compose" yields ["docker", "compose"].
func (s *Settings) ComposeArgv() []string {
	return strings.Fields(s.ComposeCommand)
}

// SetDefaults registers the built-in value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyConfigFile, branding.ConfigFile())
	v.SetDefault(KeyRoot, branding.ExtensionsRoot())
	v.SetDefault(KeyHostDir, branding.HostDir())
	v.SetDefault(KeyMarkerFile, "is_active")
	v.SetDefault(KeyDescriptorFile, "docker-compose.yaml")
	v.SetDefault(KeyExportDir, "beo-extensions")
	v.SetDefault(KeyGitCommand, "git")
	v.SetDefault(KeyComposeCommand, "docker-compose")
	v.SetDefault(KeyGitRetries, 0)
	v.SetDefault(KeyLogLevel, "warn")
}

// Load resolves settings. settingsFile may be empty to use the branded
// default; a missing settings file is not an error. Flags in fs whose names
// match a key (e.g. --config_file) override every other source.
func Load(settingsFile string, flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()
	SetDefaults(v)

	if settingsFile == "" {
		settingsFile = branding.SettingsFile()
	}
	v.SetConfigFile(settingsFile)
	v.SetConfigType(fileType)
	v.SetEnvPrefix(branding.EnvPrefix())
	v.AutomaticEnv()

	if flags != nil {
		for _, key := range []string{KeyConfigFile, KeyRoot, KeyHostDir, KeyLogLevel} {
			if f := flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag --%s: %w", key, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading settings file %s: %w", settingsFile, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that every required setting is present and in range.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid settings: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid settings: %w", err)
	}
	if len(s.ComposeArgv()) == 0 {
		return fmt.Errorf("invalid settings: compose_command is blank")
	}
	return nil
}
