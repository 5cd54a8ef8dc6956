package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hifiberry/extensions/internal/branding"
	"github.com/hifiberry/extensions/internal/config"
	"github.com/hifiberry/extensions/internal/extension"
	"github.com/hifiberry/extensions/internal/lifecycle"
	"github.com/hifiberry/extensions/internal/linker"
	"github.com/hifiberry/extensions/internal/process"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	settingsPath string
	verbose      bool
)

// newRunner builds the subprocess runner. Tests replace it.
var newRunner = func(logger *slog.Logger) process.Runner {
	return process.NewExecRunner(logger)
}

// app is what a command works with once settings and config are loaded.
type app struct {
	settings *config.Settings
	cfg      *extension.Config
	store    *extension.Store
	links    *linker.Symlinks
	runner   process.Runner
	logger   *slog.Logger
	engine   *lifecycle.Engine
}

var current *app

var rootCmd = &cobra.Command{
	Use:   branding.CLIName() + " [command] [extension]",
	Short: branding.Description(),
	Long: branding.DisplayName() + ` installs, updates, starts and stops container-based extensions
described in ` + branding.ConfigFile() + `. Without a command it prints the status of every
configured extension.

Every setting can also be given in the environment, e.g. ` + branding.EnvVar(config.KeyRoot) + `.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatus(cmd, nil)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String(config.KeyConfigFile, branding.ConfigFile(), "Extensions config file")
	pf.StringVar(&settingsPath, "settings", branding.SettingsFile(), "Settings file")
	pf.String(config.KeyRoot, branding.ExtensionsRoot(), "Directory holding installed extensions")
	pf.String(config.KeyHostDir, branding.HostDir(), "Host directory plugin exports are linked into")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
}

// setup loads settings and the extensions config and wires the engine.
func setup(cmd *cobra.Command, args []string) error {
	current = nil

	// Commands that need nothing from disk.
	if cmd.Name() == "version" || cmd.Name() == "help" {
		return nil
	}

	settings, err := config.Load(settingsPath, cmd.Flags())
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if err := level.UnmarshalText([]byte(settings.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", settings.LogLevel, err)
	}
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	cfg, err := extension.LoadConfig(settings.ConfigFile)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Warn("config file not found, no extensions configured", "path", settings.ConfigFile)
		cfg = &extension.Config{Path: settings.ConfigFile}
	case err != nil:
		return err
	}

	a := &app{
		settings: settings,
		cfg:      cfg,
		store:    extension.NewStore(settings.Root, settings.MarkerFile, settings.DescriptorFile),
		links:    linker.NewSymlinks(settings.HostDir, settings.ExportDir),
		runner:   newRunner(logger),
		logger:   logger,
	}
	a.engine = lifecycle.New(cfg, a.store, a.links, a.runner,
		lifecycle.WithOutput(cmd.OutOrStdout()),
		lifecycle.WithLogger(logger),
		lifecycle.WithGitCommand(settings.GitCommand),
		lifecycle.WithComposeCommand(settings.ComposeArgv()),
		lifecycle.WithGitRetries(settings.GitRetries),
	)
	current = a

	logger.Debug("settings loaded",
		"config_file", settings.ConfigFile,
		"root", settings.Root,
		"host_dir", settings.HostDir,
		"extensions", len(cfg.Extensions))
	return nil
}

// Execute runs the root command with build info injected via ldflags. Any
// error is printed to stdout before it is returned.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(rootCmd.OutOrStdout(), err)
		return err
	}
	return nil
}
