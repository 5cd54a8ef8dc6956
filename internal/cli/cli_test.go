package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hifiberry/extensions/internal/process"
)

const cliConfig = `[spotify]
repository = https://github.com/example/spotify-extension.git
branch = main

[roon]
repository = https://github.com/example/roon-extension.git
`

type scriptedRunner struct {
	calls  []process.Command
	handle func(process.Command) *process.Output
}

func (s *scriptedRunner) Run(_ context.Context, cmd process.Command) *process.Output {
	s.calls = append(s.calls, cmd)
	if s.handle != nil {
		if out := s.handle(cmd); out != nil {
			return out
		}
	}
	return &process.Output{}
}

type cliEnv struct {
	dir      string
	root     string
	host     string
	confFile string
	runner   *scriptedRunner
}

func newCLIEnv(t *testing.T, conf string) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	env := &cliEnv{
		dir:      dir,
		root:     filepath.Join(dir, "extensions"),
		host:     filepath.Join(dir, "host"),
		confFile: filepath.Join(dir, "extensions.conf"),
		runner:   &scriptedRunner{},
	}
	require.NoError(t, os.MkdirAll(env.root, 0o755))
	require.NoError(t, os.MkdirAll(env.host, 0o755))
	if conf != "" {
		require.NoError(t, os.WriteFile(env.confFile, []byte(conf), 0o644))
	}

	orig := newRunner
	newRunner = func(*slog.Logger) process.Runner { return env.runner }
	t.Cleanup(func() { newRunner = orig })
	return env
}

// run executes the CLI with env's directories and returns what it printed to
// stdout.
func (env *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{
		"--settings", filepath.Join(env.dir, "absent.yaml"),
		"--config_file", env.confFile,
		"--root", env.root,
		"--host_dir", env.host,
	}, args...))

	err := Execute("1.2.3", "abc123", "2026-10-18")
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func (env *cliEnv) seed(t *testing.T, name string, active bool) {
	t.Helper()
	dir := filepath.Join(env.root, name)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "beo-extensions", "ui", name+"-ui"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docker-compose.yaml"), []byte("services: {}\n"), 0o644))
	if active {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "is_active"), nil, 0o644))
	}
}

func TestUnknownCommand(t *testing.T) {
	env := newCLIEnv(t, cliConfig)

	out, err := env.run(t, "bogus")
	require.Error(t, err)
	assert.Contains(t, out, `unknown command "bogus"`)
}

func TestUnknownExtension(t *testing.T) {
	env := newCLIEnv(t, cliConfig)

	for _, command := range []string{"install", "uninstall", "remove", "update", "start", "stop", "status"} {
		out, err := env.run(t, command, "ghost")
		require.Error(t, err, command)
		assert.Equal(t, "extension ghost unknown\n", out, command)
	}
	assert.Empty(t, env.runner.calls)
	_, err := os.Stat(filepath.Join(env.root, "ghost"))
	assert.True(t, os.IsNotExist(err))
}

func TestDefaultIsStatus(t *testing.T) {
	env := newCLIEnv(t, cliConfig)
	env.seed(t, "spotify", true)
	env.runner.handle = func(cmd process.Command) *process.Output {
		return &process.Output{Stdout: "NAME STATUS CONFIG FILES\nspotify running(1) x\n"}
	}

	out, err := env.run(t)
	require.NoError(t, err)
	assert.Equal(t, "spotify: running\nroon: not installed\n", out)

	status, err := env.run(t, "status")
	require.NoError(t, err)
	assert.Equal(t, out, status)
}

func TestStatusSingle(t *testing.T) {
	env := newCLIEnv(t, cliConfig)
	env.seed(t, "spotify", false)
	env.runner.handle = func(cmd process.Command) *process.Output {
		return &process.Output{Stdout: "NAME STATUS CONFIG FILES\n"}
	}

	out, err := env.run(t, "status", "spotify")
	require.NoError(t, err)
	assert.Equal(t, "not running\n", out)

	out, err = env.run(t, "status", "roon")
	require.Error(t, err)
	assert.Equal(t, "extension roon does not exist\n", out)
}

func TestStatusTextfile(t *testing.T) {
	env := newCLIEnv(t, cliConfig)
	env.seed(t, "spotify", true)
	path := filepath.Join(env.dir, "extensions.prom")

	_, err := env.run(t, "status", "--textfile", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `extension_installed{extension="spotify"} 1`)
	assert.Contains(t, string(data), `extension_installed{extension="roon"} 0`)
	assert.Contains(t, string(data), `extension_active{extension="spotify"} 1`)
}

func TestInstallStartStopUninstall(t *testing.T) {
	env := newCLIEnv(t, cliConfig)
	env.runner.handle = func(cmd process.Command) *process.Output {
		if cmd.Name == "git" {
			require.NoError(t, os.WriteFile(filepath.Join(cmd.Dir, "docker-compose.yaml"), nil, 0o644))
			require.NoError(t, os.MkdirAll(filepath.Join(cmd.Dir, "beo-extensions", "ui", "spotify-ui"), 0o755))
		}
		return nil
	}
	extDir := filepath.Join(env.root, "spotify")
	link := filepath.Join(env.host, "spotify-ui")

	out, err := env.run(t, "install", "spotify")
	require.NoError(t, err)
	assert.Contains(t, out, "got extension via git")
	target, err := os.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(extDir, "beo-extensions", "ui", "spotify-ui"), target)

	out, err = env.run(t, "install", "spotify")
	require.Error(t, err)
	assert.Equal(t, "extension spotify already installed\n", out)

	_, err = env.run(t, "start", "spotify")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(extDir, "is_active"))

	_, err = env.run(t, "stop", "spotify")
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(extDir, "is_active"))

	out, err = env.run(t, "remove", "spotify")
	require.NoError(t, err)
	assert.Contains(t, out, "removed "+extDir)
	assert.NoDirExists(t, extDir)
	_, err = os.Lstat(link)
	assert.True(t, os.IsNotExist(err))
}

func TestStartFailureExitsNonZero(t *testing.T) {
	env := newCLIEnv(t, cliConfig)
	env.seed(t, "spotify", false)
	env.runner.handle = func(process.Command) *process.Output {
		return &process.Output{ExitCode: 1, Stderr: "no such image\n"}
	}

	out, err := env.run(t, "start", "spotify")
	require.Error(t, err)
	assert.Contains(t, out, "failed to start containers for extension spotify (exit status 1)")
	assert.Contains(t, out, "no such image")
}

func TestStartupAndShutdownExitZero(t *testing.T) {
	env := newCLIEnv(t, cliConfig)
	env.seed(t, "spotify", true)
	env.seed(t, "roon", true)
	env.runner.handle = func(cmd process.Command) *process.Output {
		if filepath.Base(cmd.Dir) == "spotify" {
			return &process.Output{ExitCode: 1}
		}
		return nil
	}

	out, err := env.run(t, "startup")
	require.NoError(t, err)
	assert.Equal(t, "failed to start containers for extension spotify (exit status 1)\n", out)
	require.Len(t, env.runner.calls, 2)
	assert.Equal(t, "roon", filepath.Base(env.runner.calls[1].Dir))

	out, err = env.run(t, "shutdown")
	require.NoError(t, err)
	assert.Equal(t, "failed to stop containers for extension spotify (exit status 1)\n", out)
	assert.FileExists(t, filepath.Join(env.root, "roon", "is_active"))
	assert.FileExists(t, filepath.Join(env.root, "spotify", "is_active"))
}

func TestList(t *testing.T) {
	env := newCLIEnv(t, cliConfig)
	env.seed(t, "roon", true)

	out, err := env.run(t, "list")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"NAME", "REPOSITORY", "BRANCH", "INSTALLED", "ACTIVE"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"spotify", "https://github.com/example/spotify-extension.git", "main", "no", "no"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"roon", "https://github.com/example/roon-extension.git", "-", "yes", "yes"}, strings.Fields(lines[2]))

	out, err = env.run(t, "list", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "roon"`)
	assert.Contains(t, out, `"active": true`)
}

func TestMissingConfigFile(t *testing.T) {
	env := newCLIEnv(t, "")

	out, err := env.run(t, "status")
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = env.run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No extensions configured")

	out, err = env.run(t, "install", "spotify")
	require.Error(t, err)
	assert.Equal(t, "extension spotify unknown\n", out)
}

func TestDoctorCommand(t *testing.T) {
	env := newCLIEnv(t, cliConfig)
	env.runner.handle = func(cmd process.Command) *process.Output {
		if cmd.Name == "git" {
			return &process.Output{Stdout: "git version 2.39.2\n"}
		}
		return &process.Output{Stdout: "1.29.2\n"}
	}

	out, err := env.run(t, "doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "Tools:")
	assert.Contains(t, out, "[ OK ] git 2.39.2")
	assert.Contains(t, out, "Extensions:")
}

func TestVersion(t *testing.T) {
	env := newCLIEnv(t, cliConfig)

	out, err := env.run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "extensions version 1.2.3 (commit: abc123, built: 2026-10-18)\n", out)

	out, err = env.run(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3\n", out)
}

func TestVersionJSON(t *testing.T) {
	env := newCLIEnv(t, cliConfig)

	out, err := env.run(t, "version", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"version": "1.2.3"`)
	assert.Contains(t, out, `"module": "github.com/hifiberry/extensions"`)
}
