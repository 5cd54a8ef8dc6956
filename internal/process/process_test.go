package process

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietRunner() *ExecRunner {
	r := NewExecRunner(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
	r.RetryInterval = time.Millisecond
	return r
}

func TestRunCapturesOutput(t *testing.T) {
	dir := t.TempDir()
	out := quietRunner().Run(context.Background(), Command{
		Dir:  dir,
		Name: "sh",
		Args: []string{"-c", "pwd; echo oops >&2"},
	})

	require.NotNil(t, out)
	assert.False(t, out.Failed())
	assert.Equal(t, 0, out.ExitCode)
	assert.Equal(t, filepath.Base(dir), filepath.Base(strings.TrimSpace(out.Stdout)))
	assert.Equal(t, "oops\n", out.Stderr)
	assert.Contains(t, out.Combined(), "oops")
}

func TestRunNonZeroExitIsResult(t *testing.T) {
	out := quietRunner().Run(context.Background(), Command{
		Dir:  t.TempDir(),
		Name: "sh",
		Args: []string{"-c", "echo partial; exit 3"},
	})

	assert.True(t, out.Failed())
	assert.Equal(t, 3, out.ExitCode)
	assert.Equal(t, "partial", out.Combined())
}

func TestRunMissingBinary(t *testing.T) {
	out := quietRunner().Run(context.Background(), Command{
		Dir:  t.TempDir(),
		Name: "definitely-not-a-real-binary-xyz",
	})

	assert.True(t, out.Failed())
	assert.Equal(t, -1, out.ExitCode)
	assert.NotEmpty(t, out.Stderr)
}

func TestRunArgumentsAreNotShellParsed(t *testing.T) {
	out := quietRunner().Run(context.Background(), Command{
		Dir:  t.TempDir(),
		Name: "echo",
		Args: []string{"main; rm -rf /tmp/x", "$(whoami)"},
	})

	require.False(t, out.Failed())
	assert.Equal(t, "main; rm -rf /tmp/x $(whoami)\n", out.Stdout)
}

func TestRunRetries(t *testing.T) {
	dir := t.TempDir()
	out := quietRunner().Run(context.Background(), Command{
		Dir:     dir,
		Name:    "sh",
		Args:    []string{"-c", "echo x >> attempts; exit 1"},
		Retries: 2,
	})
	assert.True(t, out.Failed())

	data, err := os.ReadFile(filepath.Join(dir, "attempts"))
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(data), "x"))
}

func TestRunRetriesStopOnSuccess(t *testing.T) {
	dir := t.TempDir()
	out := quietRunner().Run(context.Background(), Command{
		Dir:     dir,
		Name:    "sh",
		Args:    []string{"-c", "echo x >> attempts; [ $(wc -l < attempts) -ge 2 ]"},
		Retries: 5,
	})
	assert.False(t, out.Failed())

	data, err := os.ReadFile(filepath.Join(dir, "attempts"))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "x"))
}

func TestOutputLines(t *testing.T) {
	out := &Output{Stdout: "NAME STATUS\n\nspotify running(2)\n"}
	assert.Equal(t, []string{"NAME STATUS", "spotify running(2)"}, out.Lines())
	assert.Empty(t, (&Output{}).Lines())
}

func TestCommandString(t *testing.T) {
	cmd := Command{Name: "git", Args: []string{"clone", "--branch", "main", "https://example.com/r.git", "."}}
	assert.Equal(t, "git clone --branch main https://example.com/r.git .", cmd.String())
}
