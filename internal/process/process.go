package process

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Command describes one invocation.
type Command struct {
	Dir  string   // working directory
	Name string   // executable, resolved through PATH
	Args []string // arguments, passed verbatim
	// Retries is the number of extra attempts after a failed run. Zero runs
	// the command exactly once.
	Retries int
}

// String renders the command for logs.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Output captures the result of a command.
type Output struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Failed reports whether the command exited non-zero or could not start.
func (o *Output) Failed() bool { return o.ExitCode != 0 }

// Combined returns stdout followed by stderr, trimmed.
func (o *Output) Combined() string {
	parts := make([]string, 0, 2)
	if s := strings.TrimSpace(o.Stdout); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(o.Stderr); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, "\n")
}

// Lines returns the non-empty lines of stdout.
func (o *Output) Lines() []string {
	var lines []string
	for _, line := range strings.Split(o.Stdout, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Runner executes commands. Run always returns an Output and blocks until
// the command finishes; there is no timeout beyond ctx.
type Runner interface {
	Run(ctx context.Context, cmd Command) *Output
}

// ExecRunner implements Runner with os/exec.
type ExecRunner struct {
	Logger *slog.Logger
	// RetryInterval is the first backoff interval between attempts.
	RetryInterval time.Duration
}

// NewExecRunner returns an ExecRunner logging to logger.
func NewExecRunner(logger *slog.Logger) *ExecRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecRunner{Logger: logger, RetryInterval: 2 * time.Second}
}

// Run executes cmd, retrying failed runs cmd.Retries times with exponential
// backoff.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) *Output {
	if cmd.Retries <= 0 {
		return r.runOnce(ctx, cmd)
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = r.RetryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(cmd.Retries)), ctx)

	var out *Output
	attempt := 0
	_ = backoff.Retry(func() error {
		attempt++
		out = r.runOnce(ctx, cmd)
		if out.Failed() {
			r.Logger.Warn("command failed", "cmd", cmd.String(), "dir", cmd.Dir,
				"exit", out.ExitCode, "attempt", attempt)
			return errors.New("non-zero exit")
		}
		return nil
	}, policy)
	return out
}

func (r *ExecRunner) runOnce(ctx context.Context, cmd Command) *Output {
	r.Logger.Debug("running command", "cmd", cmd.String(), "dir", cmd.Dir)

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	out := &Output{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err == nil {
		return out
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return out
	}

	// The command could not be started at all.
	out.ExitCode = -1
	if out.Stderr != "" {
		out.Stderr += "\n"
	}
	out.Stderr += err.Error()
	return out
}
