package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/hifiberry/extensions/internal/extension"
	"github.com/hifiberry/extensions/internal/linker"
	"github.com/hifiberry/extensions/internal/process"
)

// Store is the on-disk extension registry the engine mutates.
// *extension.Store implements it.
type Store interface {
	Dir(name string) string
	Exists(name string) bool
	Create(name string) error
	Destroy(name string) error
	Activate(name string) error
	Deactivate(name string) error
	IsActive(name string) bool
	HasDescriptor(name string) bool
	Descriptor() string
}

var _ Store = (*extension.Store)(nil)

// Engine runs lifecycle operations against the configured extensions.
type Engine struct {
	cfg    *extension.Config
	store  Store
	links  linker.Reconciler
	runner process.Runner

	out        io.Writer
	logger     *slog.Logger
	git        string
	compose    []string
	gitRetries int
}

// Option configures an Engine.
type Option func(*Engine)

// WithOutput sets where progress lines are written. Defaults to io.Discard.
func WithOutput(w io.Writer) Option {
	return func(e *Engine) {
		if w != nil {
			e.out = w
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithGitCommand sets the git executable.
func WithGitCommand(name string) Option {
	return func(e *Engine) {
		if name != "" {
			e.git = name
		}
	}
}

// WithComposeCommand sets the compose argv prefix, e.g. ["docker", "compose"].
func WithComposeCommand(argv []string) Option {
	return func(e *Engine) {
		if len(argv) > 0 {
			e.compose = argv
		}
	}
}

// WithGitRetries sets how often a failed clone or pull is retried.
func WithGitRetries(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.gitRetries = n
		}
	}
}

// New returns an Engine over the given collaborators.
func New(cfg *extension.Config, store Store, links linker.Reconciler, runner process.Runner, opts ...Option) *Engine {
	e := &Engine{
		cfg:     cfg,
		store:   store,
		links:   links,
		runner:  runner,
		out:     io.Discard,
		logger:  slog.Default(),
		git:     "git",
		compose: []string{"docker-compose"},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunOptions controls Start and Stop.
type RunOptions struct {
	// ExitOnFail makes a failing compose command an error. When false the
	// failure is printed and swallowed. Precondition failures are errors
	// either way.
	ExitOnFail bool
	// Marker sets the activation marker on a successful start, or clears it
	// on a successful stop.
	Marker bool
}

// Interactive is the behavior of a user-issued start or stop.
var Interactive = RunOptions{ExitOnFail: true, Marker: true}

func (e *Engine) printf(format string, args ...any) {
	fmt.Fprintf(e.out, format, args...)
}

func (e *Engine) lookup(name string) (*extension.Extension, error) {
	ext, ok := e.cfg.Lookup(name)
	if !ok {
		return nil, refuse(name, ErrUnknown)
	}
	return ext, nil
}

func (e *Engine) requireInstalled(name string) error {
	if !e.store.Exists(name) {
		return refuse(name, ErrNotInstalled)
	}
	return nil
}

func (e *Engine) requireDescriptor(name string) error {
	if !e.store.HasDescriptor(name) {
		return &ExtensionError{Name: name, Err: ErrNoDescriptor, Detail: e.store.Descriptor()}
	}
	return nil
}

func (e *Engine) gitCommand(name string, args ...string) process.Command {
	return process.Command{
		Dir:     e.store.Dir(name),
		Name:    e.git,
		Args:    args,
		Retries: e.gitRetries,
	}
}

func (e *Engine) composeCommand(name string, args ...string) process.Command {
	argv := append(append([]string{}, e.compose[1:]...), args...)
	return process.Command{Dir: e.store.Dir(name), Name: e.compose[0], Args: argv}
}

func (e *Engine) report(outcomes []linker.Outcome) {
	for _, o := range outcomes {
		e.printf("%s\n", o)
	}
	for _, o := range linker.Failed(outcomes) {
		e.logger.Warn("link operation skipped", "op", o.Op, "link", o.Link, "target", o.Target, "error", o.Err)
	}
}

// Install clones the extension's repository into a new extension directory
// and links its plugin exports. A failed clone leaves the directory behind.
func (e *Engine) Install(ctx context.Context, name string) error {
	ext, err := e.lookup(name)
	if err != nil {
		return err
	}
	if e.store.Exists(name) {
		return refuse(name, ErrAlreadyInstalled)
	}
	if ext.Repository == "" {
		return refuse(name, ErrNoRepository)
	}

	if err := e.store.Create(name); err != nil {
		return err
	}

	args := []string{"clone"}
	if ext.Branch != "" {
		args = append(args, "--branch", ext.Branch)
	}
	args = append(args, "--", ext.Repository, ".")

	out := e.runner.Run(ctx, e.gitCommand(name, args...))
	if out.Failed() {
		return &CommandError{Extension: name, Action: "clone git repository", ExitCode: out.ExitCode, Output: out.Combined()}
	}
	e.printf("got extension via git\n")

	e.report(e.links.LinkExports(e.store.Dir(name)))
	return nil
}

// Uninstall removes the extension's host links, then its directory.
func (e *Engine) Uninstall(ctx context.Context, name string) error {
	if _, err := e.lookup(name); err != nil {
		return err
	}
	if err := e.requireInstalled(name); err != nil {
		return err
	}

	dir := e.store.Dir(name)
	e.report(e.links.UnlinkExports(dir))

	if err := e.store.Destroy(name); err != nil {
		return fmt.Errorf("failed to remove extension directory for %s: %w", name, err)
	}
	e.printf("removed %s\n", dir)
	return nil
}

// Update pulls the extension's repository and links exports that are not
// linked yet. Links of exports that disappeared are left in place.
func (e *Engine) Update(ctx context.Context, name string) error {
	if _, err := e.lookup(name); err != nil {
		return err
	}
	if err := e.requireInstalled(name); err != nil {
		return err
	}

	out := e.runner.Run(ctx, e.gitCommand(name, "pull"))
	if out.Failed() {
		return &CommandError{Extension: name, Action: "update via git", ExitCode: out.ExitCode, Output: out.Combined()}
	}
	e.printf("updated via git\n")

	e.report(e.links.LinkExports(e.store.Dir(name)))
	return nil
}

// Start brings the extension's containers up.
func (e *Engine) Start(ctx context.Context, name string, opts RunOptions) error {
	if _, err := e.lookup(name); err != nil {
		return err
	}
	return e.swallow(e.start(ctx, name, opts.Marker), opts.ExitOnFail)
}

// Stop stops the extension's containers.
func (e *Engine) Stop(ctx context.Context, name string, opts RunOptions) error {
	if _, err := e.lookup(name); err != nil {
		return err
	}
	return e.swallow(e.stop(ctx, name, opts.Marker), opts.ExitOnFail)
}

// swallow drops a compose failure unless exitOnFail is set. Every other
// error passes through.
func (e *Engine) swallow(err error, exitOnFail bool) error {
	var ce *CommandError
	if exitOnFail || !errors.As(err, &ce) {
		return err
	}
	e.printf("%s\n", ce.Summary())
	e.logger.Debug("compose failure ignored", "extension", ce.Extension, "output", ce.Output)
	return nil
}

func (e *Engine) start(ctx context.Context, name string, activate bool) error {
	if err := e.requireInstalled(name); err != nil {
		return err
	}
	if err := e.requireDescriptor(name); err != nil {
		return err
	}

	out := e.runner.Run(ctx, e.composeCommand(name, "up", "-d"))
	if out.Failed() {
		return &CommandError{Extension: name, Action: "start containers", ExitCode: out.ExitCode, Output: out.Combined()}
	}

	if activate {
		if err := e.store.Activate(name); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) stop(ctx context.Context, name string, deactivate bool) error {
	if err := e.requireInstalled(name); err != nil {
		return err
	}
	if err := e.requireDescriptor(name); err != nil {
		return err
	}

	out := e.runner.Run(ctx, e.composeCommand(name, "stop"))
	if out.Failed() {
		return &CommandError{Extension: name, Action: "stop containers", ExitCode: out.ExitCode, Output: out.Combined()}
	}

	if deactivate {
		return e.store.Deactivate(name)
	}
	return nil
}

// Status reports whether the extension's containers are running.
func (e *Engine) Status(ctx context.Context, name string) (State, error) {
	if _, err := e.lookup(name); err != nil {
		return Unknown, err
	}
	if err := e.requireInstalled(name); err != nil {
		return Unknown, err
	}
	return e.state(ctx, name), nil
}

// state queries the compose listing in the extension directory. Output with
// more than a header line means something is running. The query's exit
// status is ignored, so a failed query reads as not running.
func (e *Engine) state(ctx context.Context, name string) State {
	out := e.runner.Run(ctx, e.composeCommand(name, "ls"))
	if len(out.Lines()) > 1 {
		return Running
	}
	return NotRunning
}
