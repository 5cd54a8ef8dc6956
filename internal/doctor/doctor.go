package doctor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/shirou/gopsutil/v3/disk"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/hifiberry/extensions/internal/extension"
	"github.com/hifiberry/extensions/internal/linker"
	"github.com/hifiberry/extensions/internal/platform"
	"github.com/hifiberry/extensions/internal/process"
)

// Minimum tool versions.
const (
	MinGitVersion     = "2.0.0"
	MinComposeVersion = "1.25.0"
)

// LowDiskBytes is the free space below which the extensions root is flagged.
const LowDiskBytes uint64 = 512 << 20

var (
	versionPattern = regexp.MustCompile(`v?\d+\.\d+(\.\d+)?`)
	printer        = message.NewPrinter(language.English)

	// diskUsage is swapped in tests.
	diskUsage = disk.UsageWithContext
)

// Doctor holds what the checks inspect.
type Doctor struct {
	Config  *extension.Config
	Store   *extension.Store
	Links   *linker.Symlinks
	Runner  process.Runner
	Git     string
	Compose []string
}

// Summary counts the problems a report found.
type Summary struct {
	Warnings int
	Failures int
	Missing  int
}

// Healthy reports whether nothing but OK lines were printed.
func (s Summary) Healthy() bool {
	return s.Warnings == 0 && s.Failures == 0 && s.Missing == 0
}

type report struct {
	w   io.Writer
	sum Summary
}

func (r *report) section(title string) { fmt.Fprintf(r.w, "%s:\n", title) }

func (r *report) ok(format string, args ...any) {
	fmt.Fprintf(r.w, "  [ OK ] "+format+"\n", args...)
}

func (r *report) warn(format string, args ...any) {
	r.sum.Warnings++
	fmt.Fprintf(r.w, "  [WARN] "+format+"\n", args...)
}

func (r *report) miss(format string, args ...any) {
	r.sum.Missing++
	fmt.Fprintf(r.w, "  [MISS] "+format+"\n", args...)
}

func (r *report) fail(format string, args ...any) {
	r.sum.Failures++
	fmt.Fprintf(r.w, "  [FAIL] "+format+"\n", args...)
}

// Run prints the report to w. It changes nothing on disk.
func (d *Doctor) Run(ctx context.Context, w io.Writer) (Summary, error) {
	if d.Store == nil || d.Links == nil || d.Runner == nil {
		return Summary{}, errors.New("doctor: store, links and runner are required")
	}

	r := &report{w: w}
	d.checkTools(ctx, r)
	d.checkDirectories(ctx, r)
	d.checkConfig(r)
	d.checkExtensions(r)
	return r.sum, nil
}

func (d *Doctor) checkTools(ctx context.Context, r *report) {
	r.section("Tools")

	git := d.Git
	if git == "" {
		git = "git"
	}
	d.checkTool(ctx, r, git, process.Command{Name: git, Args: []string{"--version"}}, MinGitVersion)

	compose := d.Compose
	if len(compose) == 0 {
		compose = []string{"docker-compose"}
	}
	args := append(append([]string{}, compose[1:]...), "version", "--short")
	d.checkTool(ctx, r, strings.Join(compose, " "), process.Command{Name: compose[0], Args: args}, MinComposeVersion)
}

func (d *Doctor) checkTool(ctx context.Context, r *report, label string, cmd process.Command, minimum string) {
	out := d.Runner.Run(ctx, cmd)
	if out.ExitCode == -1 {
		r.miss("%s not found", label)
		return
	}
	if out.Failed() {
		r.fail("%s exited with status %d", label, out.ExitCode)
		return
	}

	v, err := ParseVersion(out.Stdout)
	if err != nil {
		r.warn("%s: cannot determine version from %q", label, strings.TrimSpace(out.Stdout))
		return
	}

	c, err := semver.NewConstraint(">= " + minimum)
	if err != nil {
		r.fail("%s: bad minimum %q: %v", label, minimum, err)
		return
	}
	if !c.Check(v) {
		r.warn("%s %s is older than %s", label, v, minimum)
		return
	}
	r.ok("%s %s", label, v)
}

// ParseVersion extracts the first version number from tool output such as
// "git version 2.39.2" or "v2.20.2".
func ParseVersion(output string) (*semver.Version, error) {
	raw := versionPattern.FindString(output)
	if raw == "" {
		return nil, fmt.Errorf("no version in %q", strings.TrimSpace(output))
	}
	return semver.NewVersion(strings.TrimPrefix(raw, "v"))
}

func (d *Doctor) checkDirectories(ctx context.Context, r *report) {
	r.section("Directories")

	root := d.Store.Root()
	if checkDir(r, "extensions root", root) {
		usage, err := diskUsage(ctx, root)
		switch {
		case err != nil:
			r.warn("cannot read free space on %s: %v", root, err)
		case usage.Free < LowDiskBytes:
			r.warn("only %s MiB free on %s", printer.Sprintf("%d", usage.Free>>20), root)
		default:
			r.ok("%s MiB free on %s", printer.Sprintf("%d", usage.Free>>20), root)
		}
	}
	checkDir(r, "host directory", d.Links.HostDir())
}

func checkDir(r *report, label, path string) bool {
	ok, err := isDir(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		r.miss("%s %s does not exist", label, path)
	case err != nil:
		r.fail("%s %s: %v", label, path, err)
	case !ok:
		r.fail("%s %s is not a directory", label, path)
	default:
		r.ok("%s %s", label, path)
	}
	return ok && err == nil
}

func (d *Doctor) checkConfig(r *report) {
	r.section("Config")

	if d.Config == nil || (d.Config.Path == "" && len(d.Config.Extensions) == 0) {
		r.warn("no extensions configured")
		return
	}

	issues, err := extension.Lint(d.Config)
	if err != nil {
		r.fail("cannot lint config: %v", err)
		return
	}
	if len(issues) > 0 {
		r.fail("%d config issue(s):", len(issues))
		for _, issue := range issues {
			fmt.Fprintf(r.w, "    - %s\n", issue)
		}
		return
	}
	r.ok("%s extension(s) configured", printer.Sprintf("%d", len(d.Config.Extensions)))
}

func (d *Doctor) checkExtensions(r *report) {
	r.section("Extensions")

	names, err := d.Store.List()
	if err != nil {
		r.fail("%v", err)
	}

	orphans := 0
	for _, name := range names {
		if d.Config != nil && d.Config.Has(name) {
			continue
		}
		orphans++
		r.warn("%s is installed but not configured (%s)", name, d.Store.Dir(name))
	}
	if err == nil && orphans == 0 {
		r.ok("no unconfigured extension directories")
	}

	dangling, err := d.Links.Dangling()
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			r.fail("%v", err)
		}
		return
	}
	for _, link := range dangling {
		if target, err := platform.ReadSymlinkTarget(link); err == nil {
			r.warn("dangling symlink %s -> %s", link, target)
			continue
		}
		r.warn("dangling symlink %s", link)
	}
	if len(dangling) == 0 {
		r.ok("no dangling symlinks in %s", d.Links.HostDir())
	}
}

func isDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}
