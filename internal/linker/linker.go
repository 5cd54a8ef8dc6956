package linker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/hifiberry/extensions/internal/platform"
)

// readDir is swapped in tests.
var readDir = os.ReadDir

// Op is the kind of link operation an Outcome describes.
type Op string

const (
	OpLink   Op = "link"
	OpUnlink Op = "unlink"
)

// Outcome records one attempted link creation or removal.
type Outcome struct {
	Op     Op
	Link   string // path inside the host directory
	Target string // path inside the extension tree
	Err    error
}

// OK reports whether the operation succeeded.
func (o Outcome) OK() bool { return o.Err == nil }

// String renders the outcome as a progress line.
func (o Outcome) String() string {
	switch {
	case o.Op == OpLink && o.OK():
		return fmt.Sprintf("link %s to %s", o.Target, o.Link)
	case o.Op == OpLink:
		return fmt.Sprintf("couldn't link %s to %s, ignoring", o.Target, o.Link)
	case o.OK():
		return fmt.Sprintf("removed symlink %s", o.Link)
	default:
		return fmt.Sprintf("couldn't unlink %s, ignoring", o.Link)
	}
}

// Failed returns the outcomes that carry an error.
func Failed(outcomes []Outcome) []Outcome {
	var failed []Outcome
	for _, o := range outcomes {
		if !o.OK() {
			failed = append(failed, o)
		}
	}
	return failed
}

// Reconciler creates and removes the host-side links of one extension.
// Both operations are best effort per link and never abort part way.
type Reconciler interface {
	// LinkExports links every exported plugin directory of the extension
	// rooted at extDir into the host directory.
	LinkExports(extDir string) []Outcome

	// UnlinkExports removes every host link whose target resolves under
	// extDir, and nothing else.
	UnlinkExports(extDir string) []Outcome
}

// Symlinks is the Reconciler that infers link ownership from link targets.
type Symlinks struct {
	hostDir   string
	exportDir string
}

var _ Reconciler = (*Symlinks)(nil)

// NewSymlinks returns a Reconciler linking into hostDir. exportDir is the
// directory name inside each extension that holds plugin exports.
func NewSymlinks(hostDir, exportDir string) *Symlinks {
	return &Symlinks{hostDir: hostDir, exportDir: exportDir}
}

// HostDir returns the host extension-loading directory.
func (s *Symlinks) HostDir() string { return s.hostDir }

// scan collects the plugin directories an extension exports: the immediate
// child directories of every directory matching <extDir>/<exportDir>/*.
// Unreadable groups come back as failed link outcomes; err is set only when
// the export dir cannot be globbed at all.
func (s *Symlinks) scan(extDir string) ([]string, []Outcome, error) {
	extDir, err := filepath.Abs(extDir)
	if err != nil {
		return nil, nil, err
	}

	groups, err := filepath.Glob(filepath.Join(extDir, s.exportDir, "*"))
	if err != nil {
		return nil, nil, fmt.Errorf("scanning exports of %s: %w", extDir, err)
	}
	sort.Strings(groups)

	var (
		exports []string
		skipped []Outcome
	)
	for _, group := range groups {
		info, err := os.Stat(group)
		if err != nil || !info.IsDir() {
			continue
		}
		entries, err := readDir(group)
		if err != nil {
			skipped = append(skipped, Outcome{
				Op:     OpLink,
				Link:   s.hostDir,
				Target: group,
				Err:    fmt.Errorf("reading %s: %w", group, err),
			})
			continue
		}
		for _, entry := range entries {
			child := filepath.Join(group, entry.Name())
			if info, err := os.Stat(child); err == nil && info.IsDir() {
				exports = append(exports, child)
			}
		}
	}
	return exports, skipped, nil
}

// LinkExports creates <hostDir>/<base> -> <export> for every export. An
// unreadable export group yields one failed outcome and the rest still link.
func (s *Symlinks) LinkExports(extDir string) []Outcome {
	exports, skipped, err := s.scan(extDir)
	if err != nil {
		return []Outcome{{Op: OpLink, Target: extDir, Link: s.hostDir, Err: err}}
	}

	outcomes := make([]Outcome, 0, len(exports)+len(skipped))
	outcomes = append(outcomes, skipped...)
	for _, export := range exports {
		link := filepath.Join(s.hostDir, filepath.Base(export))
		outcomes = append(outcomes, Outcome{
			Op:     OpLink,
			Link:   link,
			Target: export,
			Err:    platform.CreateSymlink(export, link),
		})
	}
	return outcomes
}

// UnlinkExports removes the host links owned by the extension at extDir.
func (s *Symlinks) UnlinkExports(extDir string) []Outcome {
	owned, err := s.Owned(extDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return []Outcome{{Op: OpUnlink, Link: s.hostDir, Target: extDir, Err: err}}
	}

	outcomes := make([]Outcome, 0, len(owned))
	for _, o := range owned {
		o.Op = OpUnlink
		o.Err = platform.RemoveSymlink(o.Link)
		outcomes = append(outcomes, o)
	}
	return outcomes
}

// Owned lists the host links whose resolved target lies under extDir,
// without touching them.
func (s *Symlinks) Owned(extDir string) ([]Outcome, error) {
	root := platform.Canonical(extDir)

	entries, err := os.ReadDir(s.hostDir)
	if err != nil {
		return nil, fmt.Errorf("reading host directory: %w", err)
	}

	var owned []Outcome
	for _, entry := range entries {
		link := filepath.Join(s.hostDir, entry.Name())
		if !platform.IsSymlink(link) {
			continue
		}
		target, err := platform.ResolveSymlink(link)
		if err != nil {
			continue
		}
		if platform.IsWithin(target, root) || platform.IsWithin(target, filepath.Clean(extDir)) {
			owned = append(owned, Outcome{Link: link, Target: target})
		}
	}
	return owned, nil
}

// Dangling lists host links whose target no longer exists.
func (s *Symlinks) Dangling() ([]string, error) {
	entries, err := os.ReadDir(s.hostDir)
	if err != nil {
		return nil, fmt.Errorf("reading host directory: %w", err)
	}

	var dangling []string
	for _, entry := range entries {
		link := filepath.Join(s.hostDir, entry.Name())
		if platform.IsDangling(link) {
			dangling = append(dangling, link)
		}
	}
	return dangling, nil
}
