package lifecycle

import "context"

// State is the observed state of an extension.
type State int

const (
	Unknown State = iota
	NotInstalled
	NotRunning
	Running
)

func (s State) String() string {
	switch s {
	case NotInstalled:
		return "not installed"
	case NotRunning:
		return "not running"
	case Running:
		return "running"
	default:
		return "unknown"
	}
}

// Report is the per-extension result of a bulk operation.
type Report struct {
	Name      string
	Installed bool
	Active    bool
	State     State
	// Skipped is set when the operation did not apply to the extension.
	Skipped bool
	Err     error
}

// StartAll starts every active extension, in config order. A failure is
// recorded in that extension's report and the walk continues.
func (e *Engine) StartAll(ctx context.Context) []Report {
	var reports []Report
	for _, name := range e.cfg.Names() {
		if !e.store.IsActive(name) {
			continue
		}
		r := Report{Name: name, Installed: e.store.Exists(name), Active: true}
		r.Err = e.start(ctx, name, true)
		if r.Err != nil {
			e.logger.Warn("extension did not start", "extension", name, "error", r.Err)
		}
		reports = append(reports, r)
	}
	return reports
}

// ShutdownAll stops every installed extension without touching activation
// markers, so the next StartAll brings the same set back.
func (e *Engine) ShutdownAll(ctx context.Context) []Report {
	reports := make([]Report, 0, len(e.cfg.Extensions))
	for _, name := range e.cfg.Names() {
		r := Report{Name: name, Installed: e.store.Exists(name), Active: e.store.IsActive(name)}
		if !r.Installed {
			r.State = NotInstalled
			r.Skipped = true
			reports = append(reports, r)
			continue
		}
		r.Err = e.stop(ctx, name, false)
		if r.Err != nil {
			e.logger.Warn("extension did not stop", "extension", name, "error", r.Err)
		}
		reports = append(reports, r)
	}
	return reports
}

// StatusAll reports the state of every configured extension.
func (e *Engine) StatusAll(ctx context.Context) []Report {
	reports := make([]Report, 0, len(e.cfg.Extensions))
	for _, name := range e.cfg.Names() {
		r := Report{Name: name, Installed: e.store.Exists(name), Active: e.store.IsActive(name)}
		if r.Installed {
			r.State = e.state(ctx, name)
		} else {
			r.State = NotInstalled
		}
		reports = append(reports, r)
	}
	return reports
}

// Inventory lists every configured extension with its on-disk state,
// without querying the compose tool.
func (e *Engine) Inventory() []Report {
	reports := make([]Report, 0, len(e.cfg.Extensions))
	for _, name := range e.cfg.Names() {
		r := Report{Name: name, Installed: e.store.Exists(name), Active: e.store.IsActive(name)}
		if !r.Installed {
			r.State = NotInstalled
		}
		reports = append(reports, r)
	}
	return reports
}
