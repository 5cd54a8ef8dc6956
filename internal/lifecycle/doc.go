// Package lifecycle installs, updates, starts, stops and removes extensions,
// keeping three things consistent: the extension directory, its activation
// marker, and the plugin links in the host directory. Container runtime state
// belongs to the compose tool and is only ever queried.
//
// Per extension the engine moves between not installed, installed and
// inactive, and installed and active. Install and uninstall move between the
// first two; start and stop toggle activation. Bulk operations walk the
// configured extensions in file order and never stop at a failing one.
package lifecycle
