// Package linker exposes extension plugin directories to the host
// application by symlinking them into its extension-loading directory, and
// removes those links again when the extension goes away.
//
// Ownership of a link is not recorded anywhere: a link belongs to the
// extension whose directory its resolved target lies under. Callers depend
// on the Reconciler interface, so a ledger-backed implementation could
// replace Symlinks without changing them.
package linker
