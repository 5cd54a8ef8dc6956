// Package extension holds the two sources of truth about extensions: the
// configured list (an INI file with one section per extension, naming its git
// repository and optional branch) and the installed set on disk (one
// directory per extension under the extensions root, optionally carrying an
// activation marker). It also lints the configured list against an embedded
// JSON schema.
package extension
