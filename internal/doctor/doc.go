// Package doctor produces a read-only health report of an extensions
// installation: external tools and their versions, the directories the
// manager works in, the config file, and stray state on disk.
package doctor
