// Package platform provides the symlink primitives used to expose extension
// plugin directories to the host application: creation, guarded removal,
// and target resolution that tolerates dangling links.
package platform
