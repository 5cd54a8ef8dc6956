// Package process runs external commands (git, the compose tool) in an
// extension directory and captures their output. Commands are argument
// vectors, never shell strings. A non-zero exit status is a result, not an
// error: callers decide what a failure means.
package process
