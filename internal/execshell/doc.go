// Package execshell runs the external version-control command for mirror-merge.
//
// ShellExecutor wraps a CommandRunner, reports command lifecycle events to an
// observer, and turns non-zero exit codes into CommandFailedError unless the
// caller asked for the exit status to be ignored. OSCommandRunner is the
// process-backed runner; tests substitute scripted runners.
package execshell
