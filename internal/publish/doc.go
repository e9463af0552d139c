// Package publish pushes the merged branch of every managed repository to the shared remote.
//
// Repositories are pushed one at a time in registry order, root first. The first failure
// stops the fan-out; earlier pushes stay on the remote and later repositories are reported
// as pending so the operator knows exactly what to re-run.
package publish
