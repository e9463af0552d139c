// Package dependencies supplies default collaborators for the merge commands when callers do not inject their own.
package dependencies
