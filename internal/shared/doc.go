// Package shared defines the contracts and operator interaction helpers used by the merge commands.
package shared
