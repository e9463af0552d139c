// Package conflicts classifies unresolved merge entries reported by porcelain git status output.
package conflicts
