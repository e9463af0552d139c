// Package prune deletes the configured subtrees of flat-history repositories after an upstream merge.
package prune
