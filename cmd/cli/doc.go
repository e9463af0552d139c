// Package cli constructs the mirror-merge command-line interface. It loads the
// layered configuration, builds the repository registry and workspace layout
// once, and hands them to the resolve, prune, publish and repositories
// commands.
package cli
