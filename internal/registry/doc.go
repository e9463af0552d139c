// Package registry classifies the managed repositories by history policy.
//
// A Registry is built once from Declarations, validated at construction, and
// never mutated afterwards. It answers which repositories exist, which keep
// full upstream history, and which subpaths a flat repository drops after a
// merge. Declarations come from the built-in project list or from a YAML or
// TOML manifest.
package registry
