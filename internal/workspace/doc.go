// Package workspace resolves the directory under which every managed repository lives.
package workspace
