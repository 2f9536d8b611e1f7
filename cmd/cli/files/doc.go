// Package files provides the add, list, and diff commands that operate on the
// mirror tree without involving version control.
package files
