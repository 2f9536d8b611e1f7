// Package filesync moves file contents between the mirror repository and the
// live filesystem.
//
// Engine walks the mirror tree, maps every tracked file to its live location
// with pathmap.Mapper, and copies live content into the mirror when the two
// differ. It also restores mirror content to live locations during rollback,
// adds new files to the mirror, lists tracked files, and previews drift.
// Copies and deletions that fail with a permission error are retried through an
// elevation.Elevator; a failed elevation aborts the running operation.
package filesync
