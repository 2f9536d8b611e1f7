// Package reconcile drives the interactive backup, rollback, and commit cycles.
//
// A Controller synchronizes live files into the mirror, inspects the resulting
// change set, and walks the operator through accepting or reverting it. Each
// cycle is an explicit state machine whose visited states are available through
// Controller.History for diagnostics and tests.
package reconcile
