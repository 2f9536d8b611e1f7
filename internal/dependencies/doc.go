// Package dependencies resolves the collaborators gikkon commands run with,
// preferring injected implementations and falling back to the production
// defaults: the OS filesystem, the git subprocess executor, sudo elevation,
// and terminal prompts.
package dependencies
