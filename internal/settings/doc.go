// Package settings holds the general gikkon configuration shared by every
// command: the mirror repository location, the remote and branch it tracks,
// the version control backend, and the privilege escalation command.
package settings
