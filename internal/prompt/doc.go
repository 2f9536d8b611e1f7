// Package prompt implements the line-oriented questions gikkon asks the
// operator: yes/no confirmations, free-text answers, and index selections of
// files to roll back.
package prompt
