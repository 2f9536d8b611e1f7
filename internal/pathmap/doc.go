// Package pathmap translates between paths inside the mirror repository and
// their live locations on the filesystem.
//
// A mirror path whose first segment is exactly "home" lives under the
// operator's home directory; every other mirror path is rooted at "/".
package pathmap
