// Package fileutil provides the filesystem listing primitive used by the
// directory lister.
//
// ListDirectory returns the immediate entries of one directory as absolute,
// alphabetically sorted paths. It does not recurse and does not filter:
// regular files, directories (including application bundles such as
// "Safari.app") and hidden entries are all returned. Exclusion is the job of
// the matcher package, applied after results from every directory are merged.
//
// Errors are returned as-is (wrapped with the directory path); callers that
// tolerate vanished or unreadable directories decide how to absorb them.
package fileutil
