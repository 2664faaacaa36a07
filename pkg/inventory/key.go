// Package inventory builds the flattened, directory-free object maps the
// planner diffs: one for the local tree, one for the remote namespace.
package inventory

import "strings"

// NormalizeKey canonicalizes an object key: forward slashes only, no
// leading slash, no empty path segments.
func NormalizeKey(key string) string {
	key = strings.ReplaceAll(key, "\\", "/")
	for strings.Contains(key, "//") {
		key = strings.ReplaceAll(key, "//", "/")
	}
	return strings.TrimPrefix(key, "/")
}

// NormalizeDir canonicalizes a directory key: "" for the namespace root,
// otherwise a normalized key with exactly one trailing slash.
func NormalizeDir(dir string) string {
	dir = NormalizeKey(dir)
	if dir == "" {
		return ""
	}
	return strings.TrimSuffix(dir, "/") + "/"
}
