package inventory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// LocalEntry describes one file under the sync root. Immutable for the
// duration of a run.
type LocalEntry struct {
	AbsolutePath string
	Key          string
	Size         int64
}

// BuildLocal walks root and returns the file inventory keyed by object key.
// A missing or non-directory root is an error; the whole run aborts on it.
func BuildLocal(fsys afero.Fs, root string, excludes []string) (map[string]LocalEntry, error) {
	info, err := fsys.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat sync root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("sync root is not a directory: %s", root)
	}

	files := make(map[string]LocalEntry)

	err = afero.Walk(fsys, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("get relative path: %w", err)
		}
		key := NormalizeKey(filepath.ToSlash(relPath))

		excluded, err := IsExcluded(key, excludes)
		if err != nil {
			return err
		}
		if excluded {
			return nil
		}

		files[key] = LocalEntry{
			AbsolutePath: path,
			Key:          key,
			Size:         info.Size(),
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk sync root: %w", err)
	}

	return files, nil
}

// IsExcluded reports whether key matches any of the glob patterns.
func IsExcluded(key string, patterns []string) (bool, error) {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, key)
		if err != nil {
			return false, fmt.Errorf("bad exclude pattern %q: %w", pattern, err)
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}
