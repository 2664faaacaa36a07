package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/anzolabs/bunnysync/pkg/storage"
)

// RemoteEntry describes one remote object. Keys are relative to the listing
// base so they align with local keys. Immutable for the duration of a run.
type RemoteEntry struct {
	Key      string
	Size     int64
	Checksum string // hex SHA-256, empty when the backend carries none
}

// BuildRemote lists base recursively and returns the flattened,
// directory-free inventory. Directories are walked through an explicit
// worklist, one List call each, so depth is not bounded by the call stack.
// Any listing failure aborts the build; a partial inventory is never used
// for planning.
func BuildRemote(ctx context.Context, client storage.Client, base string, excludes []string) (map[string]RemoteEntry, error) {
	base = NormalizeDir(base)
	objects := make(map[string]RemoteEntry)

	queue := []string{base}
	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]

		metas, err := client.List(ctx, dir)
		if err != nil {
			return nil, fmt.Errorf("list %q: %w", dir, err)
		}

		for _, meta := range metas {
			if meta.IsDirectory {
				queue = append(queue, meta.Key)
				continue
			}

			key := NormalizeKey(strings.TrimPrefix(meta.Key, base))
			excluded, err := IsExcluded(key, excludes)
			if err != nil {
				return nil, err
			}
			if excluded {
				continue
			}

			objects[key] = RemoteEntry{
				Key:      key,
				Size:     meta.Size,
				Checksum: meta.Checksum,
			}
		}
	}

	return objects, nil
}
