package planner

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/anzolabs/bunnysync/pkg/checksum"
	"github.com/anzolabs/bunnysync/pkg/inventory"
)

// Plan diffs the two inventories into a transfer plan. Every key in either
// inventory ends up in exactly one of upload/download, skip, or delete.
func Plan(local map[string]inventory.LocalEntry, remote map[string]inventory.RemoteEntry, opts Options) (*Result, error) {
	if opts.Digest == nil {
		return nil, fmt.Errorf("digest function is required")
	}

	switch opts.Direction {
	case DirectionPush:
		return planPush(local, remote, opts)
	case DirectionPull:
		return planPull(local, remote, opts)
	default:
		return nil, fmt.Errorf("unknown direction %q", opts.Direction)
	}
}

func planPush(local map[string]inventory.LocalEntry, remote map[string]inventory.RemoteEntry, opts Options) (*Result, error) {
	plan := &Result{}
	rules := TierRules(opts.UploadLast)

	for _, key := range sortedLocalKeys(local) {
		entry := local[key]

		reason := "new file"
		if remoteEntry, exists := remote[key]; exists {
			transfer, why, err := needsTransfer(entry, remoteEntry, opts.Digest)
			if err != nil {
				return nil, err
			}
			if !transfer {
				plan.Skipped++
				continue
			}
			reason = why
		}

		tier := Classify(key, rules)
		plan.Tiers[tier] = append(plan.Tiers[tier], UploadItem{Entry: entry, Reason: reason})
	}

	for _, key := range sortedRemoteKeys(remote) {
		if _, exists := local[key]; !exists {
			plan.Deletes = append(plan.Deletes, key)
		}
	}

	return plan, nil
}

func planPull(local map[string]inventory.LocalEntry, remote map[string]inventory.RemoteEntry, opts Options) (*Result, error) {
	plan := &Result{}

	for _, key := range sortedRemoteKeys(remote) {
		entry := remote[key]

		reason := "new file"
		if localEntry, exists := local[key]; exists {
			transfer, why, err := needsTransfer(localEntry, entry, opts.Digest)
			if err != nil {
				return nil, err
			}
			if !transfer {
				plan.Skipped++
				continue
			}
			reason = why
		}

		plan.Downloads = append(plan.Downloads, DownloadItem{
			Entry:     entry,
			LocalPath: filepath.Join(opts.LocalRoot, filepath.FromSlash(key)),
			Reason:    reason,
		})
	}

	for _, key := range sortedLocalKeys(local) {
		if _, exists := remote[key]; !exists {
			plan.Deletes = append(plan.Deletes, key)
		}
	}

	return plan, nil
}

// needsTransfer applies the comparison policy: when the remote side reports
// a checksum, the local digest decides; otherwise equal byte length counts
// as identical. The length fallback knowingly misses same-length edits;
// without a checksum there is nothing cheaper than the content to compare.
func needsTransfer(local inventory.LocalEntry, remote inventory.RemoteEntry, digest DigestFunc) (bool, string, error) {
	if remote.Checksum != "" {
		localSum, err := digest(local)
		if err != nil {
			return false, "", fmt.Errorf("digest %s: %w", local.AbsolutePath, err)
		}
		if !checksum.Equal(localSum, remote.Checksum) {
			return true, "checksum differs", nil
		}
		return false, "", nil
	}

	if local.Size != remote.Size {
		return true, "size differs", nil
	}
	return false, "", nil
}

func sortedLocalKeys(m map[string]inventory.LocalEntry) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func sortedRemoteKeys(m map[string]inventory.RemoteEntry) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
