package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anzolabs/bunnysync/pkg/inventory"
)

func localEntry(key string, size int64) inventory.LocalEntry {
	return inventory.LocalEntry{
		AbsolutePath: "/local/" + key,
		Key:          key,
		Size:         size,
	}
}

// digestMap returns a DigestFunc serving canned digests, recording which
// keys it was asked about.
func digestMap(digests map[string]string, called *[]string) DigestFunc {
	return func(entry inventory.LocalEntry) (string, error) {
		if called != nil {
			*called = append(*called, entry.Key)
		}
		return digests[entry.Key], nil
	}
}

func TestPlanPushClassification(t *testing.T) {
	local := map[string]inventory.LocalEntry{
		"new.txt":       localEntry("new.txt", 100),
		"same-sum.txt":  localEntry("same-sum.txt", 200),
		"diff-sum.txt":  localEntry("diff-sum.txt", 300),
		"diff-size.txt": localEntry("diff-size.txt", 400),
		"same-size.txt": localEntry("same-size.txt", 500),
	}
	remote := map[string]inventory.RemoteEntry{
		"same-sum.txt":  {Key: "same-sum.txt", Size: 200, Checksum: "AAAA"},
		"diff-sum.txt":  {Key: "diff-sum.txt", Size: 300, Checksum: "BBBB"},
		"diff-size.txt": {Key: "diff-size.txt", Size: 999},
		"same-size.txt": {Key: "same-size.txt", Size: 500},
		"stale.txt":     {Key: "stale.txt", Size: 1},
	}

	var digestCalls []string
	plan, err := Plan(local, remote, Options{
		Direction: DirectionPush,
		Digest: digestMap(map[string]string{
			"same-sum.txt": "AAAA",
			"diff-sum.txt": "CCCC",
		}, &digestCalls),
	})
	require.NoError(t, err)

	var uploaded []string
	reasons := map[string]string{}
	for _, tier := range plan.Tiers {
		for _, item := range tier {
			uploaded = append(uploaded, item.Entry.Key)
			reasons[item.Entry.Key] = item.Reason
		}
	}

	assert.ElementsMatch(t, []string{"new.txt", "diff-sum.txt", "diff-size.txt"}, uploaded)
	assert.Equal(t, "new file", reasons["new.txt"])
	assert.Equal(t, "checksum differs", reasons["diff-sum.txt"])
	assert.Equal(t, "size differs", reasons["diff-size.txt"])

	// same-sum skips on digest match; same-size skips on the length
	// fallback without ever touching the content.
	assert.Equal(t, 2, plan.Skipped)
	assert.ElementsMatch(t, []string{"same-sum.txt", "diff-sum.txt"}, digestCalls,
		"digest must be computed only for keys with a remote checksum")

	assert.Equal(t, []string{"stale.txt"}, plan.Deletes)

	// Every key in either inventory lands in exactly one bucket.
	assert.Equal(t, len(local), plan.Uploads()+plan.Skipped)
	for _, key := range plan.Deletes {
		_, inLocal := local[key]
		assert.False(t, inLocal, "deletes must only contain keys absent from the source")
	}
}

func TestPlanPushEqualLengthNoChecksumIsSkip(t *testing.T) {
	local := map[string]inventory.LocalEntry{
		"data.bin": localEntry("data.bin", 64),
	}
	remote := map[string]inventory.RemoteEntry{
		"data.bin": {Key: "data.bin", Size: 64}, // same length, content unknown
	}

	var digestCalls []string
	plan, err := Plan(local, remote, Options{
		Direction: DirectionPush,
		Digest:    digestMap(nil, &digestCalls),
	})
	require.NoError(t, err)

	assert.Equal(t, 0, plan.Uploads())
	assert.Equal(t, 1, plan.Skipped)
	assert.Empty(t, digestCalls, "no digest computation without a remote checksum")
}

func TestPlanPushTierPartition(t *testing.T) {
	local := map[string]inventory.LocalEntry{
		"a.txt":         localEntry("a.txt", 1),
		"index.html":    localEntry("index.html", 2),
		"feed.xml":      localEntry("feed.xml", 3),
		"manifest.json": localEntry("manifest.json", 4),
	}

	plan, err := Plan(local, map[string]inventory.RemoteEntry{}, Options{
		Direction:  DirectionPush,
		UploadLast: []string{"manifest.json"},
		Digest:     digestMap(nil, nil),
	})
	require.NoError(t, err)

	tierKeys := func(tier Tier) []string {
		var keys []string
		for _, item := range plan.Tiers[tier] {
			keys = append(keys, item.Entry.Key)
		}
		return keys
	}

	assert.Equal(t, []string{"a.txt"}, tierKeys(TierDefault))
	assert.Equal(t, []string{"feed.xml", "index.html"}, tierKeys(TierHTML))
	assert.Equal(t, []string{"manifest.json"}, tierKeys(TierLast))
}

func TestPlanPushDeletes(t *testing.T) {
	local := map[string]inventory.LocalEntry{
		"x": localEntry("x", 1),
	}
	remote := map[string]inventory.RemoteEntry{
		"x": {Key: "x", Size: 1},
		"y": {Key: "y", Size: 2},
		"z": {Key: "z", Size: 3},
	}

	plan, err := Plan(local, remote, Options{
		Direction: DirectionPush,
		Digest:    digestMap(nil, nil),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"y", "z"}, plan.Deletes)
}

func TestPlanPull(t *testing.T) {
	local := map[string]inventory.LocalEntry{
		"keep.txt":  localEntry("keep.txt", 10),
		"extra.txt": localEntry("extra.txt", 20),
		"stale.txt": localEntry("stale.txt", 30),
	}
	remote := map[string]inventory.RemoteEntry{
		"keep.txt":  {Key: "keep.txt", Size: 10, Checksum: "AAAA"},
		"stale.txt": {Key: "stale.txt", Size: 30, Checksum: "FFFF"},
		"new.txt":   {Key: "new.txt", Size: 40},
	}

	plan, err := Plan(local, remote, Options{
		Direction: DirectionPull,
		LocalRoot: "/dest",
		Digest: digestMap(map[string]string{
			"keep.txt":  "AAAA",
			"stale.txt": "0000",
		}, nil),
	})
	require.NoError(t, err)

	var downloads []string
	for _, item := range plan.Downloads {
		downloads = append(downloads, item.Entry.Key)
	}
	assert.ElementsMatch(t, []string{"new.txt", "stale.txt"}, downloads)

	for _, item := range plan.Downloads {
		if item.Entry.Key == "new.txt" {
			assert.Equal(t, "/dest/new.txt", item.LocalPath)
			assert.Equal(t, "new file", item.Reason)
		}
		if item.Entry.Key == "stale.txt" {
			assert.Equal(t, "checksum differs", item.Reason)
		}
	}

	assert.Equal(t, 1, plan.Skipped)
	assert.Equal(t, []string{"extra.txt"}, plan.Deletes)
	assert.Empty(t, plan.Tiers[TierDefault], "pull direction has no upload tiers")
}

func TestPlanRequiresDigest(t *testing.T) {
	_, err := Plan(nil, nil, Options{Direction: DirectionPush})
	assert.Error(t, err)
}

func TestPlanUnknownDirection(t *testing.T) {
	_, err := Plan(nil, nil, Options{Direction: "sideways", Digest: digestMap(nil, nil)})
	assert.Error(t, err)
}
