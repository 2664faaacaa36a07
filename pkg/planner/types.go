// Package planner computes the transfer plan: a pure diff of the two
// inventories into uploads (partitioned into ordered tiers), downloads,
// skips and deletions. It performs no I/O of its own.
package planner

import (
	"github.com/anzolabs/bunnysync/pkg/inventory"
)

// Direction selects which side is the source of truth.
type Direction string

const (
	DirectionPush Direction = "push"
	DirectionPull Direction = "pull"
)

// Tier indexes the strictly ordered upload groups. Tiers execute
// default → html → last so manifests and content hashes land only after
// the HTML that references them is live.
type Tier int

const (
	TierDefault Tier = iota
	TierHTML
	TierLast

	TierCount = 3
)

// UploadItem is one planned upload.
type UploadItem struct {
	Entry  inventory.LocalEntry
	Reason string
}

// DownloadItem is one planned download.
type DownloadItem struct {
	Entry     inventory.RemoteEntry
	LocalPath string // absolute destination path
	Reason    string
}

// Result is the immutable output of Plan. It is built once and only read
// during execution.
type Result struct {
	Tiers     [TierCount][]UploadItem
	Downloads []DownloadItem

	// Deletes holds destination keys absent from the source, captured
	// from the before-transfer inventories. For push these are remote
	// keys, for pull local ones.
	Deletes []string

	Skipped int
}

// Uploads returns the total number of planned uploads across all tiers.
func (p *Result) Uploads() int {
	n := 0
	for _, tier := range p.Tiers {
		n += len(tier)
	}
	return n
}

// DigestFunc returns the hex SHA-256 of a local file. The planner calls it
// only for keys whose remote entry carries a checksum.
type DigestFunc func(entry inventory.LocalEntry) (string, error)

// Options configures a planning run.
type Options struct {
	Direction Direction

	// LocalRoot is the absolute local sync root, used to derive download
	// destination paths.
	LocalRoot string

	// UploadLast holds literal patterns for the last tier: a file whose
	// base name equals a pattern (case-insensitive), or whose key ends
	// with "/<pattern>", uploads after everything else.
	UploadLast []string

	Digest DigestFunc
}
