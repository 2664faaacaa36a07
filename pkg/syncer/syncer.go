// Package syncer wires the pipeline together: build both inventories, plan,
// execute the upload tiers in strict sequence (or the download set), run
// the deletion pass, and report a summary.
package syncer

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/anzolabs/bunnysync/pkg/checksum"
	"github.com/anzolabs/bunnysync/pkg/executor"
	"github.com/anzolabs/bunnysync/pkg/inventory"
	"github.com/anzolabs/bunnysync/pkg/planner"
	"github.com/anzolabs/bunnysync/pkg/progress"
	"github.com/anzolabs/bunnysync/pkg/storage"
)

// Options configures one sync run.
type Options struct {
	Direction planner.Direction
	LocalRoot string

	// RemoteBase is an optional sub-path prefix within the remote
	// namespace.
	RemoteBase string

	Concurrency int
	DryRun      bool
	FailFast    bool

	// UploadLast holds literal patterns whose files upload in the final
	// tier (manifests, content-hash indexes).
	UploadLast []string

	// Excludes holds doublestar glob patterns applied to both sides.
	// Excluded destination keys are never deleted either.
	Excludes []string

	Client  storage.Client
	FS      afero.Fs           // nil selects the OS filesystem
	Tracker *progress.Tracker  // nil disables external progress sampling
	Logger  logrus.FieldLogger // nil selects the standard logger
}

// Summary reports what one run did.
type Summary struct {
	Transferred int
	Skipped     int
	Deleted     int
	Failed      int
}

// RunSync performs one full synchronization run. Inventory failures abort
// before any transfer starts. With FailFast (the default CLI behavior) the
// first transfer error fails the run once its tier drains; otherwise
// failures are counted and reported at the end.
func RunSync(ctx context.Context, opts Options) (Summary, error) {
	if opts.Client == nil {
		return Summary{}, fmt.Errorf("storage client is required")
	}
	if opts.FS == nil {
		opts.FS = afero.NewOsFs()
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	local, err := inventory.BuildLocal(opts.FS, opts.LocalRoot, opts.Excludes)
	if err != nil {
		return Summary{}, fmt.Errorf("build local inventory: %w", err)
	}

	base := inventory.NormalizeDir(opts.RemoteBase)
	remote, err := inventory.BuildRemote(ctx, opts.Client, base, opts.Excludes)
	if err != nil {
		return Summary{}, fmt.Errorf("build remote inventory: %w", err)
	}

	opts.Logger.WithFields(logrus.Fields{
		"local":  len(local),
		"remote": len(remote),
	}).Debug("inventories built")

	plan, err := planner.Plan(local, remote, planner.Options{
		Direction:  opts.Direction,
		LocalRoot:  opts.LocalRoot,
		UploadLast: opts.UploadLast,
		Digest: func(entry inventory.LocalEntry) (string, error) {
			return checksum.File(opts.FS, entry.AbsolutePath)
		},
	})
	if err != nil {
		return Summary{}, fmt.Errorf("plan: %w", err)
	}

	exec, err := executor.New(executor.Config{
		Client:      opts.Client,
		FS:          opts.FS,
		Tracker:     opts.Tracker,
		Logger:      opts.Logger,
		RemoteBase:  base,
		Concurrency: opts.Concurrency,
		DryRun:      opts.DryRun,
		FailFast:    opts.FailFast,
	})
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Skipped: plan.Skipped}

	switch opts.Direction {
	case planner.DirectionPush:
		for _, tier := range []planner.Tier{planner.TierDefault, planner.TierHTML, planner.TierLast} {
			counts, err := exec.ExecuteUploads(ctx, plan.Tiers[tier])
			summary.Transferred += counts.Succeeded
			summary.Failed += counts.Failed
			if err != nil {
				return summary, err
			}
		}

		deletes := exec.DeleteRemote(ctx, plan.Deletes)
		summary.Deleted = deletes.Succeeded
		summary.Failed += deletes.Failed

	case planner.DirectionPull:
		counts, err := exec.ExecuteDownloads(ctx, plan.Downloads)
		summary.Transferred = counts.Succeeded
		summary.Failed += counts.Failed
		if err != nil {
			return summary, err
		}

		deletes := exec.DeleteLocal(opts.LocalRoot, plan.Deletes)
		summary.Deleted = deletes.Succeeded
		summary.Failed += deletes.Failed

	default:
		return Summary{}, fmt.Errorf("unknown direction %q", opts.Direction)
	}

	if summary.Failed > 0 {
		return summary, fmt.Errorf("%d operations failed", summary.Failed)
	}
	return summary, nil
}
