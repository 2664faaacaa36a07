// Package executor runs the transfer plan: bounded-parallel uploads and
// downloads, then a sequential deletion pass. One ExecuteUploads call per
// tier gives the strict inter-tier barrier; items inside a call are only
// ordered by the admission gate.
package executor

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/anzolabs/bunnysync/pkg/checksum"
	"github.com/anzolabs/bunnysync/pkg/planner"
	"github.com/anzolabs/bunnysync/pkg/progress"
	"github.com/anzolabs/bunnysync/pkg/storage"
)

const (
	MinConcurrency = 1
	MaxConcurrency = 64
)

// Config assembles an Executor.
type Config struct {
	Client  storage.Client
	FS      afero.Fs           // nil selects the OS filesystem
	Tracker *progress.Tracker  // nil selects a fresh tracker
	Logger  logrus.FieldLogger // nil selects the standard logger

	// RemoteBase is the optional sub-path prefix within the remote
	// namespace, "" or a key ending with "/".
	RemoteBase string

	Concurrency int
	DryRun      bool

	// FailFast makes the first item error fail the run once its tier
	// drains. When false, errors are collected into the counts and the
	// run continues.
	FailFast bool
}

// Executor executes plan items against one storage client.
type Executor struct {
	client      storage.Client
	fsys        afero.Fs
	tracker     *progress.Tracker
	log         logrus.FieldLogger
	remoteBase  string
	concurrency int
	dryRun      bool
	failFast    bool
}

// New validates cfg and builds an Executor.
func New(cfg Config) (*Executor, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("storage client is required")
	}
	if cfg.Concurrency < MinConcurrency || cfg.Concurrency > MaxConcurrency {
		return nil, fmt.Errorf("concurrency must be between %d and %d, got %d", MinConcurrency, MaxConcurrency, cfg.Concurrency)
	}
	if cfg.FS == nil {
		cfg.FS = afero.NewOsFs()
	}
	if cfg.Tracker == nil {
		cfg.Tracker = progress.NewTracker(nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	return &Executor{
		client:      cfg.Client,
		fsys:        cfg.FS,
		tracker:     cfg.Tracker,
		log:         cfg.Logger,
		remoteBase:  cfg.RemoteBase,
		concurrency: cfg.Concurrency,
		dryRun:      cfg.DryRun,
		failFast:    cfg.FailFast,
	}, nil
}

// Counts summarizes one execution pass.
type Counts struct {
	Succeeded int
	Failed    int
	Errors    []error
}

// ExecuteUploads runs one upload tier. It returns after every item has
// finished. With FailFast the first item error is returned; otherwise
// errors land in the counts and the error result is nil.
func (e *Executor) ExecuteUploads(ctx context.Context, items []planner.UploadItem) (Counts, error) {
	return e.run(ctx, len(items), func(i int) (string, error) {
		return items[i].Entry.Key, e.uploadOne(ctx, items[i])
	})
}

// ExecuteDownloads runs the whole download set in one pass; download order
// carries no meaning, so there are no tiers.
func (e *Executor) ExecuteDownloads(ctx context.Context, items []planner.DownloadItem) (Counts, error) {
	return e.run(ctx, len(items), func(i int) (string, error) {
		return items[i].Entry.Key, e.downloadOne(ctx, items[i])
	})
}

// run starts every item eagerly behind the admission gate and blocks until
// all of them finish.
func (e *Executor) run(ctx context.Context, n int, task func(i int) (key string, err error)) (Counts, error) {
	errs := make([]error, n)

	gate := make(chan struct{}, e.concurrency)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			gate <- struct{}{}
			defer func() { <-gate }()

			key, err := task(idx)
			if err != nil {
				e.log.WithError(err).WithField("key", key).Error("transfer failed")
				errs[idx] = err
			}
		}(i)
	}

	wg.Wait()

	var counts Counts
	for _, err := range errs {
		if err != nil {
			counts.Failed++
			counts.Errors = append(counts.Errors, err)
		} else {
			counts.Succeeded++
		}
	}

	if counts.Failed > 0 && e.failFast {
		return counts, counts.Errors[0]
	}
	return counts, nil
}

func (e *Executor) uploadOne(ctx context.Context, item planner.UploadItem) error {
	entry := item.Entry

	// Digest is computed lazily here, at transfer time, and shipped with
	// the upload so the server can verify content.
	sum, err := checksum.File(e.fsys, entry.AbsolutePath)
	if err != nil {
		return fmt.Errorf("checksum %s: %w", entry.AbsolutePath, err)
	}

	e.tracker.AddToTotalBytes(entry.Size)
	e.tracker.StartFile(entry.Key, entry.Size)

	e.log.WithFields(logrus.Fields{
		"key":    entry.Key,
		"size":   entry.Size,
		"reason": item.Reason,
	}).Debug("upload")

	if e.dryRun {
		e.tracker.UpdateFileProgress(entry.Key, entry.Size)
		e.tracker.CompleteFile(entry.Key)
		e.log.WithField("key", entry.Key).Info("(dryrun) upload")
		return nil
	}

	file, err := e.fsys.Open(entry.AbsolutePath)
	if err != nil {
		return fmt.Errorf("open %s: %w", entry.AbsolutePath, err)
	}
	defer file.Close()

	contentType := guessContentType(entry.AbsolutePath)
	err = e.client.Upload(ctx, e.remoteBase+entry.Key, file, entry.Size, sum, contentType, func(n int64) {
		e.tracker.UpdateFileProgress(entry.Key, n)
	})
	if err != nil {
		return err
	}

	e.tracker.CompleteFile(entry.Key)
	return nil
}

func (e *Executor) downloadOne(ctx context.Context, item planner.DownloadItem) error {
	entry := item.Entry

	e.tracker.AddToTotalBytes(entry.Size)
	e.tracker.StartFile(entry.Key, entry.Size)

	e.log.WithFields(logrus.Fields{
		"key":    entry.Key,
		"size":   entry.Size,
		"reason": item.Reason,
	}).Debug("download")

	if e.dryRun {
		e.tracker.UpdateFileProgress(entry.Key, entry.Size)
		e.tracker.CompleteFile(entry.Key)
		e.log.WithField("key", entry.Key).Info("(dryrun) download")
		return nil
	}

	if dir := filepath.Dir(item.LocalPath); dir != "" && dir != "." {
		if err := e.fsys.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	file, err := e.fsys.Create(item.LocalPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", item.LocalPath, err)
	}

	err = e.client.Download(ctx, e.remoteBase+entry.Key, file, func(n int64) {
		e.tracker.UpdateFileProgress(entry.Key, n)
	})
	if err != nil {
		file.Close()
		// A half-written file would look like a valid same-size object
		// on the next run.
		_ = e.fsys.Remove(item.LocalPath)
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", item.LocalPath, err)
	}

	e.tracker.CompleteFile(entry.Key)
	return nil
}

// DeleteRemote removes remote objects sequentially, strictly after all
// transfers. A failed delete is logged and the pass continues.
func (e *Executor) DeleteRemote(ctx context.Context, keys []string) Counts {
	var counts Counts
	for _, key := range keys {
		if e.dryRun {
			e.log.WithField("key", key).Info("(dryrun) delete")
			counts.Succeeded++
			continue
		}
		if err := e.client.Delete(ctx, e.remoteBase+key); err != nil {
			e.log.WithError(err).WithField("key", key).Error("delete failed")
			counts.Failed++
			counts.Errors = append(counts.Errors, err)
			continue
		}
		e.log.WithField("key", key).Debug("deleted")
		counts.Succeeded++
	}
	return counts
}

// DeleteLocal removes local files sequentially, strictly after all
// transfers. Same continue-on-failure policy as DeleteRemote.
func (e *Executor) DeleteLocal(localRoot string, keys []string) Counts {
	var counts Counts
	for _, key := range keys {
		path := filepath.Join(localRoot, filepath.FromSlash(key))
		if e.dryRun {
			e.log.WithField("path", path).Info("(dryrun) delete")
			counts.Succeeded++
			continue
		}
		if err := e.fsys.Remove(path); err != nil {
			e.log.WithError(err).WithField("path", path).Error("delete failed")
			counts.Failed++
			counts.Errors = append(counts.Errors, fmt.Errorf("remove %s: %w", path, err))
			continue
		}
		e.log.WithField("path", path).Debug("deleted")
		counts.Succeeded++
	}
	return counts
}
